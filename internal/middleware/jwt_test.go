package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nitinprakash96/ganeti-webmgr/internal/middleware"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/jwt"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type revocations map[string]bool

func (r revocations) IsRevoked(ctx context.Context, tokenId string) (bool, error) {
	if tokenId == "broken" {
		return false, errors.New("store down")
	}
	return r[tokenId], nil
}

func newEngine(t *testing.T) (*gin.Engine, *jwt.JWT) {
	gin.SetMode(gin.TestMode)
	conf := viper.New()
	conf.Set("security.jwt.key", "middleware-test-key")
	j := jwt.NewJwt(conf)

	r := gin.New()
	r.Use(middleware.CORSMiddleware())
	r.GET("/me", middleware.StrictAuth(j, revocations{"revoked": true}, log.NewNop()), func(ctx *gin.Context) {
		claims := ctx.MustGet("claims").(*jwt.MyCustomClaims)
		ctx.String(http.StatusOK, claims.UserId)
	})
	return r, j
}

func token(t *testing.T, j *jwt.JWT, tokenId string) string {
	tok, err := j.GenToken("u1", tokenId, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return tok
}

func TestStrictAuth(t *testing.T) {
	r, j := newEngine(t)

	cases := []struct {
		name    string
		header  string
		query   string
		upgrade bool
		status  int
	}{
		{name: "no token", status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + token(t, j, "t1"), status: http.StatusOK},
		{name: "valid without prefix", header: token(t, j, "t2"), status: http.StatusOK},
		{name: "revoked", header: "Bearer " + token(t, j, "revoked"), status: http.StatusUnauthorized},
		{name: "revocation store failure", header: "Bearer " + token(t, j, "broken"), status: http.StatusInternalServerError},
		{name: "query token on plain request", query: token(t, j, "t3"), status: http.StatusUnauthorized},
		{name: "query token on upgrade", query: token(t, j, "t4"), upgrade: true, status: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			url := "/me"
			if tc.query != "" {
				url += "?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.upgrade {
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Upgrade", "websocket")
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "u1", w.Body.String())
			}
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	r, _ := newEngine(t)
	req := httptest.NewRequest(http.MethodOptions, "/me", nil)
	req.Header.Set("Origin", "https://ui.example.org")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://ui.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET", w.Header().Get("Access-Control-Allow-Methods"))
}
