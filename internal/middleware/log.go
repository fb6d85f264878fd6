package middleware

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/duke-git/lancet/v2/cryptor"
	"github.com/duke-git/lancet/v2/random"
	"github.com/gin-gonic/gin"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/log"
	"go.uber.org/zap"
)

const maxLogBody = 4096

// secret request fields never reach the log
var redactedHeaders = []string{"Authorization", "Cookie"}

func RequestLogMiddleware(logger *log.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		uuid, err := random.UUIdV4()
		if err != nil {
			ctx.Next()
			return
		}
		trace := cryptor.Md5String(uuid)
		ctx.Header("X-Trace-Id", trace)

		headers := ctx.Request.Header.Clone()
		for _, h := range redactedHeaders {
			if headers.Get(h) != "" {
				headers.Set(h, "***")
			}
		}
		logger.WithValue(ctx,
			zap.String("trace", trace),
			zap.String("request_method", ctx.Request.Method),
			zap.Any("request_headers", headers),
			zap.String("request_url", ctx.Request.URL.Path),
		)

		if ctx.Request.Body != nil && !isCredentialRoute(ctx.FullPath()) {
			bodyBytes, _ := ctx.GetRawData()
			ctx.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			if len(bodyBytes) > maxLogBody {
				bodyBytes = bodyBytes[:maxLogBody]
			}
			logger.WithValue(ctx, zap.String("request_params", string(bodyBytes)))
		}
		logger.WithContext(ctx).Info("Request")
		ctx.Next()
	}
}

func isCredentialRoute(path string) bool {
	return strings.HasSuffix(path, "/login") || strings.HasSuffix(path, "/register") || strings.HasSuffix(path, "/user")
}

func ResponseLogMiddleware(logger *log.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		// the job stream hijacks the connection, wrapping its writer would break the handshake
		if strings.EqualFold(ctx.GetHeader("Upgrade"), "websocket") {
			startTime := time.Now()
			ctx.Next()
			logger.WithContext(ctx).Info("Response (WebSocket)", zap.String("time", time.Since(startTime).String()))
			return
		}

		blw := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: ctx.Writer}
		ctx.Writer = blw
		startTime := time.Now()
		ctx.Next()
		body := blw.body.String()
		if len(body) > maxLogBody {
			body = body[:maxLogBody]
		}
		logger.WithContext(ctx).Info("Response",
			zap.Int("status", ctx.Writer.Status()),
			zap.String("response_body", body),
			zap.String("time", time.Since(startTime).String()))
	}
}

type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
