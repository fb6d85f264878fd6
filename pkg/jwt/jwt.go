package jwt

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

type JWT struct {
	key []byte
	ttl time.Duration
}

type MyCustomClaims struct {
	UserId string
	jwt.RegisteredClaims
}

func NewJwt(conf *viper.Viper) *JWT {
	ttl := conf.GetDuration("security.jwt.ttl")
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &JWT{key: []byte(conf.GetString("security.jwt.key")), ttl: ttl}
}

// TTL is the lifetime given to tokens issued by GenToken callers.
func (j *JWT) TTL() time.Duration {
	return j.ttl
}

// GenToken signs a token for userId. tokenId becomes the jti claim so the token can be revoked on logout.
func (j *JWT) GenToken(userId, tokenId string, expiresAt time.Time) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, MyCustomClaims{
		UserId: userId,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "ganeti-webmgr",
			Subject:   userId,
			ID:        tokenId,
		},
	})

	// Sign and get the complete encoded token as a string using the key
	tokenString, err := token.SignedString(j.key)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

var bearerPrefix = regexp.MustCompile(`(?i)^Bearer\s+`)

func (j *JWT) ParseToken(tokenString string) (*MyCustomClaims, error) {
	tokenString = strings.TrimSpace(bearerPrefix.ReplaceAllString(tokenString, ""))
	if tokenString == "" {
		return nil, errors.New("token is empty")
	}
	token, err := jwt.ParseWithClaims(tokenString, &MyCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.key, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*MyCustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
