package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func HandleSuccess(ctx *gin.Context, data interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	resp := Response{Code: errorCodeMap[ErrSuccess], Message: ErrSuccess.Error(), Data: data}
	ctx.JSON(http.StatusOK, resp)
}

// HandleError writes the catalog code of err (or of the catalog error it wraps).
func HandleError(ctx *gin.Context, httpCode int, err error, data interface{}) {
	if data == nil {
		data = map[string]string{}
	}
	code, ok := codeOf(err)
	if !ok {
		ctx.JSON(httpCode, Response{Code: 500, Message: "unknown error", Data: data})
		return
	}
	ctx.JSON(httpCode, Response{Code: code, Message: err.Error(), Data: data})
}

type Error struct {
	Code    int
	Message string
}

var errorCodeMap = map[error]int{}

// catalog keeps registration order so wrapped errors resolve deterministically.
var catalog []error

func newError(code int, msg string) error {
	err := errors.New(msg)
	errorCodeMap[err] = code
	catalog = append(catalog, err)
	return err
}

func (e Error) Error() string {
	return e.Message
}

func codeOf(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	if code, ok := errorCodeMap[err]; ok {
		return code, true
	}
	for _, known := range catalog {
		if errors.Is(err, known) {
			return errorCodeMap[known], true
		}
	}
	return 0, false
}

// StatusOf maps a catalog error to the HTTP status handlers answer with.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrInvalidAction),
		errors.Is(err, ErrPasswordMismatch), errors.Is(err, ErrIncorrectPassword):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrEmailAlreadyUse),
		errors.Is(err, ErrUsernameAlreadyUse), errors.Is(err, ErrClusterSlugAlreadyUse):
		return http.StatusConflict
	case errors.Is(err, ErrRpcUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrRemoteOperation):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// HandleServiceError answers with the status and catalog code that belong to err.
func HandleServiceError(ctx *gin.Context, err error, data interface{}) {
	HandleError(ctx, StatusOf(err), err, data)
}
