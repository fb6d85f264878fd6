package v1

var (
	// common errors
	ErrSuccess             = newError(0, "ok")
	ErrBadRequest          = newError(400, "bad request")
	ErrUnauthorized        = newError(401, "unauthorized")
	ErrForbidden           = newError(403, "You do not have sufficient privileges")
	ErrNotFound            = newError(404, "not found")
	ErrConflict            = newError(409, "operation already in progress")
	ErrInternalServerError = newError(500, "internal server error")
	ErrRpcUnavailable      = newError(503, "cluster service unavailable")

	// account errors
	ErrEmailAlreadyUse    = newError(1001, "The email is already in use.")
	ErrUsernameAlreadyUse = newError(1002, "The username is already in use.")
	ErrPasswordMismatch   = newError(1003, "The new passwords do not match.")
	ErrIncorrectPassword  = newError(1004, "The old password is incorrect.")

	// cluster errors
	ErrClusterSlugAlreadyUse = newError(2001, "The cluster slug is already in use.")

	// dispatch errors
	ErrInvalidAction   = newError(3001, "invalid action")
	ErrRemoteOperation = newError(3002, "remote operation failed")
)
