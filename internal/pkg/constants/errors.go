package constants

import "net/http"

// CodedError is an error that carries the HTTP status it should be
// rendered with. The api error handler unwraps down to the first one.
type CodedError struct {
	message string
	code    int
}

func NewCodedError(message string, code int) *CodedError {
	return &CodedError{message: message, code: code}
}

func (e *CodedError) Error() string {
	return e.message
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrMissingUserKey       = NewCodedError("missing X-User-Key header", http.StatusUnauthorized)
	ErrGroupNotFound        = NewCodedError("restaurant group not found", http.StatusNotFound)
	ErrDBNotFound           = NewCodedError("not found", http.StatusNotFound)
	ErrNoDataAvailable      = NewCodedError("no data available for the selected restaurants", http.StatusUnprocessableEntity)
	ErrPlatformIDConflict   = NewCodedError("platform id already assigned", http.StatusConflict)
	ErrMergeTargetInSources = NewCodedError("merge target cannot be one of the sources", http.StatusBadRequest)
	ErrGroupNotEmpty        = NewCodedError("restaurant group still has platform ids assigned", http.StatusConflict)
)
