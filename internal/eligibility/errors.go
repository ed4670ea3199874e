package eligibility

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/vetter/internal/catalog"
	"github.com/JaimeStill/vetter/internal/clarifications"
	"github.com/JaimeStill/vetter/pkg/handlers"
)

var (
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrInvalidCategory   = catalog.ErrInvalidCategory
	ErrInvalidAnswers    = errors.New("invalid clarification answers")

	ErrTransport             = errors.New("classifier unreachable")
	ErrUpstream              = errors.New("classifier returned an error")
	ErrInvalidResponseFormat = errors.New("classifier response is not valid JSON")
	ErrInvalidResponseShape  = errors.New("classifier response has an invalid shape")
	ErrPersistence           = errors.New("outcome could not be recorded")
	ErrBatchTooLarge         = errors.New("batch exceeds the configured maximum")
	ErrClarificationNotFound = clarifications.ErrSessionNotFound
	ErrClarificationMismatch = clarifications.ErrSessionMismatch
)

// failureCauses are the sentinels a Failed decision may carry, in match order.
var failureCauses = []error{
	ErrTransport,
	ErrUpstream,
	ErrInvalidResponseFormat,
	ErrInvalidResponseShape,
}

// Cause returns the sentinel behind a failure, or ErrUpstream when err is not
// one of the known causes. The result is safe to show to callers.
func Cause(err error) error {
	for _, c := range failureCauses {
		if errors.Is(err, c) {
			return c
		}
	}
	return ErrUpstream
}

// MapHTTPStatus maps eligibility errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidSubmission),
		errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrInvalidAnswers),
		errors.Is(err, ErrBatchTooLarge),
		errors.Is(err, handlers.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrClarificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrClarificationMismatch):
		return http.StatusConflict
	case errors.Is(err, ErrTransport),
		errors.Is(err, ErrUpstream),
		errors.Is(err, ErrInvalidResponseFormat),
		errors.Is(err, ErrInvalidResponseShape):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
