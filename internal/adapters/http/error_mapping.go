package httpadapter

import (
	"net/http"

	"github.com/mvcarvalho/docsentinel/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrScanNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrScanNotReady):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage keeps wrapped internals out of client responses: the two 404
// variants stay distinguishable by body, everything else gets a fixed text.
func errorMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrScanNotReady):
		return "scan result not ready"
	case domain.IsKind(err, domain.ErrScanNotFound):
		return "scan not found"
	case domain.IsKind(err, domain.ErrScanFailed):
		return "scan failed"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return err.Error()
	case domain.IsKind(err, domain.ErrTemporary):
		return "service temporarily unavailable"
	default:
		return "internal error"
	}
}
