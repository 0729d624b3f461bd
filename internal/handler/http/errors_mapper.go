package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-konvo/internal/adapter"
)

// errorStatusMap is the inverse of the client gateway's status mapping, so a
// backend error survives the trip over HTTP.
var errorStatusMap = []struct {
	err    error
	status int
}{
	{adapter.ErrInvalidCode, http.StatusUnauthorized},
	{adapter.ErrUnauthorized, http.StatusUnauthorized},
	{adapter.ErrBadRequest, http.StatusBadRequest},
	{adapter.ErrIdentityNotFound, http.StatusNotFound},
	{adapter.ErrNotFound, http.StatusNotFound},
	{adapter.ErrConflict, http.StatusConflict},
	{adapter.ErrUnavailable, http.StatusServiceUnavailable},
	{adapter.ErrInternalServerError, http.StatusInternalServerError},
}

func statusFromError(err error) int {
	for _, mapping := range errorStatusMap {
		if errors.Is(err, mapping.err) {
			return mapping.status
		}
	}
	return http.StatusInternalServerError
}
