package google

import (
	"errors"
	"fmt"
	"net/http"
	"podbrief/internal/core"

	"google.golang.org/api/googleapi"
)

// wrapAPIError maps permission and lookup failures onto the core sentinels.
func wrapAPIError(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%s: %w: %v", op, core.ErrAccessDenied, err)
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w: %v", op, core.ErrNotFound, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func statusError(op string, code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w (status %d)", op, core.ErrAccessDenied, code)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w (status %d)", op, core.ErrNotFound, code)
	default:
		return fmt.Errorf("%s: unexpected status %d", op, code)
	}
}
