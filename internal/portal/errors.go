package portal

import (
	"fmt"
	"net/http"
)

// FetchError is a failed metadata lookup or download for a single mod.
// It never aborts the batch.
type FetchError struct {
	Mod        string
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Mod, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: HTTP %d", e.Op, e.Mod, e.StatusCode)
	default:
		return fmt.Sprintf("%s %s failed", e.Op, e.Mod)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AuthenticationError means the portal rejected the credentials. Nothing
// after it can succeed, so the batch stops.
type AuthenticationError struct {
	Mod string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("downloading %s: HTTP %d: portal rejected the username or token", e.Mod, http.StatusForbidden)
}
