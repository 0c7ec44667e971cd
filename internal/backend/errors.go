package backend

import "fmt"

// AuthError indicates the backend rejected the provided credentials or the
// session token has expired.
type AuthError struct {
	URL string
	Err error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s: authentication failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("backend %s: access denied", e.URL)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransportError indicates the backend could not be reached or did not
// produce a usable response (network failure, timeout, server fault).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// QueryError indicates the backend rejected the request itself, typically
// malformed search criteria.
type QueryError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query on %q rejected with status %d: %s", e.Endpoint, e.Status, e.Body)
}
