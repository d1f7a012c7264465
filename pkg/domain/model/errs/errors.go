package errs

import "errors"

// ErrSessionNotFound is returned by the session store for an unknown identifier.
var ErrSessionNotFound = errors.New("session not found")
