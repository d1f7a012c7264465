package types

import (
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// SessionID is the opaque handle returned to callers after a successful transcription.
// It is the scratch file name with its extension removed, e.g. "1700000000123456789_talk".
type SessionID string

const EmptySessionID SessionID = ""

func (x SessionID) String() string {
	return string(x)
}

// NewSessionID derives the identifier from the scratch file name. Only the last
// extension is stripped, so "1700000000_a.tar.gz" becomes "1700000000_a.tar" rather than
// being cut at the first dot.
func NewSessionID(scratchName string) SessionID {
	base := filepath.Base(scratchName)
	return SessionID(strings.TrimSuffix(base, filepath.Ext(base)))
}

func (x SessionID) Validate() error {
	if x == EmptySessionID {
		return goerr.New("empty session ID")
	}
	return nil
}
