package symbol

import (
	"errors"
	"fmt"
)

var (
	// ErrLeadingDigit rejects texts whose first byte is a decimal digit.
	// Such texts would collide with the numeric suffixes produced by
	// WithFinalNumber and WithWildcardNumber.
	ErrLeadingDigit = errors.New("symbol: text starts with a digit")

	// ErrUnknownID is the panic value for resolving an ID the table never issued.
	ErrUnknownID = errors.New("symbol: unknown id")

	ErrAlreadyInitialized  = errors.New("symbol: default table already initialized")
	ErrNoAlphabeticalIndex = errors.New("symbol: table has no alphabetical index")
)

// AuditError describes one inconsistency found by Table.Audit.
type AuditError struct {
	ID     ID
	Text   string
	Reason string
}

func (e *AuditError) Error() string {
	return fmt.Sprintf("symbol %d (%q): %s", e.ID, e.Text, e.Reason)
}
