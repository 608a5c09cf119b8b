package subunit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUsage is returned by the Serializer when an outcome carries neither
// an error nor details, or carries both.
var ErrUsage = errors.New("outcome requires exactly one of error or details")

// FormatError reports a time: directive whose payload is not a timestamp.
// The parser's state is unchanged when it is returned.
type FormatError struct {
	Line string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed time directive %q: %v", strings.TrimSuffix(e.Line, "\n"), e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
