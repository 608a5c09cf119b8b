package subunit

import (
	"sort"
	"strings"
)

// TestID identifies a test. Two tests are the same test when their ids are equal.
type TestID string

// String returns the id as a plain string.
func (id TestID) String() string { return string(id) }

// Outcome is the terminal classification of a test.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeError   Outcome = "error"
	OutcomeSkip    Outcome = "skip"
	OutcomeXfail   Outcome = "xfail"
)

// RemoteError carries an error or failure description produced by another
// process. The description is never interpreted, only carried and rendered.
type RemoteError struct {
	Description string
}

// NewRemoteError returns a RemoteError for desc. An empty description is
// normalized to a single newline.
func NewRemoteError(desc string) *RemoteError {
	if desc == "" {
		desc = "\n"
	}
	return &RemoteError{Description: desc}
}

func (e *RemoteError) Error() string { return e.Description }

// ContentType is a MIME type with parameters.
type ContentType struct {
	Type       string
	Subtype    string
	Parameters map[string]string
}

// String renders the type as it appears on a Content-Type line.
// Parameters are sorted by name.
func (ct ContentType) String() string {
	var sb strings.Builder
	sb.WriteString(ct.Type)
	sb.WriteByte('/')
	sb.WriteString(ct.Subtype)
	if len(ct.Parameters) > 0 {
		keys := make([]string, 0, len(ct.Parameters))
		for k := range ct.Parameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte(';')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(k)
			sb.WriteByte('=')
			sb.WriteString(ct.Parameters[k])
		}
	}
	return sb.String()
}

// Content is one part of a Details mapping.
type Content struct {
	Type   ContentType
	Chunks [][]byte
}

// Text returns a text/plain content holding s as a single chunk.
func Text(s string) Content {
	return Content{
		Type:   ContentType{Type: "text", Subtype: "plain", Parameters: map[string]string{"charset": "utf8"}},
		Chunks: [][]byte{[]byte(s)},
	}
}

// Bytes returns the concatenated chunks.
func (c Content) Bytes() []byte {
	var n int
	for _, ch := range c.Chunks {
		n += len(ch)
	}
	out := make([]byte, 0, n)
	for _, ch := range c.Chunks {
		out = append(out, ch...)
	}
	return out
}

// Details maps a part name to its content. Parts are always emitted in
// name order.
type Details map[string]Content

// Names returns the part names in sorted order.
func (d Details) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evidence is what an outcome carries: either a RemoteError or Details.
type Evidence struct {
	Err     *RemoteError
	Details Details
}

// ErrorEvidence wraps desc in a RemoteError.
func ErrorEvidence(desc string) Evidence {
	return Evidence{Err: NewRemoteError(desc)}
}

// DetailsEvidence wraps d.
func DetailsEvidence(d Details) Evidence {
	return Evidence{Details: d}
}

// Message renders the evidence as text: the error description, or the
// details parts concatenated in name order.
func (e Evidence) Message() string {
	if e.Err != nil {
		return e.Err.Description
	}
	var sb strings.Builder
	for _, name := range e.Details.Names() {
		sb.Write(e.Details[name].Bytes())
	}
	return sb.String()
}

// QuoteMessage escapes msg for a quoted outcome block: every line that
// begins with "]" is prefixed with a space, which the parser strips again.
func QuoteMessage(msg string) string {
	if !strings.Contains(msg, "]") {
		return msg
	}
	lines := strings.SplitAfter(msg, "\n")
	for i, l := range lines {
		if strings.HasPrefix(l, "]") {
			lines[i] = " " + l
		}
	}
	return strings.Join(lines, "")
}
