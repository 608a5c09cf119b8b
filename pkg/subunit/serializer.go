package subunit

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Serializer is a Result that writes the subunit wire format. Each call
// appends to the writer; nothing is buffered between calls.
type Serializer struct {
	w io.Writer
}

// NewSerializer returns a Serializer writing to w.
func NewSerializer(w io.Writer) *Serializer {
	return &Serializer{w: w}
}

// StartTest writes "test: <id>".
func (s *Serializer) StartTest(test TestID) error {
	return s.write("test: " + string(test) + "\n")
}

// StopTest writes nothing; the outcome line ends a test on the wire.
func (s *Serializer) StopTest(TestID) error { return nil }

// AddSuccess writes a bare success, or a multipart success when details
// are present.
func (s *Serializer) AddSuccess(test TestID, details Details) error {
	if len(details) == 0 {
		return s.write("successful: " + string(test) + "\n")
	}
	return s.writeOutcome("successful", test, DetailsEvidence(details))
}

// AddFailure writes a failure.
func (s *Serializer) AddFailure(test TestID, ev Evidence) error {
	return s.writeOutcome(string(OutcomeFailure), test, ev)
}

// AddError writes an error.
func (s *Serializer) AddError(test TestID, ev Evidence) error {
	return s.writeOutcome(string(OutcomeError), test, ev)
}

// AddSkip writes a skip; the error description is the reason.
func (s *Serializer) AddSkip(test TestID, ev Evidence) error {
	return s.writeOutcome(string(OutcomeSkip), test, ev)
}

// AddExpectedFailure writes an xfail.
func (s *Serializer) AddExpectedFailure(test TestID, ev Evidence) error {
	return s.writeOutcome(string(OutcomeXfail), test, ev)
}

// Tags writes additions as bare tokens and removals with a "-" prefix.
// An empty delta writes nothing.
func (s *Serializer) Tags(delta TagDelta) error {
	if delta.Empty() {
		return nil
	}
	return s.write("tags: " + delta.String() + "\n")
}

// Time writes t in UTC with microsecond precision.
func (s *Serializer) Time(t time.Time) error {
	return s.write("time: " + FormatTime(t) + "\n")
}

// Progress writes a progress directive.
func (s *Serializer) Progress(p Progress) error {
	return s.write("progress: " + p.String() + "\n")
}

// writeOutcome writes "<outcome>: <id>" followed by a quoted message or a
// multipart body. Message lines are written as given; producers escape
// "]"-leading lines with QuoteMessage.
func (s *Serializer) writeOutcome(outcome string, test TestID, ev Evidence) error {
	hasErr, hasDetails := ev.Err != nil, ev.Details != nil
	if hasErr == hasDetails {
		return fmt.Errorf("%s: %s: %w", outcome, test, ErrUsage)
	}

	var sb strings.Builder
	sb.WriteString(outcome)
	sb.WriteString(": ")
	sb.WriteString(string(test))
	if hasErr {
		sb.WriteString(" [\n")
		for _, line := range splitLines(ev.Err.Description) {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	} else {
		writeDetails(&sb, ev.Details)
	}
	sb.WriteString("]\n")
	return s.write(sb.String())
}

func writeDetails(sb *strings.Builder, details Details) {
	sb.WriteString(" [ multipart\n")
	for _, name := range details.Names() {
		content := details[name]
		sb.WriteString("Content-Type: ")
		sb.WriteString(content.Type.String())
		sb.WriteByte('\n')
		sb.WriteString(name)
		sb.WriteByte('\n')
		for _, chunk := range content.Chunks {
			if len(chunk) == 0 {
				continue
			}
			sb.WriteString(strconv.Itoa(len(chunk)))
			sb.WriteByte('\n')
			sb.Write(chunk)
		}
		sb.WriteString("0\n")
	}
}

// splitLines splits s into lines without their terminators. A trailing
// newline does not produce an empty final line, but "\n" alone yields one
// empty line.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func (s *Serializer) write(text string) error {
	if _, err := io.WriteString(s.w, text); err != nil {
		return fmt.Errorf("writing subunit stream: %w", err)
	}
	return nil
}
