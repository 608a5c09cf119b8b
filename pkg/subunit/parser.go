package subunit

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// State is the parser's position in the test lifecycle.
type State int

const (
	OutsideTest State = iota
	TestStarted
	ReadingFailure
	ReadingError
	ReadingSkip
	ReadingXfail
	ReadingSuccess
)

func (s State) String() string {
	switch s {
	case OutsideTest:
		return "outside test"
	case TestStarted:
		return "test started"
	case ReadingFailure:
		return "reading failure"
	case ReadingError:
		return "reading error"
	case ReadingSkip:
		return "reading skip"
	case ReadingXfail:
		return "reading xfail"
	case ReadingSuccess:
		return "reading success"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) reading() bool {
	return s >= ReadingFailure && s <= ReadingSuccess
}

// lostPhase names the interrupted phase in a truncation message.
func (s State) lostPhase() string {
	switch s {
	case TestStarted:
		return ""
	case ReadingError:
		return "error report of "
	case ReadingFailure:
		return "failure report of "
	case ReadingSuccess:
		return "success report of "
	case ReadingSkip:
		return "skip report of "
	case ReadingXfail:
		return "xfail report of "
	default:
		return "unknown state of "
	}
}

var readingStates = map[Outcome]State{
	OutcomeFailure: ReadingFailure,
	OutcomeError:   ReadingError,
	OutcomeSkip:    ReadingSkip,
	OutcomeXfail:   ReadingXfail,
	OutcomeSuccess: ReadingSuccess,
}

var readingOutcomes = map[State]Outcome{
	ReadingFailure: OutcomeFailure,
	ReadingError:   OutcomeError,
	ReadingSkip:    OutcomeSkip,
	ReadingXfail:   OutcomeXfail,
	ReadingSuccess: OutcomeSuccess,
}

// inflight is the context of the one test currently being parsed.
type inflight struct {
	test        TestID
	description string
	message     strings.Builder
	details     *detailsDecoder
}

// Parser turns subunit lines into calls on a Result. It is not safe for
// concurrent use; feed it from one goroutine.
type Parser struct {
	state       State
	sink        *Sink
	passthrough io.Writer
	logger      *slog.Logger
	cur         *inflight
}

// Option configures a Parser.
type Option func(*Parser)

// WithPassthrough sets where non-protocol lines are written. nil discards them.
func WithPassthrough(w io.Writer) Option {
	return func(p *Parser) {
		if w == nil {
			w = io.Discard
		}
		p.passthrough = w
	}
}

// WithLogger sets a logger for passthrough and truncation decisions.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewParser returns a parser driving r. Non-protocol lines go to os.Stdout
// unless WithPassthrough says otherwise.
func NewParser(r Result, opts ...Option) *Parser {
	p := &Parser{
		state:       OutsideTest,
		sink:        NewSink(r),
		passthrough: os.Stdout,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current parser state.
func (p *Parser) State() State { return p.state }

// LineReceived is an alias for Feed.
func (p *Parser) LineReceived(line string) error { return p.Feed(line) }

// Feed consumes one newline-terminated line, making at most one state
// transition. It returns a *FormatError for a malformed time: directive and
// otherwise only errors from the result or the passthrough writer.
func (p *Parser) Feed(line string) error {
	if p.state.reading() {
		if p.cur.details != nil {
			if !p.cur.details.feed(line) {
				return nil
			}
			return p.endDetails()
		}
		if strings.TrimSuffix(line, "\n") == "]" {
			return p.endQuote()
		}
		p.appendMessage(line)
		return nil
	}

	cmd, rest, ok := splitCommand(line)
	if !ok {
		return p.writePassthrough(line)
	}
	switch cmd {
	case "test", "testing":
		return p.startTest(rest, line)
	case "error":
		return p.outcome(OutcomeError, rest, line)
	case "failure":
		return p.outcome(OutcomeFailure, rest, line)
	case "skip":
		return p.outcome(OutcomeSkip, rest, line)
	case "success", "successful":
		return p.outcome(OutcomeSuccess, rest, line)
	case "xfail":
		return p.outcome(OutcomeXfail, rest, line)
	case "tags":
		return p.sink.Tags(ParseTags(strings.Fields(rest)))
	case "time":
		t, err := ParseTime(rest)
		if err != nil {
			return &FormatError{Line: line, Err: err}
		}
		return p.sink.Time(t)
	case "progress":
		prog, err := ParseProgress(rest)
		if err != nil {
			p.logger.Debug("unparseable progress directive", "line", line, "error", err)
			return p.writePassthrough(line)
		}
		return p.sink.Progress(prog)
	default:
		return p.writePassthrough(line)
	}
}

// ConnectionLost finalizes the stream. A test still in flight is reported
// as an error naming the interrupted phase, then stopped.
func (p *Parser) ConnectionLost() error {
	if p.state == OutsideTest {
		return nil
	}
	cur, phase := p.cur, p.state.lostPhase()
	p.reset()
	msg := fmt.Sprintf("lost connection during %stest '%s'", phase, cur.description)
	p.logger.Debug("stream truncated", "test", cur.test, "phase", phase)
	if err := p.sink.AddError(cur.test, ErrorEvidence(msg)); err != nil {
		return err
	}
	return p.sink.StopTest(cur.test)
}

// splitCommand splits "cmd rest" at the first blank. ok is false when the
// line has no command or nothing after it.
func splitCommand(line string) (cmd, rest string, ok bool) {
	body := strings.TrimSuffix(line, "\n")
	i := strings.IndexAny(body, " \t")
	if i <= 0 {
		return "", "", false
	}
	rest = body[i+1:]
	if strings.TrimSpace(rest) == "" {
		return "", "", false
	}
	return strings.Trim(body[:i], ":"), rest, true
}

func (p *Parser) startTest(rest, line string) error {
	if p.state != OutsideTest {
		return p.writePassthrough(line)
	}
	p.cur = &inflight{test: TestID(rest), description: rest}
	p.state = TestStarted
	return p.sink.StartTest(p.cur.test)
}

// outcome handles an outcome command: a bare form ends the test, a
// bracketed form opens a quoted block, anything else is not ours.
func (p *Parser) outcome(kind Outcome, rest, line string) error {
	if p.state != TestStarted {
		return p.writePassthrough(line)
	}
	switch rest {
	case p.cur.description:
		return p.complete(kind, "", nil)
	case p.cur.description + " [":
		p.state = readingStates[kind]
		p.cur.message.Reset()
		return nil
	case p.cur.description + " [ multipart":
		p.state = readingStates[kind]
		p.cur.details = newDetailsDecoder()
		return nil
	default:
		return p.writePassthrough(line)
	}
}

func (p *Parser) appendMessage(line string) {
	if strings.HasPrefix(line, " ]") {
		line = line[1:]
	}
	p.cur.message.WriteString(line)
}

func (p *Parser) endQuote() error {
	return p.complete(readingOutcomes[p.state], p.cur.message.String(), nil)
}

func (p *Parser) endDetails() error {
	dec := p.cur.details
	if dec.failed {
		p.logger.Debug("malformed multipart body delivered as message", "test", p.cur.test)
		return p.complete(readingOutcomes[p.state], dec.raw.String(), nil)
	}
	return p.complete(readingOutcomes[p.state], "", dec.details)
}

// complete reports the terminal outcome of the in-flight test and returns
// to OutsideTest.
func (p *Parser) complete(kind Outcome, msg string, details Details) error {
	cur := p.cur
	p.reset()

	ev := ErrorEvidence(msg)
	if details != nil {
		ev = DetailsEvidence(details)
	}
	var err error
	switch kind {
	case OutcomeError:
		err = p.sink.AddError(cur.test, ev)
	case OutcomeFailure:
		err = p.sink.AddFailure(cur.test, ev)
	case OutcomeSkip:
		if details == nil && msg == "" && p.sink.CanSkip() {
			ev = ErrorEvidence("No reason given")
		}
		err = p.sink.AddSkip(cur.test, ev)
	case OutcomeXfail:
		err = p.sink.AddExpectedFailure(cur.test, ev)
	case OutcomeSuccess:
		err = p.sink.AddSuccess(cur.test, details)
	}
	if err != nil {
		return err
	}
	return p.sink.StopTest(cur.test)
}

func (p *Parser) reset() {
	p.cur = nil
	p.state = OutsideTest
}

func (p *Parser) writePassthrough(line string) error {
	p.logger.Debug("passthrough", "state", p.state, "line", strings.TrimSuffix(line, "\n"))
	if _, err := io.WriteString(p.passthrough, line); err != nil {
		return fmt.Errorf("writing passthrough: %w", err)
	}
	return nil
}
