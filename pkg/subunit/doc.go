// Package subunit implements the subunit streaming test protocol: a
// line-oriented text format that carries test activity (start, outcome,
// tags, timing, progress) between a producer and a consumer.
//
// # Wire Format
//
// Every line is newline-terminated:
//
//	test: <id>                      | testing: <id>
//	success: <id>                   | successful: <id>
//	failure: <id> [                   (quoted message, closed by a "]" line)
//	error: <id> [
//	skip: <id> [
//	xfail: <id> [
//	<outcome>: <id> [ multipart       (structured details, see below)
//	tags: [-]tag ...
//	time: YYYY-MM-DD HH:MM:SS.ffffffZ
//	progress: (+N | -N | N | push | pop)
//
// Inside a quoted message a line beginning with " ]" has its leading space
// removed, so message content may contain a literal "]" line.
//
// A multipart body repeats, per part:
//
//	Content-Type: <type>/<subtype>[;k=v,...]
//	<part name>
//	<len>\n<len bytes>     (repeated, ended by a "0" length line)
//
// followed by the closing "]" line.
//
// # Components
//
// [Parser] consumes lines and drives a [Result]. [Serializer] is a [Result]
// that writes the wire format. Optional sink capabilities ([SkipResult],
// [ExpectedFailureResult], [TagObserver], [TimeObserver],
// [ProgressObserver]) are discovered once; a sink that lacks one degrades
// gracefully rather than erroring.
//
// # Usage
//
//	p := subunit.NewParser(result, subunit.WithPassthrough(os.Stderr))
//	if err := p.ReadFrom(ctx, os.Stdin); err != nil {
//	    // malformed time: directive, sink error, or read error
//	}
package subunit
