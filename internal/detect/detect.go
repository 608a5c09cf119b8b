// Package detect recognizes the format of a test result stream from its
// first line, so convert can pick an ingester.
package detect

import (
	"bytes"
	"encoding/json"

	"github.com/dkoosis/subunit/pkg/testjson"
)

// Format is an input format Sniff can tell apart.
type Format int

const (
	Unknown    Format = iota
	Subunit           // subunit line protocol
	TAP               // Test Anything Protocol
	GoTestJSON        // go test -json NDJSON stream
)

func (f Format) String() string {
	switch f {
	case Subunit:
		return "subunit"
	case TAP:
		return "tap"
	case GoTestJSON:
		return "gotest-json"
	default:
		return "unknown"
	}
}

var subunitCommands = [][]byte{
	[]byte("test"), []byte("testing"),
	[]byte("success"), []byte("successful"), []byte("failure"), []byte("error"),
	[]byte("skip"), []byte("xfail"),
	[]byte("tags"), []byte("time"), []byte("progress"),
}

// Sniff examines the first non-blank line of input to determine format.
// Input must contain at least that line.
func Sniff(data []byte) Format {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return Unknown
	}
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	line = bytes.TrimRight(line, "\r")

	switch {
	case line[0] == '{':
		if isGoTestJSON(line) {
			return GoTestJSON
		}
		return Unknown
	case isSubunit(line):
		return Subunit
	case isTAP(line):
		return TAP
	}
	return Unknown
}

func isGoTestJSON(line []byte) bool {
	var e testjson.TestEvent
	return json.Unmarshal(line, &e) == nil && testjson.KnownAction(e.Action)
}

// isSubunit matches "<command>[:] <argument>" for a protocol command.
func isSubunit(line []byte) bool {
	cmd, rest, ok := bytes.Cut(line, []byte(" "))
	if !ok || len(bytes.TrimSpace(rest)) == 0 {
		return false
	}
	cmd = bytes.TrimSuffix(cmd, []byte(":"))
	for _, c := range subunitCommands {
		if bytes.Equal(cmd, c) {
			return true
		}
	}
	return false
}

func isTAP(line []byte) bool {
	switch {
	case bytes.HasPrefix(line, []byte("TAP version ")),
		bytes.HasPrefix(line, []byte("Bail out!")),
		bytes.Equal(line, []byte("ok")), bytes.HasPrefix(line, []byte("ok ")),
		bytes.Equal(line, []byte("not ok")), bytes.HasPrefix(line, []byte("not ok ")):
		return true
	}
	return isPlan(line)
}

// isPlan matches a leading "N..M".
func isPlan(line []byte) bool {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || !bytes.HasPrefix(line[i:], []byte("..")) {
		return false
	}
	j := i + 2
	return j < len(line) && line[j] >= '0' && line[j] <= '9'
}
