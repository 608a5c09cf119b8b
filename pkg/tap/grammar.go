package tap

import (
	"strconv"
	"strings"
)

// Directive is a TAP result directive.
type Directive string

const (
	DirectiveNone Directive = ""
	DirectiveTodo Directive = "TODO"
	DirectiveSkip Directive = "SKIP"
)

// resultLine is a parsed "ok"/"not ok" line. Every field after OK is
// independently optional.
type resultLine struct {
	OK          bool
	Number      int
	HasNumber   bool
	Description string
	Directive   Directive
	Comment     string
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\v', '\f':
		return true
	}
	return false
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func digits(s string, i int) int {
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	return j
}

// matchPlan matches "N..M" optionally followed by "# comment". An M that
// does not fit in an int is not a plan.
func matchPlan(s string) (stop int, comment string, ok bool) {
	i := digits(s, 0)
	if i == 0 || !strings.HasPrefix(s[i:], "..") {
		return 0, "", false
	}
	j := digits(s, i+2)
	if j == i+2 {
		return 0, "", false
	}
	stop, err := strconv.Atoi(s[i+2 : j])
	if err != nil {
		return 0, "", false
	}
	k := skipSpace(s, j)
	if k == len(s) {
		return stop, "", true
	}
	if s[k] != '#' {
		return 0, "", false
	}
	c := skipSpace(s, k+1)
	if c == k+1 {
		return 0, "", false
	}
	return stop, s[c:], true
}

// matchResult matches "ok"/"not ok" [number] [description] ["# TODO|SKIP" [comment]].
// A "#" that does not start a well-formed directive makes the line a non-result,
// as does a test number that does not fit in an int.
func matchResult(s string) (resultLine, bool) {
	var r resultLine
	var i int
	switch {
	case strings.HasPrefix(s, "not ok"):
		i = len("not ok")
	case strings.HasPrefix(s, "ok"):
		r.OK = true
		i = len("ok")
	default:
		return r, false
	}
	if i == len(s) {
		return r, true
	}
	if !isSpace(s[i]) {
		return r, false
	}

	if n := skipSpace(s, i); n < len(s) {
		if e := digits(s, n); e > n && (e == len(s) || isSpace(s[e])) {
			num, err := strconv.Atoi(s[n:e])
			if err != nil {
				return resultLine{}, false
			}
			r.Number, r.HasNumber = num, true
			i = e
		}
	}

	rest := s[i:]
	hash := strings.IndexByte(rest, '#')
	if hash < 0 {
		r.Description = strings.TrimSpace(rest)
		return r, true
	}

	before := rest[:hash]
	if before == "" || !isSpace(before[len(before)-1]) {
		return r, false
	}
	r.Description = strings.TrimSpace(before)

	after := rest[hash+1:]
	d := skipSpace(after, 0)
	if d == 0 {
		return r, false
	}
	var dir Directive
	switch {
	case strings.HasPrefix(after[d:], string(DirectiveTodo)):
		dir = DirectiveTodo
	case strings.HasPrefix(after[d:], string(DirectiveSkip)):
		dir = DirectiveSkip
	default:
		return r, false
	}
	end := d + len(dir)
	if end < len(after) && !isSpace(after[end]) {
		return r, false
	}
	r.Directive = dir
	r.Comment = after[skipSpace(after, end):]
	return r, true
}

// matchBailOut matches "Bail out!" with an optional reason.
func matchBailOut(s string) (reason string, ok bool) {
	const prefix = "Bail out!"
	if !strings.HasPrefix(s, prefix) {
		return "", false
	}
	return strings.TrimSpace(s[len(prefix):]), true
}

func isComment(s string) bool {
	return strings.HasPrefix(s, "#")
}
