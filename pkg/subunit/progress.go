package subunit

import (
	"fmt"
	"strconv"
	"strings"
)

// ProgressMode says how a progress amount applies to the remaining count.
type ProgressMode int

const (
	// ProgressModeSet replaces the remaining count.
	ProgressModeSet ProgressMode = iota
	// ProgressModeCur adjusts the remaining count by a signed amount.
	ProgressModeCur
	// ProgressModePush starts a nested count.
	ProgressModePush
	// ProgressModePop ends a nested count.
	ProgressModePop
)

func (m ProgressMode) String() string {
	switch m {
	case ProgressModeSet:
		return "set"
	case ProgressModeCur:
		return "cur"
	case ProgressModePush:
		return "push"
	case ProgressModePop:
		return "pop"
	default:
		return fmt.Sprintf("ProgressMode(%d)", int(m))
	}
}

// Progress is a progress directive. Construct it with ProgressSet,
// ProgressCur, ProgressPush or ProgressPop; push and pop carry no amount.
type Progress struct {
	mode   ProgressMode
	amount int
}

// ProgressSet sets the remaining count to n.
func ProgressSet(n int) Progress { return Progress{mode: ProgressModeSet, amount: n} }

// ProgressCur adjusts the remaining count by n.
func ProgressCur(n int) Progress { return Progress{mode: ProgressModeCur, amount: n} }

// ProgressPush opens a nested progress scope.
func ProgressPush() Progress { return Progress{mode: ProgressModePush} }

// ProgressPop closes a nested progress scope.
func ProgressPop() Progress { return Progress{mode: ProgressModePop} }

// Mode returns the directive's mode.
func (p Progress) Mode() ProgressMode { return p.mode }

// Amount returns the amount and whether the mode carries one.
func (p Progress) Amount() (int, bool) {
	switch p.mode {
	case ProgressModeSet, ProgressModeCur:
		return p.amount, true
	default:
		return 0, false
	}
}

// String renders the directive payload as it appears after "progress: ".
func (p Progress) String() string {
	switch p.mode {
	case ProgressModePush:
		return "push"
	case ProgressModePop:
		return "pop"
	case ProgressModeCur:
		if p.amount >= 0 {
			return "+" + strconv.Itoa(p.amount)
		}
		return strconv.Itoa(p.amount)
	default:
		return strconv.Itoa(p.amount)
	}
}

// ParseProgress parses a progress payload. A signed number is relative, an
// unsigned number absolute.
func ParseProgress(s string) (Progress, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "push":
		return ProgressPush(), nil
	case s == "pop":
		return ProgressPop(), nil
	case s == "":
		return Progress{}, fmt.Errorf("empty progress directive")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Progress{}, fmt.Errorf("parsing progress %q: %w", s, err)
	}
	if s[0] == '+' || s[0] == '-' {
		return ProgressCur(n), nil
	}
	return ProgressSet(n), nil
}
