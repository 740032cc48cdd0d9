package changes

import "fmt"

type state uint8

const (
	stateNew state = iota
	stateInitialized
	stateApplied
	stateReverted
	stateDisposed
)

func (s state) String() string {
	switch s {
	case stateNew:
		return "new"
	case stateInitialized:
		return "initialized"
	case stateApplied:
		return "applied"
	case stateReverted:
		return "reverted"
	case stateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// lifecycle enforces Initialize once, then Apply and Revert alternately.
// Every change embeds one and calls it first thing in each method.
type lifecycle struct {
	state state
}

func (l *lifecycle) violation(op string) {
	panic(fmt.Errorf("%w: %s on a %s change", ErrLifecycle, op, l.state))
}

func (l *lifecycle) initialize() {
	if l.state != stateNew {
		l.violation("Initialize")
	}
	l.state = stateInitialized
}

// apply reports whether this is the first Apply.
func (l *lifecycle) apply() (first bool) {
	switch l.state {
	case stateInitialized:
		first = true
	case stateReverted:
	default:
		l.violation("Apply")
	}
	l.state = stateApplied
	return first
}

func (l *lifecycle) revert() {
	if l.state != stateApplied {
		l.violation("Revert")
	}
	l.state = stateReverted
}

func (l *lifecycle) applyTemporarily() {
	if l.state != stateInitialized {
		l.violation("ApplyTemporarily")
	}
}

// dispose reports whether resources still need releasing.
func (l *lifecycle) dispose() bool {
	if l.state == stateDisposed {
		return false
	}
	l.state = stateDisposed
	return true
}
