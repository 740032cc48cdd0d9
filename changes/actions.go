package changes

// Action is an instruction processed by a Tracker.
type Action interface {
	action()
}

// MakeChange initializes and applies a one-shot change.
type MakeChange struct {
	Change Change
}

// StartOrUpdate drives an UpdateableChange. When no change is active, New
// creates one; otherwise Update adjusts the active change. Either way the
// result is previewed with ApplyTemporarily.
type StartOrUpdate struct {
	New    func() UpdateableChange
	Update func(UpdateableChange)
}

// EndChange applies the active UpdateableChange, producing one undo entry.
type EndChange struct{}

// ForceStop discards the active UpdateableChange, restoring the last
// committed state.
type ForceStop struct{}

// ChangeBoundary closes the current undo entry.
type ChangeBoundary struct{}

// Undo reverts the newest undo entry.
type Undo struct{}

// Redo reapplies the newest undone entry.
type Redo struct{}

func (MakeChange) action()     {}
func (StartOrUpdate) action()  {}
func (EndChange) action()      {}
func (ForceStop) action()      {}
func (ChangeBoundary) action() {}
func (Undo) action()           {}
func (Redo) action()           {}
