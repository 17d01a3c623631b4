package calendar

import (
	"context"
	"errors"
	"sync"
)

// ActionKind is the registration intent staged by clicking an event
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionRegister
	ActionUnregister
)

func (a ActionKind) String() string {
	switch a {
	case ActionRegister:
		return "register"
	case ActionUnregister:
		return "unregister"
	}
	return "none"
}

// ParseAction converts the string form back into an ActionKind
func ParseAction(s string) ActionKind {
	switch s {
	case "register":
		return ActionRegister
	case "unregister":
		return ActionUnregister
	}
	return ActionNone
}

// ErrNothingStaged is returned by Confirm when no action is pending
var ErrNothingStaged = errors.New("no registration action is staged")

// SlotFunc performs a registration call for a slot id
type SlotFunc func(ctx context.Context, slotID int64) error

// PendingAction is the action waiting for confirmation
type PendingAction struct {
	Kind  ActionKind
	Event Event
}

// Dialog holds at most one staged action and the callbacks that carry it out.
// It never mutates events; the owner refetches after Confirm returns.
type Dialog struct {
	mu         sync.Mutex
	pending    *PendingAction
	register   SlotFunc
	unregister SlotFunc
}

// NewDialog creates a Dialog with the register and unregister callbacks
func NewDialog(register, unregister SlotFunc) *Dialog {
	return &Dialog{register: register, unregister: unregister}
}

// Click stages the action for e. Full slots the user is not registered for stage nothing.
func (d *Dialog) Click(e Event) (PendingAction, bool) {
	kind := e.Action()
	if kind == ActionNone {
		return PendingAction{}, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = &PendingAction{Kind: kind, Event: e}
	return *d.pending, true
}

// Pending returns the staged action, if any
func (d *Dialog) Pending() (PendingAction, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return PendingAction{}, false
	}
	return *d.pending, true
}

// Cancel discards the staged action
func (d *Dialog) Cancel() {
	d.mu.Lock()
	d.pending = nil
	d.mu.Unlock()
}

// Confirm invokes the callback matching the staged action with the slot id and
// closes the dialog whatever the callback returns.
func (d *Dialog) Confirm(ctx context.Context) (PendingAction, error) {
	d.mu.Lock()
	p := d.pending
	d.pending = nil
	d.mu.Unlock()

	if p == nil {
		return PendingAction{}, ErrNothingStaged
	}

	var fn SlotFunc
	switch p.Kind {
	case ActionRegister:
		fn = d.register
	case ActionUnregister:
		fn = d.unregister
	}
	if fn == nil {
		return *p, ErrNothingStaged
	}
	return *p, fn(ctx, p.Event.ID)
}
