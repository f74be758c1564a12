package session

import (
	"errors"
	"fmt"
	"strings"
)

// MaxButtons is the number of button indices the action table can map
const MaxButtons = 16

// ErrInvalidButtonIndex is returned for a button index outside [0, MaxButtons)
var ErrInvalidButtonIndex = errors.New("button index out of range")

// Action is what a button does when the session is idle
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionMove
	ActionLeft
	ActionMiddle
	ActionRight
)

func (a Action) String() string {
	switch a {
	case ActionQuit:
		return "quit"
	case ActionMove:
		return "move"
	case ActionLeft:
		return "left"
	case ActionMiddle:
		return "middle"
	case ActionRight:
		return "right"
	default:
		return "none"
	}
}

// ParseAction is the inverse of Action.String
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return ActionNone, nil
	case "quit":
		return ActionQuit, nil
	case "move":
		return ActionMove, nil
	case "left", "lmb":
		return ActionLeft, nil
	case "middle", "mmb":
		return ActionMiddle, nil
	case "right", "rmb":
		return ActionRight, nil
	default:
		return ActionNone, fmt.Errorf("unknown button action %q", s)
	}
}

// ValidIndex reports whether i addresses a slot of the action table
func ValidIndex(i int) bool {
	return i >= 0 && i < MaxButtons
}

// ActionTable maps button indices to actions. It is filled in before the
// event loop starts and only read afterwards.
type ActionTable struct {
	actions [MaxButtons]Action
}

// NewActionTable returns a table with every index set to ActionNone
func NewActionTable() *ActionTable {
	return &ActionTable{}
}

// Set assigns an action to a button index. The last assignment wins.
func (t *ActionTable) Set(index int, a Action) error {
	if !ValidIndex(index) {
		return fmt.Errorf("%w: %d is not < %d", ErrInvalidButtonIndex, index, MaxButtons)
	}
	t.actions[index] = a
	return nil
}

// Lookup returns the action for index, ActionNone when unmapped or out of range
func (t *ActionTable) Lookup(index int) Action {
	if t == nil || !ValidIndex(index) {
		return ActionNone
	}
	return t.actions[index]
}

// Has reports whether any index is mapped to a
func (t *ActionTable) Has(a Action) bool {
	if t == nil {
		return false
	}
	for _, action := range t.actions {
		if action == a {
			return true
		}
	}
	return false
}

// Empty reports whether no index carries an action
func (t *ActionTable) Empty() bool {
	if t == nil {
		return true
	}
	for _, action := range t.actions {
		if action != ActionNone {
			return false
		}
	}
	return true
}

// String lists every index with its action, unmapped indices left blank
func (t *ActionTable) String() string {
	var b strings.Builder
	for i := 0; i < MaxButtons; i++ {
		fmt.Fprintf(&b, "Button %d: ", i)
		if a := t.Lookup(i); a != ActionNone {
			b.WriteString(a.String())
		}
		b.WriteString("\n")
	}
	return b.String()
}
