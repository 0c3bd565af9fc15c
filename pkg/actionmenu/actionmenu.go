// Package actionmenu models the per-file action flow as an explicit state
// machine: an action is chosen from a menu, the menu closes, a dialog asks
// for input, and confirming runs the mutation. The machine is pure; side
// effects go through the Mutator it is bound to.
package actionmenu

import (
	"context"
	"errors"

	"github.com/storeit-dev/storeit/internal/access"
)

type State string

const (
	// StateIdle means no action is in flight.
	StateIdle State = "idle"
	// StateSelecting means an action was chosen but the menu is still open.
	StateSelecting State = "selecting"
	// StateConfirming means the dialog is open and waiting for input.
	StateConfirming State = "confirming"
	// StateExecuting means the mutation is running.
	StateExecuting State = "executing"
)

var (
	ErrNotAllowed    = errors.New("action not available for this user")
	ErrWrongState    = errors.New("not expecting this event in the current state")
	ErrUnknownAction = errors.New("unknown action")
)

// Mutator executes the mutations the menu can trigger. Implementations talk
// to the server; the menu itself never does.
type Mutator interface {
	Rename(ctx context.Context, name string) error
	UpdateUsers(ctx context.Context, emails []string, mode access.Mode) error
	Delete(ctx context.Context) error
	Download(ctx context.Context) error
}

// Menu drives the action flow for one file. It is not safe for concurrent
// use; each open menu gets its own instance.
type Menu struct {
	file       access.FileView
	actorEmail string
	mutator    Mutator

	state  State
	action access.Action

	name    string
	emails  []string
	mode    access.Mode
	lastErr error
}

func New(file access.FileView, actorEmail string, mutator Mutator) *Menu {
	return &Menu{
		file:       file,
		actorEmail: actorEmail,
		mutator:    mutator,
		state:      StateIdle,
	}
}

func (m *Menu) State() State { return m.state }

// Action returns the currently selected action, empty when idle.
func (m *Menu) Action() access.Action { return m.action }

// Err returns the failure of the last confirm attempt, cleared on success
// and on cancel.
func (m *Menu) Err() error { return m.lastErr }

// Actions lists what the acting user may do with the file, in menu order.
func (m *Menu) Actions() []access.Action {
	return access.Allowed(m.file, m.actorEmail)
}

// Choose selects an action from the open menu. Download runs immediately
// and the menu stays idle; every other action moves to selecting and waits
// for the menu to close.
func (m *Menu) Choose(ctx context.Context, action access.Action) error {
	if m.state != StateIdle {
		return ErrWrongState
	}
	if !access.CanPerform(action, m.file, m.actorEmail) {
		return ErrNotAllowed
	}

	if action == access.ActionDownload {
		return m.mutator.Download(ctx)
	}

	m.action = action
	m.state = StateSelecting

	// Seed the share dialog with the current list.
	m.name = ""
	m.emails = append([]string(nil), m.file.Users...)
	m.mode = access.ModeAppend
	m.lastErr = nil
	return nil
}

// MenuClosed signals that the dropdown finished closing, which is what hands
// control to the dialog. Closing the menu with nothing selected is a no-op.
func (m *Menu) MenuClosed() {
	if m.state == StateSelecting {
		m.state = StateConfirming
	}
}

// SetName stages the new display name for a rename.
func (m *Menu) SetName(name string) error {
	if m.state != StateConfirming {
		return ErrWrongState
	}
	m.name = name
	return nil
}

// SetEmails stages the proposed authorized-user list and reconciliation mode.
func (m *Menu) SetEmails(emails []string, mode access.Mode) error {
	if m.state != StateConfirming {
		return ErrWrongState
	}
	m.emails = append([]string(nil), emails...)
	m.mode = mode
	return nil
}

// Confirm runs the selected action. On success the machine returns to idle
// with its inputs cleared; on failure it stays confirming with the inputs
// retained so the user can retry.
func (m *Menu) Confirm(ctx context.Context) error {
	if m.state != StateConfirming {
		return ErrWrongState
	}

	m.state = StateExecuting
	var err error
	switch m.action {
	case access.ActionRename:
		err = m.mutator.Rename(ctx, m.name)
	case access.ActionShare:
		err = m.mutator.UpdateUsers(ctx, m.emails, m.mode)
	case access.ActionRemoveSelf:
		err = m.mutator.UpdateUsers(ctx, removeEmail(m.file.Users, m.actorEmail), access.ModeOverwrite)
	case access.ActionDelete:
		err = m.mutator.Delete(ctx)
	case access.ActionDetails:
		// viewing details mutates nothing
	default:
		m.state = StateConfirming
		return ErrUnknownAction
	}

	if err != nil {
		m.state = StateConfirming
		m.lastErr = err
		return err
	}

	m.reset()
	return nil
}

// Cancel abandons the flow from any non-executing state.
func (m *Menu) Cancel() {
	if m.state == StateExecuting {
		return
	}
	m.reset()
}

func (m *Menu) reset() {
	m.state = StateIdle
	m.action = ""
	m.name = ""
	m.emails = nil
	m.mode = ""
	m.lastErr = nil
}

func removeEmail(emails []string, email string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if e != email {
			out = append(out, e)
		}
	}
	return out
}
