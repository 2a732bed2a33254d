package events

import (
	"context"
	"strconv"
	"strings"

	apperrors "github.com/target/eventdesk/internal/errors"
)

// Action names an operation the event table can dispatch.
type Action string

const (
	ActionReload           Action = "reload"
	ActionToggleVisibility Action = "toggle-visibility"
	ActionRequestDelete    Action = "request-delete"
	ActionCancelDelete     Action = "cancel-delete"
	ActionConfirmDelete    Action = "confirm-delete"
)

// Command is a dispatched action with its arguments. PendingDelete carries
// the confirmation state round-tripped through the page.
type Command struct {
	Action        Action
	EventID       string
	Visible       bool
	PendingDelete string
}

// CommandFromForm builds a Command from posted form values.
func CommandFromForm(get func(string) string) Command {
	visible, _ := strconv.ParseBool(strings.TrimSpace(get("visible")))
	return Command{
		Action:        Action(strings.TrimSpace(get("action"))),
		EventID:       strings.TrimSpace(get("id")),
		Visible:       visible,
		PendingDelete: strings.TrimSpace(get("pending_delete")),
	}
}

type actionHandler func(vm *ListViewModel, ctx context.Context, cmd Command) error

//nolint:gochecknoglobals // static read-only dispatch table
var actionHandlers = map[Action]actionHandler{
	ActionReload:           (*ListViewModel).handleReload,
	ActionToggleVisibility: (*ListViewModel).handleToggleVisibility,
	ActionRequestDelete:    (*ListViewModel).handleRequestDelete,
	ActionCancelDelete:     (*ListViewModel).handleCancelDelete,
	ActionConfirmDelete:    (*ListViewModel).handleConfirmDelete,
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	_, ok := actionHandlers[a]
	return ok
}

// Dispatch runs cmd against the view-model. Unknown actions and missing
// targets are validation errors; failed gateway calls surface as Alert.
func (vm *ListViewModel) Dispatch(ctx context.Context, cmd Command) error {
	h, ok := actionHandlers[cmd.Action]
	if !ok {
		return apperrors.ValidationField("action", "Unknown action")
	}
	vm.alert = ""
	vm.pendingDelete = cmd.PendingDelete
	return h(vm, ctx, cmd)
}

func (vm *ListViewModel) handleReload(ctx context.Context, _ Command) error {
	vm.Reload(ctx)
	return nil
}

func (vm *ListViewModel) handleToggleVisibility(ctx context.Context, cmd Command) error {
	if cmd.EventID == "" {
		return errMissingEvent()
	}
	vm.SetVisibility(ctx, cmd.EventID, cmd.Visible)
	return nil
}

func (vm *ListViewModel) handleRequestDelete(_ context.Context, cmd Command) error {
	if cmd.EventID == "" {
		return errMissingEvent()
	}
	vm.pendingDelete = cmd.EventID
	return nil
}

func (vm *ListViewModel) handleCancelDelete(_ context.Context, _ Command) error {
	vm.pendingDelete = ""
	return nil
}

func (vm *ListViewModel) handleConfirmDelete(ctx context.Context, _ Command) error {
	if vm.pendingDelete == "" {
		return errMissingEvent()
	}
	vm.Delete(ctx, vm.pendingDelete)
	return nil
}

func errMissingEvent() error {
	return apperrors.ValidationField("id", "No event selected")
}
