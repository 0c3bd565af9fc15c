// Package access holds the authorization rules for file actions and the
// reconciliation logic for a file's authorized-user list. It is pure: callers
// load the file state, this package only decides.
package access

import "slices"

type Action string

const (
	ActionRename     Action = "rename"
	ActionShare      Action = "share"
	ActionDelete     Action = "delete"
	ActionRemoveSelf Action = "remove"
	ActionDetails    Action = "details"
	ActionDownload   Action = "download"
)

// Actions lists every action in menu order.
var Actions = []Action{
	ActionRename,
	ActionDetails,
	ActionShare,
	ActionRemoveSelf,
	ActionDownload,
	ActionDelete,
}

// FileView is the slice of a file record the rules operate on. Users is the
// authorized-user list and never contains the owner's email.
type FileView struct {
	OwnerEmail string
	Users      []string
}

// CanPerform reports whether actorEmail may perform action on the file.
// Rename, share and delete are owner-only. RemoveSelf is for non-owners that
// are currently on the authorized-user list. Details and download are open to
// anyone the listing query already surfaced the file to.
//
// This is evaluated again inside every mutation against a freshly loaded
// record; a UI-level filter is never trusted.
func CanPerform(action Action, file FileView, actorEmail string) bool {
	switch action {
	case ActionRename, ActionShare, ActionDelete:
		return actorEmail == file.OwnerEmail
	case ActionRemoveSelf:
		return actorEmail != file.OwnerEmail && slices.Contains(file.Users, actorEmail)
	case ActionDetails, ActionDownload:
		return true
	}
	return false
}

// Allowed returns the actions actorEmail may perform on the file, in menu
// order.
func Allowed(file FileView, actorEmail string) []Action {
	allowed := make([]Action, 0, len(Actions))
	for _, action := range Actions {
		if CanPerform(action, file, actorEmail) {
			allowed = append(allowed, action)
		}
	}
	return allowed
}
