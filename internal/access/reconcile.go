package access

import (
	"errors"
	"slices"
)

type Mode string

const (
	ModeAppend    Mode = "append"
	ModeOverwrite Mode = "overwrite"
)

var (
	ErrNotShared      = errors.New("not on the authorized-user list")
	ErrNotSelfRemoval = errors.New("only self-removal is allowed")
)

// Result carries the reconciled authorized-user list. NoOp is set when the
// candidate list equals the existing one, so callers can skip the write.
type Result struct {
	Users []string
	NoOp  bool
}

// Reconcile computes the new authorized-user list for a file.
//
// The owner's email is stripped from the proposal silently (owner access is
// implicit, never enumerated). In append mode the candidate is the union of
// existing and proposed; in overwrite mode it is the stripped proposal alone.
// A non-owner must already be on the existing list, and the only removal a
// non-owner may cause is their own; any other difference fails. Order of
// surviving entries is preserved.
func Reconcile(existing, proposed []string, ownerEmail, actingEmail string, mode Mode) (*Result, error) {
	filtered := make([]string, 0, len(proposed))
	for _, email := range proposed {
		if email != ownerEmail && !slices.Contains(filtered, email) {
			filtered = append(filtered, email)
		}
	}

	var candidate []string
	if mode == ModeOverwrite {
		candidate = filtered
	} else {
		candidate = slices.Clone(existing)
		for _, email := range filtered {
			if !slices.Contains(candidate, email) {
				candidate = append(candidate, email)
			}
		}
	}

	if actingEmail != ownerEmail {
		if !slices.Contains(existing, actingEmail) {
			return nil, ErrNotShared
		}
		var removed []string
		for _, email := range existing {
			if !slices.Contains(candidate, email) {
				removed = append(removed, email)
			}
		}
		if len(removed) > 0 && !(len(removed) == 1 && removed[0] == actingEmail) {
			return nil, ErrNotSelfRemoval
		}
		// a non-owner also must not add anyone
		for _, email := range candidate {
			if !slices.Contains(existing, email) {
				return nil, ErrNotSelfRemoval
			}
		}
	}

	if sameSet(existing, candidate) {
		return &Result{Users: existing, NoOp: true}, nil
	}

	return &Result{Users: candidate}, nil
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, email := range a {
		if !slices.Contains(b, email) {
			return false
		}
	}
	return true
}
