package domain

import (
	"errors"
	"fmt"
	"strings"

	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
)

var ErrUnknownStatus = errors.New("unknown status")

// Status of Data.
type Status string

const (
	// payload is being written.
	Uploading Status = "UPLOADING"

	// payload is complete and usable.
	Valid Status = "VALID"

	// payload has been found broken or withdrawn.
	Invalid Status = "INVALID"

	// logically deleted. No more transitions.
	Deleted Status = "DELETED"
)

func (s Status) String() string {
	return string(s)
}

// Statuses returns all known statuses.
func Statuses() []Status {
	return []Status{Uploading, Valid, Invalid, Deleted}
}

// AsStatus parses status name (case insensitive).
func AsStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case Uploading:
		return Uploading, nil
	case Valid:
		return Valid, nil
	case Invalid:
		return Invalid, nil
	case Deleted:
		return Deleted, nil
	default:
		return Status(s), fmt.Errorf("%w: %s", ErrUnknownStatus, s)
	}
}

// CanChangeTo reports whether the status transition s -> to is allowed.
//
// Staying in the same status is not a transition.
func (s Status) CanChangeTo(to Status) bool {
	switch s {
	case Uploading:
		switch to {
		case Valid, Invalid, Deleted:
			return true
		}
	case Valid:
		switch to {
		case Invalid, Deleted:
			return true
		}
	case Invalid:
		switch to {
		case Valid, Deleted:
			return true
		}
	}
	return false
}

// Terminal reports whether no transitions are left for the status.
func (s Status) Terminal() bool {
	return s == Deleted
}

// Transit checks whether Data identified by identity can change its status from -> to.
//
// to is case insensitive. The returned status is the canonical form of to.
func Transit(identity string, from, to Status) (Status, error) {
	st, err := AsStatus(string(to))
	if err != nil {
		return "", domerr.NewValidation("status", "%s", err)
	}
	if !from.CanChangeTo(st) {
		return "", domerr.InvalidTransition{Identity: identity, From: from.String(), To: st.String()}
	}
	return st, nil
}
