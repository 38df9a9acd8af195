package policy

import "github.com/basma-club/clubhub/internal/domain"

// RSVPAction is the storage write needed to move between two RSVP states.
type RSVPAction int

const (
	RSVPNoop RSVPAction = iota
	RSVPInsert
	RSVPUpdate
	RSVPDelete
)

func (a RSVPAction) String() string {
	switch a {
	case RSVPInsert:
		return "insert"
	case RSVPUpdate:
		return "update"
	case RSVPDelete:
		return "delete"
	}
	return "noop"
}

// TransitionRSVP returns the state after requesting status while in current.
// Requesting the current state clears it.
func TransitionRSVP(current, requested domain.RSVPStatus) domain.RSVPStatus {
	if current == requested {
		return domain.RSVPNone
	}
	return requested
}

// PlanRSVP returns the next state together with the write that produces it.
func PlanRSVP(current, requested domain.RSVPStatus) (domain.RSVPStatus, RSVPAction) {
	next := TransitionRSVP(current, requested)
	switch {
	case next == current:
		return next, RSVPNoop
	case current == domain.RSVPNone:
		return next, RSVPInsert
	case next == domain.RSVPNone:
		return next, RSVPDelete
	default:
		return next, RSVPUpdate
	}
}
