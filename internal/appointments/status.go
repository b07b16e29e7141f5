package appointments

import "github.com/careloop/clinic-platform/internal/identity"

// Status is the lifecycle state of an appointment request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// transitions is the full forward transition table. Anything absent here is
// disallowed regardless of what a client asks for.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCompleted},
}

// transitionRole names the role allowed to drive each target status.
var transitionRole = map[Status]identity.Role{
	StatusApproved:  identity.RoleDoctor,
	StatusRejected:  identity.RoleDoctor,
	StatusCompleted: identity.RoleDoctor,
}

// CanTransition reports whether from -> to is an allowed forward transition.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RoleFor returns the role permitted to move an appointment into to.
func RoleFor(to Status) (identity.Role, bool) {
	role, ok := transitionRole[to]
	return role, ok
}
