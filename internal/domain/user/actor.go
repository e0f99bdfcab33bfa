package user

import "github.com/google/uuid"

// Actor is the request-scoped identity every engine call receives. It replaces
// any ambient session state: handlers build it from the validated token and
// pass it down explicitly.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsStaff() bool {
	return a.Role.Privileged()
}
