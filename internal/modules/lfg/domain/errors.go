package domain

import "fmt"

// DuplicateSessionError - the user already holds an active session entry and
// cannot create or join another one until it is cleared.
type DuplicateSessionError struct {
	UserID    string
	SessionID string
}

func (e DuplicateSessionError) Error() string {
	return fmt.Sprintf("user %s already belongs to session %s", e.UserID, e.SessionID)
}

// NotFoundError - the referenced session or user mapping is absent. Often a
// benign race (the session expired between render and click).
type NotFoundError struct {
	SessionID string
	UserID    string
}

func (e NotFoundError) Error() string {
	if e.SessionID != "" {
		return fmt.Sprintf("session %s not found", e.SessionID)
	}
	return fmt.Sprintf("no active session for user %s", e.UserID)
}

// PermissionError - a non-creator attempted an owner-only action.
type PermissionError struct {
	UserID    string
	SessionID string
}

func (e PermissionError) Error() string {
	return fmt.Sprintf("user %s is not the creator of session %s", e.UserID, e.SessionID)
}

// CapacityError - a join was attempted on a session that is already full.
type CapacityError struct {
	SessionID string
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("session %s is already full", e.SessionID)
}
