package domain

import "time"

// Status describes where an account sits in the ownership lifecycle.
type Status string

const (
	StatusLoggedOut Status = "logged_out"
	StatusActive    Status = "active"
	StatusPending   Status = "pending"
)

// Account binds a username to at most one owning device. Accounts are created
// once from the configured credential list and never deleted; all other fields
// are mutated exclusively by the session service and the liveness sweeper.
//
// Invariants:
//   - StatusPending implies PendingDevice and PendingRequestID are set.
//   - StatusActive implies OwnerDevice and SessionToken are set.
//   - StatusLoggedOut implies SessionToken is empty (OwnerDevice may survive
//     a logout depending on the configured release policy).
type Account struct {
	Password         string    `json:"password"`
	OwnerDevice      string    `json:"ownerDevice,omitempty"`
	SessionToken     string    `json:"sessionToken,omitempty"`
	Status           Status    `json:"status"`
	PendingDevice    string    `json:"pendingDevice,omitempty"`
	PendingRequestID string    `json:"pendingRequestId,omitempty"`
	DeclineMessage   string    `json:"declineMessage,omitempty"`
	LastActiveAt     time.Time `json:"lastActiveAt"`
}

// Credential is one entry of the configured account list.
type Credential struct {
	Username string
	Password string
}
