package domain

// LoginResult is the outcome of a login attempt. Exactly one of Granted,
// RequiresApproval, or Declined is set.
type LoginResult struct {
	Granted     bool
	Token       string
	RedirectURL string

	RequiresApproval bool
	RequestID        string

	Declined bool
	Message  string
}

// PendingStatus reports whether a contender is waiting for approval.
type PendingStatus struct {
	HasRequest bool
	RequestID  string
}

// ApproveResult carries the token minted for the newly approved device.
type ApproveResult struct {
	Token string
}

// DeclineStatus carries a queued decline notification, if any.
type DeclineStatus struct {
	HasDecline bool
	Message    string
}

// ValidationReason explains why a presented token failed validation.
type ValidationReason string

const (
	// ReasonUnknownAccount means the username does not exist.
	ReasonUnknownAccount ValidationReason = "unknown_account"
	// ReasonOverwritten means the token was superseded by a newer grant;
	// the caller must treat this as a forced logout.
	ReasonOverwritten ValidationReason = "overwritten"
)

// ValidationStatus is the result of a heartbeat validation. A valid heartbeat
// also reports pending contention so a single round trip serves both.
type ValidationStatus struct {
	Valid   bool
	Reason  ValidationReason
	Pending PendingStatus
}
