package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/domain"
	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/metrics"
	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/store"
)

// Options carries the policy knobs of the state machine.
type Options struct {
	// LoginRedirectURL is returned to clients on every successful grant.
	LoginRedirectURL string
	// DeclineMessage is queued for the contender when the owner declines.
	DeclineMessage string
	// HeartbeatDebounce bounds how often heartbeats rewrite lastActiveAt.
	HeartbeatDebounce time.Duration
	// LogoutReleasesOwnership controls whether logout clears the device
	// binding or only the session token.
	LogoutReleasesOwnership bool
}

// Service is the ownership state machine. All methods run as one serialized
// store transaction each, so two concurrent first-claim logins can never both
// grant: one commits first and the other observes the owned state.
type Service struct {
	store *store.Store
	clock clockwork.Clock
	opts  Options
}

func NewService(st *store.Store, clock clockwork.Clock, opts Options) *Service {
	return &Service{store: st, clock: clock, opts: opts}
}

// Login arbitrates ownership for one device.
//
// A queued decline message is delivered first and cleared, even to the
// legitimate owner: the slot is best-effort and this guarantees at-least-once
// delivery to some poller. Otherwise: an unowned account is granted, the
// owning device is refreshed, and any other device opens (or overwrites) a
// pending transfer request while the incumbent stays untouched.
func (s *Service) Login(ctx context.Context, username, password, deviceID string) (domain.LoginResult, error) {
	if username == "" || password == "" || deviceID == "" {
		return domain.LoginResult{}, domain.ErrMissingFields
	}

	var result domain.LoginResult
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		acct, ok := tx.Account(username)
		if !ok {
			return domain.ErrUnknownAccount
		}
		if acct.Password != password {
			return domain.ErrWrongPassword
		}

		if acct.DeclineMessage != "" {
			result = domain.LoginResult{Declined: true, Message: acct.DeclineMessage}
			acct.DeclineMessage = ""
			tx.MarkChanged()
			return nil
		}

		now := s.clock.Now()
		switch {
		case acct.OwnerDevice == "":
			// First claim, or previously reclaimed by the sweeper.
			acct.OwnerDevice = deviceID
			acct.SessionToken = uuid.NewString()
			acct.Status = domain.StatusActive
			acct.LastActiveAt = now
			result = domain.LoginResult{Granted: true, Token: acct.SessionToken, RedirectURL: s.opts.LoginRedirectURL}

		case acct.OwnerDevice == deviceID:
			if acct.SessionToken == "" {
				acct.SessionToken = uuid.NewString()
			}
			// An outstanding contention survives an owner refresh; it must
			// stay visible to polls until approved or declined.
			if acct.Status != domain.StatusPending {
				acct.Status = domain.StatusActive
			}
			acct.LastActiveAt = now
			result = domain.LoginResult{Granted: true, Token: acct.SessionToken, RedirectURL: s.opts.LoginRedirectURL}

		default:
			// Contending device. A new request overwrites a previous one.
			acct.Status = domain.StatusPending
			acct.PendingDevice = deviceID
			acct.PendingRequestID = uuid.NewString()
			result = domain.LoginResult{RequiresApproval: true, RequestID: acct.PendingRequestID}
		}
		tx.MarkChanged()
		return nil
	})
	if err != nil {
		metrics.LoginTotal.WithLabelValues("rejected").Inc()
		return domain.LoginResult{}, err
	}

	switch {
	case result.Declined:
		metrics.LoginTotal.WithLabelValues("declined").Inc()
		slog.InfoContext(ctx, "Login delivered decline message", "username", username, "device", deviceID)
	case result.RequiresApproval:
		metrics.LoginTotal.WithLabelValues("approval_required").Inc()
		slog.InfoContext(ctx, "Login requires approval", "username", username, "device", deviceID, "request_id", result.RequestID)
	default:
		metrics.LoginTotal.WithLabelValues("granted").Inc()
		slog.InfoContext(ctx, "Login granted", "username", username, "device", deviceID)
	}
	return result, nil
}

// CheckPending reports whether a transfer request is waiting on username.
// It doubles as a heartbeat: lastActiveAt is stamped at most once per
// debounce interval to bound write frequency from polling clients.
// Unknown accounts report no request rather than failing, matching the
// polling contract clients rely on.
func (s *Service) CheckPending(ctx context.Context, username string) (domain.PendingStatus, error) {
	if username == "" {
		return domain.PendingStatus{}, domain.ErrMissingFields
	}

	var status domain.PendingStatus
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		acct, ok := tx.Account(username)
		if !ok {
			return nil
		}
		status = pendingStatus(acct)
		s.touch(tx, acct)
		return nil
	})
	if err != nil {
		return domain.PendingStatus{}, err
	}
	return status, nil
}

// Approve resolves the pending request in favor of the contender. A stale or
// replayed request ID fails with ErrRequestMismatch and changes nothing.
// On success ownership transfers and a fresh token is minted, so the old
// owner's next heartbeat observes the overwrite and must log out locally.
func (s *Service) Approve(ctx context.Context, username, requestID string) (domain.ApproveResult, error) {
	if username == "" || requestID == "" {
		return domain.ApproveResult{}, domain.ErrMissingFields
	}

	var result domain.ApproveResult
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		acct, ok := tx.Account(username)
		if !ok {
			return domain.ErrUnknownAccount
		}
		if acct.PendingRequestID == "" || acct.PendingRequestID != requestID {
			return domain.ErrRequestMismatch
		}

		acct.OwnerDevice = acct.PendingDevice
		acct.SessionToken = uuid.NewString()
		acct.Status = domain.StatusActive
		acct.PendingDevice = ""
		acct.PendingRequestID = ""
		acct.DeclineMessage = ""
		acct.LastActiveAt = s.clock.Now()
		tx.MarkChanged()

		result = domain.ApproveResult{Token: acct.SessionToken}
		return nil
	})
	if err != nil {
		metrics.ApproveTotal.WithLabelValues("mismatch").Inc()
		return domain.ApproveResult{}, err
	}

	metrics.ApproveTotal.WithLabelValues("ok").Inc()
	slog.InfoContext(ctx, "Ownership transfer approved", "username", username, "request_id", requestID)
	return result, nil
}

// Decline cancels the pending request. The incumbent keeps ownership and
// token untouched; a decline message is queued for the contender's next
// poll. Delivery is single-slot and best-effort.
func (s *Service) Decline(ctx context.Context, username string) error {
	if username == "" {
		return domain.ErrMissingFields
	}

	err := s.store.Update(ctx, func(tx *store.Tx) error {
		acct, ok := tx.Account(username)
		if !ok {
			return domain.ErrUnknownAccount
		}

		acct.Status = domain.StatusActive
		acct.PendingDevice = ""
		acct.PendingRequestID = ""
		acct.DeclineMessage = s.opts.DeclineMessage
		tx.MarkChanged()
		return nil
	})
	if err != nil {
		return err
	}

	metrics.DeclineTotal.Inc()
	slog.InfoContext(ctx, "Ownership transfer declined", "username", username)
	return nil
}

// CheckDecline delivers and clears a queued decline message without a full
// login attempt.
func (s *Service) CheckDecline(ctx context.Context, username string) (domain.DeclineStatus, error) {
	if username == "" {
		return domain.DeclineStatus{}, domain.ErrMissingFields
	}

	var status domain.DeclineStatus
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		acct, ok := tx.Account(username)
		if !ok || acct.DeclineMessage == "" {
			return nil
		}
		status = domain.DeclineStatus{HasDecline: true, Message: acct.DeclineMessage}
		acct.DeclineMessage = ""
		tx.MarkChanged()
		return nil
	})
	if err != nil {
		return domain.DeclineStatus{}, err
	}
	return status, nil
}

// Logout invalidates the presented session token. Whether the device binding
// is released as well is a policy knob; a pending request is cancelled either
// way so the status invariants keep holding.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrMissingFields
	}

	var username string
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		name, ok := tx.UsernameByToken(token)
		if !ok {
			return domain.ErrTokenNotFound
		}
		acct, ok := tx.Account(name)
		if !ok || acct.SessionToken != token {
			return domain.ErrTokenNotFound
		}
		username = name

		acct.SessionToken = ""
		acct.Status = domain.StatusLoggedOut
		acct.PendingDevice = ""
		acct.PendingRequestID = ""
		if s.opts.LogoutReleasesOwnership {
			acct.OwnerDevice = ""
		}
		tx.MarkChanged()
		return nil
	})
	if err != nil {
		metrics.LogoutTotal.WithLabelValues("not_found").Inc()
		return err
	}

	metrics.LogoutTotal.WithLabelValues("ok").Inc()
	slog.InfoContext(ctx, "Logged out", "username", username, "released_ownership", s.opts.LogoutReleasesOwnership)
	return nil
}

// Validate confirms the presented token is still the authoritative one for
// its account. An overwritten token means the session was superseded by an
// approved transfer or fresh grant; the caller must force a local logout.
// A valid heartbeat also reports pending contention and stamps liveness.
func (s *Service) Validate(ctx context.Context, username, token string) (domain.ValidationStatus, error) {
	if username == "" || token == "" {
		return domain.ValidationStatus{}, domain.ErrMissingFields
	}

	var status domain.ValidationStatus
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		acct, ok := tx.Account(username)
		if !ok {
			status = domain.ValidationStatus{Reason: domain.ReasonUnknownAccount}
			return nil
		}
		if acct.SessionToken != token {
			status = domain.ValidationStatus{Reason: domain.ReasonOverwritten}
			return nil
		}

		status = domain.ValidationStatus{Valid: true, Pending: pendingStatus(acct)}
		s.touch(tx, acct)
		return nil
	})
	if err != nil {
		return domain.ValidationStatus{}, err
	}

	switch {
	case status.Valid:
		metrics.HeartbeatTotal.WithLabelValues("valid").Inc()
	case status.Reason == domain.ReasonOverwritten:
		metrics.HeartbeatTotal.WithLabelValues("overwritten").Inc()
	default:
		metrics.HeartbeatTotal.WithLabelValues("unknown_account").Inc()
	}
	return status, nil
}

// touch stamps lastActiveAt on an owned account, but only once per debounce
// interval so heartbeat polls stay read-mostly.
func (s *Service) touch(tx *store.Tx, acct *domain.Account) {
	if acct.OwnerDevice == "" {
		return
	}
	now := s.clock.Now()
	if now.Sub(acct.LastActiveAt) <= s.opts.HeartbeatDebounce {
		return
	}
	acct.LastActiveAt = now
	tx.MarkChanged()
}

func pendingStatus(acct *domain.Account) domain.PendingStatus {
	if acct.Status != domain.StatusPending {
		return domain.PendingStatus{}
	}
	return domain.PendingStatus{HasRequest: true, RequestID: acct.PendingRequestID}
}
