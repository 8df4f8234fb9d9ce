// Package login owns the login session state machine and the background
// flows that drive the browser through Telegram Web's phone login.
package login

import (
	"errors"
	"time"
)

// State is the login session's position in the phone-login flow.
type State string

const (
	// StateReady means a session exists but no flow has been dispatched.
	StateReady State = "ready"

	// StateAwaitingPhoneResult means the phone flow is running.
	StateAwaitingPhoneResult State = "awaiting_phone_result"

	// StateCodeRequired means the phone flow completed and the one-time
	// code can be submitted.
	StateCodeRequired State = "code_required"

	// StateAwaitingCodeResult means the code flow is running.
	StateAwaitingCodeResult State = "awaiting_code_result"

	// StateLoginSuccess means the code was accepted and session data has
	// been exported.
	StateLoginSuccess State = "login_success"

	// StateFailed means the last flow failed; see Session.LastError.
	StateFailed State = "failed"
)

// StatusNotInitialized is reported by Status before the first phone
// submission creates a session.
const StatusNotInitialized = "not_initialized"

// Validation and precondition errors reported synchronously to callers.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotInitialized = errors.New("login not initialized")
	ErrInvalidState   = errors.New("invalid session state")
	ErrFlowInFlight   = errors.New("login flow already in progress")
)

// Session is one login attempt. All fields are mutated only by the
// Manager under its lock; callers see copies.
type Session struct {
	ID          string
	State       State
	PhoneNumber string

	// LastError is set only in StateFailed.
	LastError string

	// Exported holds the browser's localStorage snapshot; set only on
	// the transition into StateLoginSuccess.
	Exported map[string]string

	CreatedAt time.Time
}

// StatusLabel renders the state for status polling. Failed sessions
// embed the error text so a polling caller sees the cause directly.
func (s *Session) StatusLabel() string {
	if s.State == StateFailed {
		return "error: " + s.LastError
	}
	return string(s.State)
}

// inFlight reports whether a background flow currently owns the session.
func (s *Session) inFlight() bool {
	return s.State == StateAwaitingPhoneResult || s.State == StateAwaitingCodeResult
}
