// Package registry tracks the concurrent debug sessions of one server
// process: creation, lookup by id or human reference, the single "active"
// session used when callers omit a reference, grouping of sessions that
// share one browser process, and an inactivity-based reaper.
//
// BrowserInstance membership is held as session-id sets and each Session
// carries its instance key rather than a pointer, so the grouping is
// cycle-free.
package registry

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inspectd/cdp-mcp/internal/config"
	"github.com/inspectd/cdp-mcp/internal/debug"
	"github.com/inspectd/cdp-mcp/internal/errors"
	"github.com/inspectd/cdp-mcp/pkg/types"
)

// Session is one registered inspection target.
type Session struct {
	ID            string
	Reference     string
	NormalizedRef string
	Host          string
	Port          int
	Kind          types.RuntimeKind
	PageIndex     int
	CreatedAt     time.Time

	// Debug owns the protocol state for this target.
	Debug *debug.Session

	// BrowserKey is the host:port grouping key, set for browser-kind
	// sessions only.
	BrowserKey string

	lastActivity time.Time
}

// BrowserInstance groups the sessions attached to tabs of one browser
// process.
type BrowserInstance struct {
	Key        string
	Host       string
	Port       int
	SessionIDs map[string]struct{}
}

// ConnectFunc performs the protocol handshake against host:port and
// returns a ready debug session plus the detected runtime kind.
// internal/cdp provides the production implementation; tests substitute
// fakes.
type ConnectFunc func(ctx context.Context, host string, port, pageIndex int) (*debug.Session, types.RuntimeKind, error)

// Registry manages every live session. The active-session pointer and the
// reference map are updated atomically with respect to create, close and
// switch operations.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byRef    map[string]string // normalized reference -> session id
	browsers map[string]*BrowserInstance
	activeID string

	connect ConnectFunc
	cfg     *config.Config

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a registry and starts its inactivity reaper.
func New(cfg *config.Config, connect ConnectFunc) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		sessions: make(map[string]*Session),
		byRef:    make(map[string]string),
		browsers: make(map[string]*BrowserInstance),
		connect:  connect,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
	}

	go r.reapLoop()

	return r
}

// reapLoop periodically closes sessions nobody has touched within the
// configured threshold.
func (r *Registry) reapLoop() {
	interval := r.cfg.ReapInterval()
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			if n := r.ReapInactive(r.cfg.ReapThreshold()); n > 0 {
				log.Printf("Reaped %d inactive session(s)", n)
			}
		}
	}
}

// Create attaches to host:port and registers the resulting session. The
// first live session becomes active. A session sharing host:port with an
// existing browser-kind session joins that BrowserInstance instead of
// creating a new one.
func (r *Registry) Create(ctx context.Context, host string, port int, reference string, pageIndex int) (*Session, error) {
	normalized := ""
	if reference != "" {
		if IsReservedRef(reference) {
			return nil, errors.ReservedReference(reference, NormalizeRef(reference))
		}
		normalized = NormalizeRef(reference)
	}

	r.mu.RLock()
	count := len(r.sessions)
	if normalized != "" {
		if existingID, ok := r.byRef[normalized]; ok {
			r.mu.RUnlock()
			return nil, errors.ReferenceConflict(reference, normalized, existingID)
		}
	}
	r.mu.RUnlock()

	if count >= r.cfg.MaxSessions {
		return nil, maxSessionsError(r.cfg.MaxSessions)
	}

	// The handshake happens outside the lock; it can take seconds.
	dbg, kind, err := r.connect(ctx, host, port, pageIndex)
	if err != nil {
		return nil, errors.ConnectFailed(host, port, err)
	}

	session := &Session{
		ID:            uuid.New().String(),
		Reference:     reference,
		NormalizedRef: normalized,
		Host:          host,
		Port:          port,
		Kind:          kind,
		PageIndex:     pageIndex,
		CreatedAt:     time.Now(),
		Debug:         dbg,
		lastActivity:  time.Now(),
	}

	r.mu.Lock()

	// The session count and reference map may both have changed while we
	// were connecting; re-check under the write lock.
	if len(r.sessions) >= r.cfg.MaxSessions {
		r.mu.Unlock()
		if err := dbg.Disconnect(); err != nil {
			log.Printf("Warning: failed to disconnect over-limit session: %v", err)
		}
		return nil, maxSessionsError(r.cfg.MaxSessions)
	}
	if normalized != "" {
		if existingID, ok := r.byRef[normalized]; ok {
			r.mu.Unlock()
			if err := dbg.Disconnect(); err != nil {
				log.Printf("Warning: failed to disconnect conflicting session: %v", err)
			}
			return nil, errors.ReferenceConflict(reference, normalized, existingID)
		}
		r.byRef[normalized] = session.ID
	}

	if kind == types.RuntimeKindBrowser {
		key := fmt.Sprintf("%s:%d", host, port)
		session.BrowserKey = key
		instance, ok := r.browsers[key]
		if !ok {
			instance = &BrowserInstance{
				Key:        key,
				Host:       host,
				Port:       port,
				SessionIDs: make(map[string]struct{}),
			}
			r.browsers[key] = instance
		}
		instance.SessionIDs[session.ID] = struct{}{}
	}

	r.sessions[session.ID] = session
	if r.activeID == "" {
		r.activeID = session.ID
	}
	r.mu.Unlock()

	return session, nil
}

func maxSessionsError(limit int) error {
	return errors.Wrap(errors.CodeInvalidParameter,
		fmt.Sprintf("maximum number of sessions (%d) reached", limit),
		"Close an existing session before attaching a new one.", nil)
}

// Resolve looks a session up by id first, then by normalized reference.
func (r *Registry) Resolve(refOrID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if session, ok := r.sessions[refOrID]; ok {
		return session, nil
	}
	if id, ok := r.byRef[NormalizeRef(refOrID)]; ok {
		return r.sessions[id], nil
	}
	return nil, errors.SessionNotFound(refOrID)
}

// GetActive returns the active session, or an error when none exists.
func (r *Registry) GetActive() (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.activeID == "" {
		return nil, errors.NoActiveSession()
	}
	return r.sessions[r.activeID], nil
}

// SetActive makes a session the default target for reference-free
// operations and refreshes its activity timestamp. Returns false for an
// unknown id.
func (r *Registry) SetActive(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return false
	}
	r.activeID = id
	session.lastActivity = time.Now()
	return true
}

// Touch refreshes a session's last-activity timestamp.
func (r *Registry) Touch(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		session.lastActivity = time.Now()
	}
}

// Close tears a session down: disconnects its debug session, removes it
// from its BrowserInstance (deleting the instance when empty), and, if it
// was active, promotes an arbitrary remaining session. Idempotent:
// closing an unknown id returns false.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	session, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.sessions, id)
	if session.NormalizedRef != "" {
		delete(r.byRef, session.NormalizedRef)
	}
	if session.BrowserKey != "" {
		if instance, ok := r.browsers[session.BrowserKey]; ok {
			delete(instance.SessionIDs, id)
			if len(instance.SessionIDs) == 0 {
				delete(r.browsers, session.BrowserKey)
			}
		}
	}
	if r.activeID == id {
		r.activeID = ""
		for remaining := range r.sessions {
			r.activeID = remaining
			break
		}
	}
	r.mu.Unlock()

	if err := session.Debug.Disconnect(); err != nil {
		log.Printf("Warning: failed to disconnect session %s: %v (continuing cleanup)", id, err)
	}
	return true
}

// ReapInactive closes every session whose last activity is older than
// threshold and returns how many were closed. Reaping a session that is
// paused mid-inspection is logged: it discards live debugging state.
func (r *Registry) ReapInactive(threshold time.Duration) int {
	now := time.Now()

	r.mu.RLock()
	var stale []*Session
	for _, session := range r.sessions {
		if now.Sub(session.lastActivity) > threshold {
			stale = append(stale, session)
		}
	}
	r.mu.RUnlock()

	count := 0
	for _, session := range stale {
		if session.Debug.State() == types.SessionStatePaused {
			log.Printf("Warning: reaping session %s while it is paused; its inspection state is discarded", session.ID)
		}
		if r.Close(session.ID) {
			count++
		}
	}
	return count
}

// List returns a caller-facing summary of every live session.
func (r *Registry) List() []types.SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.SessionInfo, 0, len(r.sessions))
	for _, session := range r.sessions {
		out = append(out, types.SessionInfo{
			SessionID:    session.ID,
			Reference:    session.Reference,
			Host:         session.Host,
			Port:         session.Port,
			Kind:         session.Kind,
			State:        session.Debug.State(),
			Active:       session.ID == r.activeID,
			PageIndex:    session.PageIndex,
			CreatedAt:    session.CreatedAt,
			LastActivity: session.lastActivity,
		})
	}
	return out
}

// BrowserInstanceFor returns the grouping for a host:port key, if any.
func (r *Registry) BrowserInstanceFor(host string, port int) (*BrowserInstance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	instance, ok := r.browsers[fmt.Sprintf("%s:%d", host, port)]
	return instance, ok
}

// Shutdown stops the reaper and closes every session.
func (r *Registry) Shutdown() {
	r.cancel()

	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		r.Close(id)
	}
}
