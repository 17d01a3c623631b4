package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/yigit/visitportal/internal/app/auth"
	"github.com/yigit/visitportal/internal/app/models"
	"github.com/yigit/visitportal/internal/app/repositories"
	"github.com/yigit/visitportal/internal/pkg/apiclient"
	"github.com/yigit/visitportal/internal/pkg/apperrors"
	"github.com/yigit/visitportal/internal/pkg/websocket"
)

// Publisher receives identity changes of a browser session
type Publisher interface {
	Publish(sessionID, event string, userID *int64)
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, string, *int64) {}

// SessionState is the identity snapshot a request is served with
type SessionState struct {
	SessionID     string
	Loading       bool
	User          *models.User
	Roles         auth.RoleSet
	SetupPrompted bool
}

// Authenticated reports whether a user is known
func (s SessionState) Authenticated() bool {
	return s.User != nil
}

// NeedsCandidateSetup reports whether the candidate form is still pending
func (s SessionState) NeedsCandidateSetup() bool {
	return s.User.NeedsCandidateSetup()
}

// NeedsRoomSetup reports whether staff still has to provide a room
func (s SessionState) NeedsRoomSetup() bool {
	return s.User.NeedsRoomSetup()
}

// Guard converts the state into the input of a route guard
func (s SessionState) Guard() auth.GuardState {
	return auth.GuardState{Loading: s.Loading, User: s.User, Roles: s.Roles}
}

func newState(sid string, user *models.User, loading, prompted bool) SessionState {
	st := SessionState{SessionID: sid, Loading: loading, User: user, SetupPrompted: prompted}
	if user != nil {
		st.Roles = auth.RolesOf(user)
	}
	return st
}

// SessionConfig tunes identity confirmation
type SessionConfig struct {
	// ResolveWait bounds how long a request waits for confirmation; zero waits for the result
	ResolveWait time.Duration
	// ConfirmInterval is how long a confirmed identity is trusted without asking the API again
	ConfirmInterval time.Duration
}

// SessionService owns the browser session identity: it confirms cached
// identities with the API, signs in and out, and publishes every change.
type SessionService struct {
	store     repositories.SessionStore
	api       *apiclient.Client
	publisher Publisher
	cfg       SessionConfig
	group     singleflight.Group
	locks     sessionLocks
	now       func() time.Time
	logger    zerolog.Logger
}

// NewSessionService creates a new session service
func NewSessionService(store repositories.SessionStore, api *apiclient.Client, publisher Publisher, cfg SessionConfig, logger zerolog.Logger) *SessionService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &SessionService{
		store:     store,
		api:       api,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
		logger:    logger.With().Str("component", "session").Logger(),
	}
}

// sessionLocks serializes read-modify-write cycles per session. An entry
// lives only while someone holds or waits for it.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (l *sessionLocks) lock(sid string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sessionLock)
	}
	e, ok := l.locks[sid]
	if !ok {
		e = &sessionLock{}
		l.locks[sid] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, sid)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// update applies fn to the stored record (or a fresh one) and saves it
func (s *SessionService) update(ctx context.Context, sid string, fn func(rec *repositories.SessionRecord)) (*repositories.SessionRecord, error) {
	rec, _, err := s.mutate(ctx, sid, nil, fn)
	return rec, err
}

// updateAt is update guarded by a generation read earlier. When the session
// was signed in, signed out or purged since, the record is left untouched
// and applied is false; rec is then the current record or nil.
func (s *SessionService) updateAt(ctx context.Context, sid string, gen int64, fn func(rec *repositories.SessionRecord)) (rec *repositories.SessionRecord, applied bool, err error) {
	return s.mutate(ctx, sid, &gen, fn)
}

func (s *SessionService) mutate(ctx context.Context, sid string, gen *int64, fn func(rec *repositories.SessionRecord)) (*repositories.SessionRecord, bool, error) {
	unlock := s.locks.lock(sid)
	defer unlock()

	rec, err := s.store.Get(ctx, sid)
	switch {
	case errors.Is(err, apperrors.ErrSessionNotFound):
		if gen != nil {
			return nil, false, nil
		}
		rec = &repositories.SessionRecord{ID: sid}
	case err != nil:
		return nil, false, err
	case gen != nil && rec.Generation != *gen:
		return rec, false, nil
	}
	fn(rec)
	if err := s.store.Set(ctx, rec); err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (s *SessionService) load(ctx context.Context, sid string) (*repositories.SessionRecord, error) {
	rec, err := s.store.Get(ctx, sid)
	if errors.Is(err, apperrors.ErrSessionNotFound) {
		return nil, nil
	}
	return rec, err
}

func stateOf(sid string, rec *repositories.SessionRecord) SessionState {
	if rec == nil {
		return newState(sid, nil, false, false)
	}
	return newState(sid, rec.Identity, false, rec.SetupPrompted)
}

func userID(u *models.User) *int64 {
	if u == nil {
		return nil
	}
	id := u.ID
	return &id
}

// Resolve returns the identity of a browser session. A cached identity is
// used optimistically and confirmed with GET /users/me/; concurrent
// confirmations of one session share a single call. If the confirmation
// outlasts ResolveWait the state is Loading with the cached identity.
func (s *SessionService) Resolve(ctx context.Context, sid string) (SessionState, error) {
	rec, err := s.load(ctx, sid)
	if err != nil {
		return SessionState{SessionID: sid}, err
	}
	if rec == nil || (rec.Identity == nil && len(rec.APICookies) == 0) {
		return newState(sid, nil, false, false), nil
	}

	if rec.Identity != nil && rec.ConfirmedAt != nil && s.now().Sub(*rec.ConfirmedAt) < s.cfg.ConfirmInterval {
		return newState(sid, rec.Identity, false, rec.SetupPrompted), nil
	}

	ch := s.group.DoChan(sid, func() (interface{}, error) {
		return s.confirm(context.WithoutCancel(ctx), sid)
	})

	var timeout <-chan time.Time
	if s.cfg.ResolveWait > 0 {
		timer := time.NewTimer(s.cfg.ResolveWait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case res := <-ch:
		if res.Err != nil {
			return newState(sid, nil, false, false), res.Err
		}
		return res.Val.(SessionState), nil
	case <-timeout:
		return newState(sid, rec.Identity, true, rec.SetupPrompted), nil
	case <-ctx.Done():
		return newState(sid, rec.Identity, true, rec.SetupPrompted), ctx.Err()
	}
}

// confirm asks the API who the session belongs to and stores the answer.
// Any failure signs the session out locally. An answer that arrives after the
// session was signed in or out again is dropped.
func (s *SessionService) confirm(ctx context.Context, sid string) (SessionState, error) {
	rec, err := s.load(ctx, sid)
	if err != nil {
		return SessionState{}, err
	}
	if rec == nil {
		return newState(sid, nil, false, false), nil
	}
	gen := rec.Generation

	conn := s.api.Session(rec.APICookies)
	resp, apiErr := conn.Me(ctx)
	previous := rec.Identity

	if apiErr != nil {
		s.logger.Debug().Err(apiErr).Str("sessionID", sid).Msg("Identity confirmation failed, clearing session identity")
		current, applied, err := s.updateAt(ctx, sid, gen, func(r *repositories.SessionRecord) {
			r.Identity = nil
			r.APICookies = nil
			r.ConfirmedAt = nil
			r.SetupPrompted = false
			r.Generation++
		})
		if err != nil {
			return SessionState{}, err
		}
		if !applied {
			return stateOf(sid, current), nil
		}
		if previous != nil {
			s.publisher.Publish(sid, websocket.EventLogout, nil)
		}
		return newState(sid, nil, false, false), nil
	}

	user := resp.Data
	now := s.now()
	saved, applied, err := s.updateAt(ctx, sid, gen, func(r *repositories.SessionRecord) {
		r.Identity = &user
		r.APICookies = conn.Cookies()
		r.ConfirmedAt = &now
	})
	if err != nil {
		return SessionState{}, err
	}
	if !applied {
		s.logger.Debug().Str("sessionID", sid).Int64("userID", user.ID).Msg("Discarding identity confirmation of a replaced session")
		return stateOf(sid, saved), nil
	}
	if previous == nil || previous.ID != user.ID {
		s.publisher.Publish(sid, websocket.EventLogin, userID(&user))
	} else if !sameIdentity(previous, &user) {
		s.publisher.Publish(sid, websocket.EventRefresh, userID(&user))
	}
	return newState(sid, saved.Identity, false, saved.SetupPrompted), nil
}

// Login exchanges an OAuth credential for an API session and caches the identity.
// A failed exchange leaves the session untouched.
func (s *SessionService) Login(ctx context.Context, sid, credential string) (*models.User, error) {
	if credential == "" {
		return nil, apperrors.NewValidationError("credential is required", map[string]interface{}{"credential": "required"})
	}

	conn := s.api.Session(nil)
	resp, err := conn.GoogleLogin(ctx, credential)
	if err != nil {
		return nil, err
	}

	user := resp.Data
	now := s.now()
	if _, err := s.update(ctx, sid, func(r *repositories.SessionRecord) {
		r.Identity = &user
		r.APICookies = conn.Cookies()
		r.ConfirmedAt = &now
		r.SetupPrompted = false
		r.Generation++
	}); err != nil {
		return nil, err
	}
	s.group.Forget(sid)

	s.logger.Info().Str("sessionID", sid).Int64("userID", user.ID).Str("role", string(user.UserType)).Msg("User signed in")
	s.publisher.Publish(sid, websocket.EventLogin, userID(&user))
	return &user, nil
}

// Logout ends the API session and clears the identity. The local identity is
// cleared even when the API call fails.
func (s *SessionService) Logout(ctx context.Context, sid string) error {
	rec, err := s.load(ctx, sid)
	if err != nil {
		return err
	}
	if rec != nil && len(rec.APICookies) > 0 {
		if err := s.api.Session(rec.APICookies).Logout(ctx); err != nil {
			s.logger.Warn().Err(err).Str("sessionID", sid).Msg("API logout failed, clearing local identity anyway")
		}
	}

	if _, err := s.update(ctx, sid, func(r *repositories.SessionRecord) {
		r.Identity = nil
		r.APICookies = nil
		r.ConfirmedAt = nil
		r.SetupPrompted = false
		r.Generation++
	}); err != nil {
		return err
	}
	s.group.Forget(sid)
	s.publisher.Publish(sid, websocket.EventLogout, nil)
	return nil
}

// Do runs fn with an API connection bound to the session's upstream cookies
// and stores cookie changes afterwards. A 401 from the API signs the session out.
func (s *SessionService) Do(ctx context.Context, sid string, fn func(conn *apiclient.Conn) error) error {
	rec, err := s.load(ctx, sid)
	if err != nil {
		return err
	}
	var (
		cookies apiclient.Cookies
		gen     int64
	)
	if rec != nil {
		cookies = rec.APICookies
		gen = rec.Generation
	}
	conn := s.api.Session(cookies)
	callErr := fn(conn)

	var apiErr *apiclient.APIError
	if errors.As(callErr, &apiErr) && apiErr.Kind == apiclient.KindUnauthenticated {
		if err := s.clearIdentity(ctx, sid); err != nil {
			s.logger.Error().Err(err).Str("sessionID", sid).Msg("Failed to clear identity after 401")
		}
		return callErr
	}

	after := conn.Cookies()
	if rec != nil && !sameCookies(cookies, after) {
		if _, _, err := s.updateAt(ctx, sid, gen, func(r *repositories.SessionRecord) { r.APICookies = after }); err != nil {
			s.logger.Error().Err(err).Str("sessionID", sid).Msg("Failed to store refreshed API cookies")
		}
	}
	return callErr
}

func (s *SessionService) clearIdentity(ctx context.Context, sid string) error {
	_, err := s.update(ctx, sid, func(r *repositories.SessionRecord) {
		r.Identity = nil
		r.APICookies = nil
		r.ConfirmedAt = nil
		r.Generation++
	})
	if err == nil {
		s.group.Forget(sid)
		s.publisher.Publish(sid, websocket.EventLogout, nil)
	}
	return err
}

func sameIdentity(a, b *models.User) bool {
	x, y := *a, *b
	x.RoomNumber, y.RoomNumber = nil, nil
	return x == y && a.Room() == b.Room()
}

func sameCookies(a, b apiclient.Cookies) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// Register creates a user through the API. The session itself is not touched.
func (s *SessionService) Register(ctx context.Context, sid string, req apiclient.RegisterUserRequest) (*models.User, error) {
	var created *models.User
	err := s.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.Register(ctx, req)
		if err != nil {
			return err
		}
		created = &resp.Data
		return nil
	})
	return created, err
}

// CompleteRoomSetup stores the room number and refreshes the cached identity
func (s *SessionService) CompleteRoomSetup(ctx context.Context, sid, room string) (*models.User, error) {
	return s.refreshWith(ctx, sid, func(conn *apiclient.Conn) error {
		_, err := conn.CompleteRoomSetup(ctx, room)
		return err
	})
}

// MaxHeadshotSize is the largest photo the API accepts
const MaxHeadshotSize = 5 << 20

// ValidateHeadshot applies the API's upload limits before any bytes are sent
func ValidateHeadshot(file *apiclient.File) error {
	if file == nil {
		return nil
	}
	if !strings.HasPrefix(file.ContentType, "image/") {
		return apperrors.NewValidationError("headshot must be an image", map[string]interface{}{"headshot": "not an image"})
	}
	if file.Size > MaxHeadshotSize {
		return apperrors.NewValidationError("headshot must be smaller than 5MB", map[string]interface{}{"headshot": "too large"})
	}
	return nil
}

// CompleteCandidateSetup uploads the optional headshot, saves the candidate
// profile and refreshes the cached identity
func (s *SessionService) CompleteCandidateSetup(ctx context.Context, sid string, profile models.CandidateProfile, headshot *apiclient.File) (*models.User, error) {
	if err := ValidateHeadshot(headshot); err != nil {
		return nil, err
	}
	return s.refreshWith(ctx, sid, func(conn *apiclient.Conn) error {
		if headshot != nil {
			if _, err := conn.UploadHeadshot(ctx, *headshot); err != nil {
				return err
			}
		}
		resp, err := conn.CompleteCandidateSetup(ctx, profile)
		if err != nil {
			return err
		}
		s.logger.Info().Str("sessionID", sid).Str("result", resp.Data.Message).Msg("Candidate setup completed")
		return nil
	})
}

// refreshWith runs a profile mutation and then reloads the identity from
// GET /users/me/. Setup endpoints do not all answer with the user.
func (s *SessionService) refreshWith(ctx context.Context, sid string, mutation func(conn *apiclient.Conn) error) (*models.User, error) {
	rec, err := s.load(ctx, sid)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	gen := rec.Generation

	var user models.User
	err = s.Do(ctx, sid, func(conn *apiclient.Conn) error {
		if err := mutation(conn); err != nil {
			return err
		}
		resp, err := conn.Me(ctx)
		if err != nil {
			return err
		}
		user = resp.Data
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	_, applied, err := s.updateAt(ctx, sid, gen, func(r *repositories.SessionRecord) {
		r.Identity = &user
		r.ConfirmedAt = &now
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperrors.ErrUnauthenticated
	}
	s.publisher.Publish(sid, websocket.EventRefresh, userID(&user))
	return &user, nil
}

// MarkSetupPrompted records that the one-time setup redirect was issued
func (s *SessionService) MarkSetupPrompted(ctx context.Context, sid string) error {
	_, err := s.update(ctx, sid, func(r *repositories.SessionRecord) { r.SetupPrompted = true })
	return err
}

// AddFlash queues a notification for the next page render
func (s *SessionService) AddFlash(ctx context.Context, sid string, level repositories.FlashLevel, message string) {
	if _, err := s.update(ctx, sid, func(r *repositories.SessionRecord) {
		r.Flashes = append(r.Flashes, repositories.Flash{Level: level, Message: message})
	}); err != nil {
		s.logger.Error().Err(err).Str("sessionID", sid).Msg("Failed to store flash message")
	}
}

// TakeFlashes returns and removes the queued notifications
func (s *SessionService) TakeFlashes(ctx context.Context, sid string) []repositories.Flash {
	rec, err := s.load(ctx, sid)
	if err != nil || rec == nil || len(rec.Flashes) == 0 {
		return nil
	}
	var taken []repositories.Flash
	if _, err := s.update(ctx, sid, func(r *repositories.SessionRecord) {
		taken = r.Flashes
		r.Flashes = nil
	}); err != nil {
		s.logger.Error().Err(err).Str("sessionID", sid).Msg("Failed to clear flash messages")
		return nil
	}
	return taken
}

// Purge drops sessions idle for longer than ttl
func (s *SessionService) Purge(ctx context.Context, ttl time.Duration) (int64, error) {
	n, err := s.store.PurgeBefore(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}
