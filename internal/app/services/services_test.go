package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/visitportal/internal/app/auth"
	"github.com/yigit/visitportal/internal/app/availability"
	"github.com/yigit/visitportal/internal/app/models"
	"github.com/yigit/visitportal/internal/app/repositories"
	"github.com/yigit/visitportal/internal/pkg/apiclient"
	"github.com/yigit/visitportal/internal/pkg/apperrors"
	"github.com/yigit/visitportal/internal/pkg/websocket"
)

const testSID = "0b6f7c1e-3a55-4a0e-9d56-2c8f0f3b9a10"

type published struct {
	sessionID string
	event     string
	userID    *int64
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(sessionID, event string, userID *int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{sessionID, event, userID})
}

func (p *recordingPublisher) last() (published, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return published{}, false
	}
	return p.events[len(p.events)-1], true
}

type fixture struct {
	mux       *http.ServeMux
	server    *httptest.Server
	store     *repositories.MemorySessionStore
	publisher *recordingPublisher
	sessions  *SessionService
	schedule  *ScheduleService
}

func newFixture(t *testing.T, cfg SessionConfig) *fixture {
	t.Helper()
	f := &fixture{
		mux:       http.NewServeMux(),
		store:     repositories.NewMemorySessionStore(),
		publisher: &recordingPublisher{},
	}
	f.server = httptest.NewServer(f.mux)
	t.Cleanup(f.server.Close)

	client := apiclient.New(apiclient.Config{BaseURL: f.server.URL + "/api"}, zerolog.Nop())
	f.sessions = NewSessionService(f.store, client, f.publisher, cfg, zerolog.Nop())
	f.schedule = NewScheduleService(f.sessions, zerolog.Nop())
	return f
}

func (f *fixture) seed(t *testing.T, user *models.User, confirmedAt *time.Time) {
	t.Helper()
	rec := &repositories.SessionRecord{
		ID:          testSID,
		Identity:    user,
		APICookies:  map[string]string{"sessionid": "abc", "csrftoken": "tok"},
		ConfirmedAt: confirmedAt,
	}
	if err := f.store.Set(context.Background(), rec); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

const janeJSON = `{"id":7,"email":"jane@uni.edu","first_name":"Jane","last_name":"Doe","user_type":"faculty","has_completed_setup":true}`

func TestResolveWithoutRecordIsUnauthenticated(t *testing.T) {
	f := newFixture(t, SessionConfig{})

	state, err := f.sessions.Resolve(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if state.Loading || state.Authenticated() {
		t.Fatalf("state = %+v, want unauthenticated and not loading", state)
	}
}

func TestLoginCachesIdentityAndPublishes(t *testing.T) {
	f := newFixture(t, SessionConfig{ConfirmInterval: time.Hour})
	var meCalls int32
	f.mux.HandleFunc("/api/users/google_login/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "s1", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "c1", Path: "/"})
		writeJSON(w, http.StatusOK, janeJSON)
	})
	f.mux.HandleFunc("/api/users/me/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&meCalls, 1)
		writeJSON(w, http.StatusOK, janeJSON)
	})

	user, err := f.sessions.Login(context.Background(), testSID, "google-id-token")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != 7 {
		t.Fatalf("user id = %d, want 7", user.ID)
	}

	ev, ok := f.publisher.last()
	if !ok || ev.event != websocket.EventLogin || ev.sessionID != testSID || ev.userID == nil || *ev.userID != 7 {
		t.Fatalf("published = %+v, want login for user 7", ev)
	}

	rec, err := f.store.Get(context.Background(), testSID)
	if err != nil {
		t.Fatalf("store.Get() error = %v", err)
	}
	if rec.APICookies["sessionid"] != "s1" || rec.APICookies["csrftoken"] != "c1" {
		t.Fatalf("cookies = %v, want upstream session and csrf cookies", rec.APICookies)
	}

	state, err := f.sessions.Resolve(context.Background(), testSID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !state.Authenticated() || state.User.ID != 7 {
		t.Fatalf("state = %+v, want user 7", state)
	}
	if n := atomic.LoadInt32(&meCalls); n != 0 {
		t.Fatalf("users/me called %d times within the confirm interval, want 0", n)
	}
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	f := newFixture(t, SessionConfig{})
	f.mux.HandleFunc("/api/users/google_login/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":"Invalid token"}`)
	})

	_, err := f.sessions.Login(context.Background(), testSID, "bad")
	if err == nil || err.Error() != "Invalid token" {
		t.Fatalf("Login() error = %v, want Invalid token", err)
	}
	if _, err := f.store.Get(context.Background(), testSID); !errors.Is(err, apperrors.ErrSessionNotFound) {
		t.Fatalf("store.Get() error = %v, want no record", err)
	}
	if _, ok := f.publisher.last(); ok {
		t.Fatal("failed login must not publish")
	}
}

func TestResolveConfirmFailureClearsIdentity(t *testing.T) {
	f := newFixture(t, SessionConfig{})
	f.mux.HandleFunc("/api/users/me/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"detail":"Authentication credentials were not provided."}`)
	})
	f.seed(t, &models.User{ID: 7, UserType: models.RoleFaculty}, nil)

	state, err := f.sessions.Resolve(context.Background(), testSID)
	if err != nil {
		t.Fatalf("Resolve() error = %v, want nil", err)
	}
	if state.Authenticated() || state.Loading {
		t.Fatalf("state = %+v, want unauthenticated", state)
	}

	rec, err := f.store.Get(context.Background(), testSID)
	if err != nil {
		t.Fatalf("store.Get() error = %v", err)
	}
	if rec.Identity != nil || len(rec.APICookies) != 0 {
		t.Fatalf("record = %+v, want identity and cookies cleared", rec)
	}
	if ev, _ := f.publisher.last(); ev.event != websocket.EventLogout {
		t.Fatalf("published %q, want logout", ev.event)
	}
}

func TestResolveConfirmSuccessRefreshesIdentity(t *testing.T) {
	f := newFixture(t, SessionConfig{})
	f.mux.HandleFunc("/api/users/me/", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("sessionid"); err != nil || c.Value != "abc" {
			writeJSON(w, http.StatusForbidden, `{"detail":"no session"}`)
			return
		}
		writeJSON(w, http.StatusOK, janeJSON)
	})
	f.seed(t, &models.User{ID: 7, FirstName: "Old", UserType: models.RoleFaculty}, nil)

	state, err := f.sessions.Resolve(context.Background(), testSID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if state.User == nil || state.User.FirstName != "Jane" {
		t.Fatalf("user = %+v, want refreshed identity", state.User)
	}
	if !state.Roles.Has(models.RoleFaculty) {
		t.Fatalf("roles = %v, want faculty", state.Roles.Roles())
	}
	if ev, _ := f.publisher.last(); ev.event != websocket.EventRefresh {
		t.Fatalf("published %q, want refresh", ev.event)
	}
}

func TestResolveIsLoadingWhileConfirmationIsSlow(t *testing.T) {
	f := newFixture(t, SessionConfig{ResolveWait: 20 * time.Millisecond})
	release := make(chan struct{})
	var meCalls int32
	f.mux.HandleFunc("/api/users/me/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&meCalls, 1)
		<-release
		writeJSON(w, http.StatusOK, janeJSON)
	})
	f.seed(t, &models.User{ID: 7, UserType: models.RoleFaculty}, nil)

	for i := 0; i < 3; i++ {
		state, err := f.sessions.Resolve(context.Background(), testSID)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !state.Loading {
			t.Fatalf("call %d: state = %+v, want loading", i, state)
		}
		if state.User == nil || state.User.ID != 7 {
			t.Fatalf("call %d: loading state must carry the cached identity", i)
		}
	}
	close(release)

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec, err := f.store.Get(context.Background(), testSID)
		if err == nil && rec.ConfirmedAt != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("confirmation never completed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if n := atomic.LoadInt32(&meCalls); n != 1 {
		t.Fatalf("users/me called %d times, want concurrent confirmations collapsed into 1", n)
	}
}

func TestLogoutClearsIdentityEvenWhenAPIFails(t *testing.T) {
	f := newFixture(t, SessionConfig{})
	f.mux.HandleFunc("/api/users/logout/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"error":"boom"}`)
	})
	f.seed(t, &models.User{ID: 7, UserType: models.RoleFaculty}, nil)

	if err := f.sessions.Logout(context.Background(), testSID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	rec, err := f.store.Get(context.Background(), testSID)
	if err != nil {
		t.Fatalf("store.Get() error = %v", err)
	}
	if rec.Identity != nil {
		t.Fatal("identity must be cleared")
	}
	if ev, _ := f.publisher.last(); ev.event != websocket.EventLogout {
		t.Fatalf("published %q, want logout", ev.event)
	}
}

func TestDoClearsIdentityOnUnauthorized(t *testing.T) {
	f := newFixture(t, SessionConfig{})
	f.mux.HandleFunc("/api/seasons/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"detail":"expired"}`)
	})
	f.seed(t, &models.User{ID: 7, UserType: models.RoleFaculty}, nil)

	_, err := f.schedule.Seasons(context.Background(), testSID)
	if !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Fatalf("Seasons() error = %v, want ErrUnauthenticated", err)
	}
	if apperrors.CategoryOf(err) != apperrors.CategoryFetch {
		t.Fatalf("category = %v, want fetch", apperrors.CategoryOf(err))
	}
	rec, _ := f.store.Get(context.Background(), testSID)
	if rec.Identity != nil {
		t.Fatal("identity must be cleared after 401")
	}
}

func TestFlashesAreTakenOnce(t *testing.T) {
	f := newFixture(t, SessionConfig{})
	ctx := context.Background()

	f.sessions.AddFlash(ctx, testSID, repositories.FlashSuccess, "Registered")
	f.sessions.AddFlash(ctx, testSID, repositories.FlashError, "Oops")

	got := f.sessions.TakeFlashes(ctx, testSID)
	if len(got) != 2 || got[0].Message != "Registered" || got[1].Level != repositories.FlashError {
		t.Fatalf("TakeFlashes() = %+v", got)
	}
	if again := f.sessions.TakeFlashes(ctx, testSID); len(again) != 0 {
		t.Fatalf("second TakeFlashes() = %+v, want empty", again)
	}
}

func TestCompleteRoomSetupRefreshesIdentity(t *testing.T) {
	f := newFixture(t, SessionConfig{})
	f.mux.HandleFunc("/api/users/complete_room_setup/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(apiclient.CSRFHeaderName) != "tok" {
			writeJSON(w, http.StatusForbidden, `{"detail":"CSRF"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"id":7,"user_type":"faculty","room_number":"ENG 204","has_completed_setup":true}`)
	})
	f.mux.HandleFunc("/api/users/me/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":7,"user_type":"faculty","room_number":"ENG 204","has_completed_setup":true}`)
	})
	f.seed(t, &models.User{ID: 7, UserType: models.RoleFaculty}, nil)

	user, err := f.sessions.CompleteRoomSetup(context.Background(), testSID, "ENG 204")
	if err != nil {
		t.Fatalf("CompleteRoomSetup() error = %v", err)
	}
	if user.Room() != "ENG 204" || user.NeedsRoomSetup() {
		t.Fatalf("user = %+v, want completed setup", user)
	}
	rec, _ := f.store.Get(context.Background(), testSID)
	if rec.Identity == nil || !rec.Identity.HasCompletedSetup {
		t.Fatal("stored identity was not refreshed")
	}
}

func TestCandidateSetupRefetchesIdentity(t *testing.T) {
	f := newFixture(t, SessionConfig{})
	var setupBody map[string]interface{}
	f.mux.HandleFunc("/api/users/complete_candidate_setup/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&setupBody)
		writeJSON(w, http.StatusOK, `{"message":"Candidate setup completed successfully","profile":{"id":3,"current_title":"Postdoc","talk_title":"Swarm robotics"}}`)
	})
	f.mux.HandleFunc("/api/users/me/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":40,"email":"john@x.edu","first_name":"John","last_name":"Doe","user_type":"candidate","has_completed_setup":true}`)
	})
	f.seed(t, &models.User{ID: 40, UserType: models.RoleCandidate}, nil)

	profile := models.CandidateProfile{CurrentTitle: "Postdoc", TalkTitle: "Swarm robotics", Gender: "prefer_not_to_say"}
	user, err := f.sessions.CompleteCandidateSetup(context.Background(), testSID, profile, nil)
	if err != nil {
		t.Fatalf("CompleteCandidateSetup() error = %v", err)
	}
	if user.ID != 40 || user.UserType != models.RoleCandidate || user.NeedsCandidateSetup() {
		t.Fatalf("user = %+v, want candidate 40 with setup completed", user)
	}
	if setupBody["talk_title"] != "Swarm robotics" {
		t.Fatalf("setup body = %v", setupBody)
	}

	state, err := f.sessions.Resolve(context.Background(), testSID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if d := auth.ProtectedRoute(models.RoleCandidate).Evaluate(state.Guard(), auth.FormsPath); d.Kind != auth.DecisionRender {
		t.Fatalf("forms guard = %+v, want render", d)
	}
}

func TestCandidateSetupRejectsNonImageHeadshot(t *testing.T) {
	f := newFixture(t, SessionConfig{})
	f.mux.HandleFunc("/api/users/upload_headshot/", func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid headshot must not be uploaded")
	})
	f.seed(t, &models.User{ID: 40, UserType: models.RoleCandidate}, nil)

	file := &apiclient.File{Name: "cv.pdf", ContentType: "application/pdf", Size: 100, Reader: strings.NewReader("%PDF")}
	_, err := f.sessions.CompleteCandidateSetup(context.Background(), testSID, models.CandidateProfile{}, file)
	if apperrors.CategoryOf(err) != apperrors.CategoryValidation {
		t.Fatalf("error = %v, want validation", err)
	}
}

func TestLogoutDuringSlowConfirmationStaysSignedOut(t *testing.T) {
	f := newFixture(t, SessionConfig{ResolveWait: 20 * time.Millisecond})
	release := make(chan struct{})
	served := make(chan struct{})
	var once sync.Once
	f.mux.HandleFunc("/api/users/me/", func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeJSON(w, http.StatusOK, janeJSON)
		once.Do(func() { close(served) })
	})
	f.mux.HandleFunc("/api/users/logout/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	f.seed(t, &models.User{ID: 7, UserType: models.RoleFaculty}, nil)
	ctx := context.Background()

	state, err := f.sessions.Resolve(ctx, testSID)
	if err != nil || !state.Loading {
		t.Fatalf("Resolve() = %+v, %v; want loading", state, err)
	}
	if err := f.sessions.Logout(ctx, testSID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	close(release)
	<-served

	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		rec, err := f.store.Get(ctx, testSID)
		if err != nil {
			t.Fatalf("store.Get() error = %v", err)
		}
		if rec.Identity != nil {
			t.Fatalf("late confirmation restored identity %+v", rec.Identity)
		}
		time.Sleep(5 * time.Millisecond)
	}
	state, err = f.sessions.Resolve(ctx, testSID)
	if err != nil || state.Authenticated() {
		t.Fatalf("Resolve() after logout = %+v, %v; want signed out", state, err)
	}
	if ev, _ := f.publisher.last(); ev.event != websocket.EventLogout {
		t.Fatalf("last event %q, want logout", ev.event)
	}
}

func TestStaleConfirmationKeepsNewLogin(t *testing.T) {
	f := newFixture(t, SessionConfig{ResolveWait: 20 * time.Millisecond, ConfirmInterval: time.Hour})
	release := make(chan struct{})
	served := make(chan struct{})
	var once sync.Once
	f.mux.HandleFunc("/api/users/me/", func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeJSON(w, http.StatusOK, janeJSON)
		once.Do(func() { close(served) })
	})
	f.mux.HandleFunc("/api/users/google_login/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":8,"email":"sam@uni.edu","user_type":"admin","has_completed_setup":true}`)
	})
	f.seed(t, &models.User{ID: 7, UserType: models.RoleFaculty}, nil)
	ctx := context.Background()

	if state, _ := f.sessions.Resolve(ctx, testSID); !state.Loading {
		t.Fatalf("state = %+v, want loading", state)
	}
	if _, err := f.sessions.Login(ctx, testSID, "other-token"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	close(release)
	<-served

	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		rec, _ := f.store.Get(ctx, testSID)
		if rec == nil || rec.Identity == nil || rec.Identity.ID != 8 {
			t.Fatalf("identity = %+v, want the new login", rec)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSessionLocksArePruned(t *testing.T) {
	f := newFixture(t, SessionConfig{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.sessions.AddFlash(ctx, testSID, repositories.FlashSuccess, "Saved")
		}()
	}
	wg.Wait()
	if got := f.sessions.TakeFlashes(ctx, testSID); len(got) != 8 {
		t.Fatalf("TakeFlashes() = %d flashes, want 8", len(got))
	}
	if n := f.sessions.locks.size(); n != 0 {
		t.Fatalf("%d session locks left after the updates finished", n)
	}
}

const sectionsJSON = `[{
	"id": 12, "session": 3,
	"candidate": {"id": 40, "email": "john@x.edu", "first_name": "John", "last_name": "Doe", "user_type": "candidate"},
	"arrival_date": "2025-03-10", "leaving_date": "2025-03-12",
	"description": "Robotics",
	"time_slots": [
		{"id": 101, "start_time": "2025-03-10T10:00:00Z", "end_time": "2025-03-10T11:00:00Z", "max_attendees": 2, "attendees": []},
		{"id": 102, "start_time": "2025-03-10T12:00:00Z", "max_attendees": 1, "attendees": [], "is_visible": false}
	]
}]`

func TestDialogRegistersSlotOnce(t *testing.T) {
	f := newFixture(t, SessionConfig{})
	var registers int32
	f.mux.HandleFunc("/api/candidate-sections/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sectionsJSON)
	})
	f.mux.HandleFunc("/api/timeslots/101/register/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&registers, 1)
		writeJSON(w, http.StatusCreated, `{"id":1,"user":{"id":7}}`)
	})
	f.seed(t, &models.User{ID: 7, UserType: models.RoleFaculty}, nil)
	ctx := context.Background()

	events, err := f.schedule.Events(ctx, testSID, 3, 7)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want only the visible slot", len(events))
	}

	dialog := f.schedule.Dialog(testSID)
	if _, ok := dialog.Click(events[0]); !ok {
		t.Fatal("open slot must stage an action")
	}
	if _, err := dialog.Confirm(ctx); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if n := atomic.LoadInt32(&registers); n != 1 {
		t.Fatalf("register called %d times, want 1", n)
	}
}

func TestMySectionsFiltersByCandidate(t *testing.T) {
	f := newFixture(t, SessionConfig{})
	f.mux.HandleFunc("/api/candidate-sections/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("session") != "" {
			t.Errorf("unexpected season filter %q", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, sectionsJSON)
	})
	f.seed(t, &models.User{ID: 40, UserType: models.RoleCandidate}, nil)

	mine, err := f.schedule.MySections(context.Background(), testSID, 40)
	if err != nil || len(mine) != 1 {
		t.Fatalf("MySections(40) = %v, %v", mine, err)
	}
	other, err := f.schedule.MySections(context.Background(), testSID, 41)
	if err != nil || len(other) != 0 {
		t.Fatalf("MySections(41) = %v, %v", other, err)
	}
}

func TestSubmitAvailabilityBlocksOutOfWindowSlots(t *testing.T) {
	f := newFixture(t, SessionConfig{})
	var posts int32
	f.mux.HandleFunc("/api/candidate-sections/12/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sectionsJSON[1:len(sectionsJSON)-1])
	})
	f.mux.HandleFunc("/api/faculty-availability/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&posts, 1)
		writeJSON(w, http.StatusCreated, `{"id":5,"candidate_section":12,"time_slots":[]}`)
	})
	f.seed(t, &models.User{ID: 7, UserType: models.RoleFaculty}, nil)
	svc := NewAvailabilityService(f.sessions, f.schedule, time.UTC, zerolog.Nop())
	ctx := context.Background()

	early := time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC)
	_, violations, err := svc.Submit(ctx, testSID, 12, "", []availability.Slot{{Start: &early}})
	if !errors.Is(err, availability.ErrInvalidSlots) {
		t.Fatalf("Submit() error = %v, want ErrInvalidSlots", err)
	}
	if len(violations) != 1 || violations[0].Field != availability.FieldStart {
		t.Fatalf("violations = %+v", violations)
	}
	if n := atomic.LoadInt32(&posts); n != 0 {
		t.Fatalf("API called %d times for an invalid submission", n)
	}

	start := time.Date(2025, 3, 12, 22, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 12, 23, 59, 0, 0, time.UTC)
	created, _, err := svc.Submit(ctx, testSID, 12, "after lunch", []availability.Slot{{Start: &start, End: &end}})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if created.ID != 5 || atomic.LoadInt32(&posts) != 1 {
		t.Fatalf("created = %+v, posts = %d", created, posts)
	}
}

func TestExportItineraryLoadsSeason(t *testing.T) {
	f := newFixture(t, SessionConfig{})
	f.mux.HandleFunc("/api/candidate-sections/12/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sectionsJSON[1:len(sectionsJSON)-1])
	})
	f.mux.HandleFunc("/api/seasons/3/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":3,"title":"Spring 2025 Recruitment"}`)
	})
	f.seed(t, &models.User{ID: 1, UserType: models.RoleAdmin}, nil)
	svc := NewExportService(f.schedule, nil, nil, time.UTC, zerolog.Nop())

	it, err := svc.Itinerary(context.Background(), testSID, 12)
	if err != nil {
		t.Fatalf("Itinerary() error = %v", err)
	}
	if it.CandidateName != "John Doe" || it.SeasonTitle != "Spring 2025 Recruitment" {
		t.Fatalf("itinerary = %q / %q", it.CandidateName, it.SeasonTitle)
	}
	if it.Filename() != "Itinerary_Doe.html" {
		t.Fatalf("Filename() = %q", it.Filename())
	}

	if _, err := svc.GoogleDoc(context.Background(), testSID, 12); apperrors.CategoryOf(err) != apperrors.CategoryMutation {
		t.Fatalf("GoogleDoc() without config error = %v, want mutation failure", err)
	}
}
