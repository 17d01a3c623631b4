package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/visitportal/internal/app/auth"
	"github.com/yigit/visitportal/internal/app/models"
	"github.com/yigit/visitportal/internal/app/repositories"
	"github.com/yigit/visitportal/internal/app/services"
	"github.com/yigit/visitportal/internal/middleware"
	"github.com/yigit/visitportal/internal/pkg/apiclient"
	"github.com/yigit/visitportal/internal/pkg/i18n"
)

const usersJSON = `[
	{"id":1,"email":"root@uni.edu","first_name":"Root","user_type":"superadmin"},
	{"id":7,"email":"jane@uni.edu","first_name":"Jane","last_name":"Doe","user_type":"faculty"}
]`

type adminFixture struct {
	mux      *http.ServeMux
	sessions *services.SessionService
	router   *gin.Engine
}

func newAdminFixture(t *testing.T, user *models.User) *adminFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &adminFixture{mux: http.NewServeMux()}
	api := httptest.NewServer(f.mux)
	t.Cleanup(api.Close)
	f.mux.HandleFunc("GET /api/users/{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(usersJSON))
	})

	store := repositories.NewMemorySessionStore()
	if err := store.Set(context.Background(), &repositories.SessionRecord{
		ID:         testSID,
		Identity:   user,
		APICookies: map[string]string{"sessionid": "abc", "csrftoken": "tok"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	client := apiclient.New(apiclient.Config{BaseURL: api.URL + "/api"}, zerolog.Nop())
	f.sessions = services.NewSessionService(store, client, nil, services.SessionConfig{}, zerolog.Nop())
	renderer := NewRenderer(f.sessions, i18n.NewTranslator("en", zerolog.Nop()), zerolog.Nop())
	admin := NewAdminController(
		services.NewAdminService(f.sessions, zerolog.Nop()),
		services.NewScheduleService(f.sessions, zerolog.Nop()),
		renderer,
		nil,
	)

	f.router = gin.New()
	f.router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextSessionID, testSID)
		c.Set(middleware.ContextState, services.SessionState{
			SessionID: testSID,
			User:      user,
			Roles:     auth.RolesOf(user),
		})
		c.Set(middleware.ContextLocale, "en")
	})
	f.router.POST("/admin/users/:id/role", admin.UpdateRole)
	f.router.POST("/admin/users/:id/delete", admin.DeleteUser)
	return f
}

func (f *adminFixture) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *adminFixture) flashes() []repositories.Flash {
	return f.sessions.TakeFlashes(context.Background(), testSID)
}

func TestUpdateRoleFlashesNewRole(t *testing.T) {
	f := newAdminFixture(t, &models.User{ID: 1, UserType: models.RoleSuperAdmin})
	f.mux.HandleFunc("PATCH /api/users/7/update_role/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"email":"jane@uni.edu","first_name":"Jane","last_name":"Doe","user_type":"admin"}`))
	})

	w := f.post("/admin/users/7/role", url.Values{"user_type": {"admin"}})
	if w.Code != http.StatusFound || w.Header().Get("Location") != UsersPath {
		t.Fatalf("status = %d location = %q", w.Code, w.Header().Get("Location"))
	}
	flashes := f.flashes()
	if len(flashes) != 1 || flashes[0].Level != repositories.FlashSuccess || !strings.Contains(flashes[0].Message, "Jane Doe") {
		t.Fatalf("flashes = %+v, want success naming Jane Doe", flashes)
	}
}

func TestDeleteSuperadminFlashesReason(t *testing.T) {
	f := newAdminFixture(t, &models.User{ID: 1, UserType: models.RoleSuperAdmin})
	var deletes int32
	f.mux.HandleFunc("DELETE /api/users/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&deletes, 1)
		w.WriteHeader(http.StatusNoContent)
	})

	w := f.post("/admin/users/1/delete", nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != UsersPath {
		t.Fatalf("status = %d location = %q", w.Code, w.Header().Get("Location"))
	}
	if n := atomic.LoadInt32(&deletes); n != 0 {
		t.Fatalf("delete called %d times, want 0", n)
	}
	flashes := f.flashes()
	if len(flashes) != 1 || flashes[0].Level != repositories.FlashError || !strings.Contains(flashes[0].Message, auth.ErrDeleteSuperAdmin.Error()) {
		t.Fatalf("flashes = %+v, want the superadmin reason", flashes)
	}
}

func TestUserActionsRejectBadIDs(t *testing.T) {
	f := newAdminFixture(t, &models.User{ID: 1, UserType: models.RoleSuperAdmin})

	w := f.post("/admin/users/abc/delete", nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != UsersPath {
		t.Fatalf("status = %d location = %q", w.Code, w.Header().Get("Location"))
	}
	if flashes := f.flashes(); len(flashes) != 0 {
		t.Fatalf("flashes = %+v, want none", flashes)
	}
}
