package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/visitportal/internal/app/auth"
	"github.com/yigit/visitportal/internal/app/models"
	"github.com/yigit/visitportal/internal/app/repositories"
	"github.com/yigit/visitportal/internal/app/services"
	"github.com/yigit/visitportal/internal/middleware"
	"github.com/yigit/visitportal/internal/pkg/apiclient"
	"github.com/yigit/visitportal/internal/pkg/i18n"
	"github.com/yigit/visitportal/internal/web"
)

const hotelFormJSON = `{"id":4,"title":"Travel preferences","is_active":true,"form_fields":[
	{"id":9,"type":"radio","label":"Need a hotel","required":true,"order":1,"options":[{"id":1,"label":"yes"},{"id":2,"label":"no"}]}
]}`

func newFormRouter(t *testing.T) (*http.ServeMux, *services.SessionService, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mux := http.NewServeMux()
	api := httptest.NewServer(mux)
	t.Cleanup(api.Close)
	mux.HandleFunc("/api/forms/4/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(hotelFormJSON))
	})

	user := &models.User{ID: 40, FirstName: "John", LastName: "Doe", UserType: models.RoleCandidate, HasCompletedSetup: true}
	store := repositories.NewMemorySessionStore()
	if err := store.Set(context.Background(), &repositories.SessionRecord{
		ID:         testSID,
		Identity:   user,
		APICookies: map[string]string{"sessionid": "abc", "csrftoken": "tok"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	client := apiclient.New(apiclient.Config{BaseURL: api.URL + "/api"}, zerolog.Nop())
	sessions := services.NewSessionService(store, client, nil, services.SessionConfig{}, zerolog.Nop())
	renderer := NewRenderer(sessions, i18n.NewTranslator("en", zerolog.Nop()), zerolog.Nop())
	forms := NewFormController(services.NewFormService(sessions, zerolog.Nop()), renderer)

	templates, err := web.Templates(time.UTC)
	if err != nil {
		t.Fatalf("Templates() error = %v", err)
	}
	router := gin.New()
	router.SetHTMLTemplate(templates)
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextSessionID, testSID)
		c.Set(middleware.ContextState, services.SessionState{
			SessionID: testSID,
			User:      user,
			Roles:     auth.RolesOf(user),
		})
		c.Set(middleware.ContextLocale, "en")
	})
	router.GET("/forms/:id", forms.Page)
	router.POST("/forms/:id", forms.Submit)
	return mux, sessions, router
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitFormShowsMissingAnswers(t *testing.T) {
	mux, _, router := newFormRouter(t)
	var posts int32
	mux.HandleFunc("/api/form-submissions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			atomic.AddInt32(&posts, 1)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	w := postForm(router, "/forms/4", url.Values{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Need a hotel is required") {
		t.Fatalf("body does not show the missing answer:\n%s", w.Body.String())
	}
	if n := atomic.LoadInt32(&posts); n != 0 {
		t.Fatalf("submission posted %d times, want 0", n)
	}
}

func TestSubmitFormRedirectsHome(t *testing.T) {
	mux, sessions, router := newFormRouter(t)
	mux.HandleFunc("/api/form-submissions/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":11,"form":4,"answers":{"9":"yes"},"is_completed":true}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	w := postForm(router, "/forms/4", url.Values{"field_9": {"yes"}})
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("status = %d location = %q", w.Code, w.Header().Get("Location"))
	}
	flashes := sessions.TakeFlashes(context.Background(), testSID)
	if len(flashes) != 1 || flashes[0].Level != repositories.FlashSuccess {
		t.Fatalf("flashes = %+v, want one success", flashes)
	}
}

func TestFormPageUpstreamFailure(t *testing.T) {
	mux, _, router := newFormRouter(t)
	mux.HandleFunc("/api/forms/5/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not found."}`))
	})

	req := httptest.NewRequest(http.MethodGet, "/forms/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
