package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"birthdayReminderTracker/internal/apperr"
	"birthdayReminderTracker/internal/auth"
	"birthdayReminderTracker/internal/monitoring"
	"birthdayReminderTracker/internal/testutil"
	"birthdayReminderTracker/repository"
)

const testSecret = "httpapi-test-secret"

// fixedNow is the reference instant for every derived field in these tests.
var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	t         *testing.T
	h         http.Handler
	users     *repository.UserRepository
	birthdays *repository.BirthdayRepository
	tokens    *auth.Tokens
	monitor   *monitoring.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	d, g := testutil.OpenInMemoryGorm(t, t.Name())
	users := repository.NewUserRepository(g)
	birthdays := repository.NewBirthdayRepository(g)
	tokens := auth.NewTokens(testSecret, 0)
	monitor := monitoring.NewService(fixedNow, "test", d, users, birthdays)
	srv, err := NewServer(Options{
		Users:     users,
		Birthdays: birthdays,
		Tokens:    tokens,
		Monitor:   monitor,
		Now:       func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return &testEnv{t: t, h: srv.Handler(), users: users, birthdays: birthdays, tokens: tokens, monitor: monitor}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", testutil.BearerHeader(token))
	}
	w := httptest.NewRecorder()
	e.h.ServeHTTP(w, req)
	return w
}

// register creates an account through the API and returns its token and id.
func (e *testEnv) register(name, email, password string) (string, int64) {
	e.t.Helper()
	w := e.do(http.MethodPost, "/auth/register", "", map[string]any{"name": name, "email": email, "password": password})
	mustStatus(e.t, w, http.StatusCreated)
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	decode(e.t, w, &resp)
	return resp.Token, resp.User.ID
}

// createBirthday posts body and returns the created id.
func (e *testEnv) createBirthday(token string, body map[string]any) int64 {
	e.t.Helper()
	w := e.do(http.MethodPost, "/birthdays", token, body)
	mustStatus(e.t, w, http.StatusCreated)
	var resp struct {
		Birthday entryJSON `json:"birthday"`
	}
	decode(e.t, w, &resp)
	return resp.Birthday.ID
}

type entryJSON struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"userId"`
	Name             string    `json:"name"`
	DateOfBirth      time.Time `json:"dateOfBirth"`
	Relationship     string    `json:"relationship"`
	Email            string    `json:"email"`
	Notes            string    `json:"notes"`
	GiftIdeas        []string  `json:"giftIdeas"`
	IsActive         bool      `json:"isActive"`
	Age              int       `json:"age"`
	NextBirthday     time.Time `json:"nextBirthday"`
	DaysUntil        int       `json:"daysUntilBirthday"`
	ReminderSettings struct {
		Enabled    bool `json:"enabled"`
		DaysBefore int  `json:"daysBefore"`
	} `json:"reminderSettings"`
}

func entryNames(es []entryJSON) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Name
	}
	return out
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Fatalf("expected status %d, got %d: %s", expected, w.Code, w.Body.String())
	}
}

// mustError checks the status and error kind of an error response and returns its body.
func mustError(t *testing.T, w *httptest.ResponseRecorder, status int, kind apperr.Kind) apperr.Body {
	t.Helper()
	mustStatus(t, w, status)
	var body apperr.Body
	decode(t, w, &body)
	if body.Error != kind {
		t.Fatalf("expected error kind %q, got %q (%s)", kind, body.Error, w.Body.String())
	}
	return body
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
