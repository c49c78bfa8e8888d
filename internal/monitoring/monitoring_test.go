package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"birthdayReminderTracker/internal/testutil"
)

type fixedCounter int64

func (f fixedCounter) Count(context.Context) (int64, error) { return int64(f), nil }

func TestService_MiddlewareAndSnapshot(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, t.Name())
	svc := NewService(time.Now().Add(-90*time.Second), "test", d, fixedCounter(3), fixedCounter(12))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(svc.Middleware())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/ok", "/fail"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	snap := svc.Snapshot(context.Background())
	if snap.HTTPTotalRequests != 3 || snap.HTTPServerErrors != 1 || snap.HTTPActiveRequests != 0 {
		t.Fatalf("http counters = %+v", snap)
	}
	if snap.DB != "ok" || snap.SchemaVersion != 1 || snap.UsersTotal != 3 || snap.BirthdaysTotal != 12 || snap.Version != "test" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.UptimeSeconds < 90 || snap.Goroutines == 0 {
		t.Fatalf("runtime fields = %+v", snap)
	}
}

func TestService_PingFailsOnClosedDB(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, t.Name())
	svc := NewService(time.Now(), "test", d, nil, nil)
	_ = d.Close()
	if err := svc.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error on closed db")
	}
	if snap := svc.Snapshot(context.Background()); snap.DB == "ok" {
		t.Fatalf("expected db error state, got %q", snap.DB)
	}
}
