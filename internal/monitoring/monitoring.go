package monitoring

import (
	"context"
	"database/sql"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"birthdayReminderTracker/internal/db"
)

// Counter reports a row total, such as the number of users.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Service holds runtime context for monitoring and reporting.
type Service struct {
	startedAt time.Time
	version   string
	db        *sql.DB
	users     Counter
	birthdays Counter

	activeRequests atomic.Int64
	totalRequests  atomic.Uint64
	serverErrors   atomic.Uint64
}

type Snapshot struct {
	TimestampUTC       string `json:"timestampUtc"`
	Version            string `json:"version"`
	UptimeSeconds      int64  `json:"uptimeSeconds"`
	DB                 string `json:"db"`
	SchemaVersion      int    `json:"schemaVersion"`
	HTTPActiveRequests int64  `json:"httpActiveRequests"`
	HTTPTotalRequests  uint64 `json:"httpTotalRequests"`
	HTTPServerErrors   uint64 `json:"httpServerErrors"`
	DBOpenConnections  int    `json:"dbOpenConnections"`
	DBInUseConnections int    `json:"dbInUseConnections"`
	DBWaitCount        int64  `json:"dbWaitCount"`
	Goroutines         int    `json:"goroutines"`
	GoMemoryAllocBytes uint64 `json:"goMemoryAllocBytes"`
	UsersTotal         int64  `json:"usersTotal"`
	BirthdaysTotal     int64  `json:"birthdaysTotal"`
}

func NewService(startedAt time.Time, version string, conn *sql.DB, users, birthdays Counter) *Service {
	return &Service{startedAt: startedAt, version: version, db: conn, users: users, birthdays: birthdays}
}

// Middleware tracks basic HTTP request counters.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.activeRequests.Add(1)
		s.totalRequests.Add(1)
		defer s.activeRequests.Add(-1)
		c.Next()
		if c.Writer.Status() >= 500 {
			s.serverErrors.Add(1)
		}
	}
}

// Ping checks that the database answers within ctx.
func (s *Service) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Snapshot gathers the current counters. Row totals that cannot be read are left at zero.
func (s *Service) Snapshot(ctx context.Context) Snapshot {
	now := time.Now().UTC()
	dbState := "ok"
	if err := s.Ping(ctx); err != nil {
		dbState = "error: " + err.Error()
	}
	var memory runtime.MemStats
	runtime.ReadMemStats(&memory)
	stats := s.db.Stats()

	snap := Snapshot{
		TimestampUTC:       now.Format(time.RFC3339),
		Version:            s.version,
		UptimeSeconds:      int64(now.Sub(s.startedAt).Seconds()),
		DB:                 dbState,
		HTTPActiveRequests: s.activeRequests.Load(),
		HTTPTotalRequests:  s.totalRequests.Load(),
		HTTPServerErrors:   s.serverErrors.Load(),
		DBOpenConnections:  stats.OpenConnections,
		DBInUseConnections: stats.InUse,
		DBWaitCount:        stats.WaitCount,
		Goroutines:         runtime.NumGoroutine(),
		GoMemoryAllocBytes: memory.Alloc,
	}
	snap.SchemaVersion, _ = db.SchemaVersion(ctx, s.db)
	if s.users != nil {
		snap.UsersTotal, _ = s.users.Count(ctx)
	}
	if s.birthdays != nil {
		snap.BirthdaysTotal, _ = s.birthdays.Count(ctx)
	}
	return snap
}
