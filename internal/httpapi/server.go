package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel/trace"

	"birthdayReminderTracker/internal/apperr"
	"birthdayReminderTracker/internal/auth"
	"birthdayReminderTracker/internal/monitoring"
	"birthdayReminderTracker/internal/obs"
	"birthdayReminderTracker/repository"
)

// Options carries the collaborators of a Server.
type Options struct {
	Users     repository.UserRepositoryI
	Birthdays repository.BirthdayRepositoryI
	Tokens    *auth.Tokens
	Monitor   *monitoring.Service

	// Location is the zone in which "today" is evaluated. Defaults to UTC.
	Location *time.Location
	// Now is the clock used for derived fields. Defaults to time.Now.
	Now func() time.Time
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
	// CORSOrigins defaults to allowing any origin.
	CORSOrigins []string
}

// Server exposes the birthday API over HTTP.
type Server struct {
	users     repository.UserRepositoryI
	birthdays repository.BirthdayRepositoryI
	tokens    *auth.Tokens
	monitor   *monitoring.Service
	loc       *time.Location
	now       func() time.Time
	tp        trace.TracerProvider
	origins   []string
}

func NewServer(opts Options) (*Server, error) {
	if opts.Users == nil || opts.Birthdays == nil || opts.Tokens == nil || opts.Monitor == nil {
		return nil, fmt.Errorf("httpapi: users, birthdays, tokens and monitor are required")
	}
	s := &Server{
		users:     opts.Users,
		birthdays: opts.Birthdays,
		tokens:    opts.Tokens,
		monitor:   opts.Monitor,
		loc:       opts.Location,
		now:       opts.Now,
		tp:        opts.TracerProvider,
		origins:   opts.CORSOrigins,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	return s, nil
}

// today is the reference instant for derived fields, in the configured zone.
func (s *Server) today() time.Time {
	return s.now().In(s.loc)
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, rec any) {
		apperr.Abort(c, apperr.Internal(fmt.Errorf("panic: %v", rec)))
	}))
	r.Use(RequestID(), obs.Middleware(s.tp, apperr.RequestIDKey), s.monitor.Middleware(), AccessLog())
	r.NoRoute(func(c *gin.Context) { apperr.Abort(c, apperr.NotFound("Route not found")) })

	r.GET("/health", s.health)
	r.GET("/status", s.status)

	a := r.Group("/auth")
	a.POST("/login", s.login)
	a.POST("/register", s.register)

	api := r.Group("/", auth.Middleware(s.tokens))
	api.GET("/birthdays", s.listBirthdays)
	api.POST("/birthdays", s.createBirthday)
	api.GET("/birthdays/:id", s.getBirthday)
	api.PUT("/birthdays/:id", s.updateBirthday)
	api.DELETE("/birthdays/:id", s.deleteBirthday)

	api.GET("/users/profile", s.getProfile)
	api.PUT("/users/profile", s.updateProfile)
	api.DELETE("/users/profile", s.deleteProfile)

	api.GET("/dashboard", s.dashboard)
	api.GET("/analytics", s.analytics)
	api.GET("/reminders", s.reminders)

	admin := api.Group("/admin", auth.RequireAdmin(s.users))
	admin.GET("/users", s.listUsers)
	return r
}

// Handler is Router wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	})(s.Router())
}
