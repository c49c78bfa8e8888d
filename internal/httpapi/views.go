package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"birthdayReminderTracker/internal/apperr"
	"birthdayReminderTracker/internal/auth"
	"birthdayReminderTracker/internal/insights"
)

// activeEntries loads and annotates every active birthday of the caller.
func (s *Server) activeEntries(c *gin.Context) ([]insights.Entry, error) {
	p, err := auth.RequirePrincipal(c.Request.Context())
	if err != nil {
		return nil, err
	}
	rows, err := s.birthdays.ListActive(c.Request.Context(), p.UserID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	entries, err := insights.AnnotateAll(rows, s.today())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return entries, nil
}

func (s *Server) dashboard(c *gin.Context) {
	entries, err := s.activeEntries(c)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, insights.Dashboard(entries))
}

func (s *Server) analytics(c *gin.Context) {
	entries, err := s.activeEntries(c)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, insights.Analytics(entries))
}

func (s *Server) reminders(c *gin.Context) {
	entries, err := s.activeEntries(c)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	due := insights.Reminders(entries)
	c.JSON(http.StatusOK, gin.H{"reminders": due, "count": len(due)})
}

func (s *Server) health(c *gin.Context) {
	if err := s.monitor.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "db": "error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.monitor.Snapshot(c.Request.Context()))
}
