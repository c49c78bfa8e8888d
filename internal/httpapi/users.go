package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"birthdayReminderTracker/internal/apperr"
	"birthdayReminderTracker/internal/auth"
	"birthdayReminderTracker/models"
	"birthdayReminderTracker/repository"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerPayload struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DateOfBirth string `json:"dateOfBirth"`
	Phone       string `json:"phone"`
}

type preferencesPayload struct {
	Notifications *bool `json:"notifications"`
	ReminderDays  *int  `json:"reminderDays"`
}

// profilePayload is the body of a profile update. Absent fields are left untouched.
type profilePayload struct {
	Name            *string             `json:"name"`
	Email           *string             `json:"email"`
	Phone           *string             `json:"phone"`
	DateOfBirth     *string             `json:"dateOfBirth"`
	ProfilePicture  *string             `json:"profilePicture"`
	Preferences     *preferencesPayload `json:"preferences"`
	CurrentPassword string              `json:"currentPassword"`
	NewPassword     string              `json:"newPassword"`
}

func (s *Server) issue(u *models.User) (string, error) {
	tok, err := s.tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("issue token: %w", err))
	}
	return tok, nil
}

func (s *Server) login(c *gin.Context) {
	var body loginPayload
	if err := bindJSON(c, &body); err != nil {
		apperr.Abort(c, err)
		return
	}
	f := apperr.Fields{}
	body.Email = strings.TrimSpace(body.Email)
	if body.Email == "" {
		f.Add("email", "is required")
	}
	if body.Password == "" {
		f.Add("password", "is required")
	}
	if err := f.Err(); err != nil {
		apperr.Abort(c, err)
		return
	}

	u, err := s.users.GetByEmail(c.Request.Context(), body.Email)
	if err != nil {
		apperr.Abort(c, apperr.Internal(err))
		return
	}
	if u == nil || !auth.VerifyPassword(body.Password, u.PasswordHash) {
		apperr.Abort(c, apperr.Authentication("Invalid credentials"))
		return
	}
	tok, err := s.issue(u)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": tok, "user": u})
}

func (s *Server) register(c *gin.Context) {
	var body registerPayload
	if err := bindJSON(c, &body); err != nil {
		apperr.Abort(c, err)
		return
	}
	f := apperr.Fields{}
	checkText(f, "name", &body.Name, true, models.MaxNameLength)
	checkEmail(f, "email", &body.Email, true)
	if len(body.Password) < auth.MinPasswordLength {
		f.Add("password", fmt.Sprintf("must be at least %d characters", auth.MinPasswordLength))
	}
	u := models.NewUser(body.Name, body.Email)
	u.Phone = strings.TrimSpace(body.Phone)
	if raw := strings.TrimSpace(body.DateOfBirth); raw != "" {
		if d, ok := checkPastDate(f, "dateOfBirth", raw, s.today()); ok {
			u.DateOfBirth = &d
		}
	}
	if err := f.Err(); err != nil {
		apperr.Abort(c, err)
		return
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		apperr.Abort(c, apperr.Internal(err))
		return
	}
	u.PasswordHash = hash
	created, err := s.users.Create(c.Request.Context(), u)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			apperr.Abort(c, apperr.Conflict("User with this email already exists"))
			return
		}
		apperr.Abort(c, apperr.Internal(err))
		return
	}
	tok, err := s.issue(created)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "token": tok, "user": created})
}

// currentUser loads the caller's stored account. A token whose account was
// deleted is treated as NotFound, since tokens are not revoked.
func (s *Server) currentUser(c *gin.Context) (*models.User, error) {
	p, err := auth.RequirePrincipal(c.Request.Context())
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(c.Request.Context(), p.UserID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}

func (s *Server) getProfile(c *gin.Context) {
	u, err := s.currentUser(c)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (s *Server) updateProfile(c *gin.Context) {
	u, err := s.currentUser(c)
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	var body profilePayload
	if err := bindJSON(c, &body); err != nil {
		apperr.Abort(c, err)
		return
	}

	f := apperr.Fields{}
	if body.NewPassword != "" {
		switch {
		case body.CurrentPassword == "":
			f.Add("currentPassword", "is required to set a new password")
		case !auth.VerifyPassword(body.CurrentPassword, u.PasswordHash):
			f.Add("currentPassword", "is incorrect")
		}
		if len(body.NewPassword) < auth.MinPasswordLength {
			f.Add("newPassword", fmt.Sprintf("must be at least %d characters", auth.MinPasswordLength))
		}
	}
	if body.Name != nil {
		checkText(f, "name", body.Name, true, models.MaxNameLength)
		u.Name = *body.Name
	}
	if body.Email != nil {
		checkEmail(f, "email", body.Email, true)
		u.Email = *body.Email
	}
	if body.Phone != nil {
		u.Phone = strings.TrimSpace(*body.Phone)
	}
	if body.DateOfBirth != nil {
		if raw := strings.TrimSpace(*body.DateOfBirth); raw == "" {
			u.DateOfBirth = nil
		} else if d, ok := checkPastDate(f, "dateOfBirth", raw, s.today()); ok {
			u.DateOfBirth = &d
		}
	}
	if body.ProfilePicture != nil {
		u.ProfilePicture = strings.TrimSpace(*body.ProfilePicture)
	}
	if pr := body.Preferences; pr != nil {
		if pr.Notifications != nil {
			u.Preferences.Notifications = *pr.Notifications
		}
		if pr.ReminderDays != nil {
			checkRange(f, "preferences.reminderDays", *pr.ReminderDays, models.MinReminderDays, models.MaxReminderDays)
			u.Preferences.ReminderDays = *pr.ReminderDays
		}
	}
	if err := f.Err(); err != nil {
		apperr.Abort(c, err)
		return
	}

	if body.NewPassword != "" {
		hash, err := auth.HashPassword(body.NewPassword)
		if err != nil {
			apperr.Abort(c, apperr.Internal(err))
			return
		}
		u.PasswordHash = hash
	}
	if err := s.users.Update(c.Request.Context(), u); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			apperr.Abort(c, apperr.Conflict("Email is already taken"))
		case errors.Is(err, repository.ErrNotFound):
			apperr.Abort(c, apperr.NotFound("User not found"))
		default:
			apperr.Abort(c, apperr.Internal(err))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": u})
}

func (s *Server) deleteProfile(c *gin.Context) {
	p, err := auth.RequirePrincipal(c.Request.Context())
	if err != nil {
		apperr.Abort(c, err)
		return
	}
	summary, err := s.users.Delete(c.Request.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			apperr.Abort(c, apperr.NotFound("User not found"))
			return
		}
		apperr.Abort(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully", "birthdaysDeleted": summary.BirthdaysDeleted})
}

func (s *Server) listUsers(c *gin.Context) {
	page, limit := parsePage(c.Query("page"), c.Query("limit"))
	ctx := c.Request.Context()
	total, err := s.users.Count(ctx)
	if err != nil {
		apperr.Abort(c, apperr.Internal(err))
		return
	}
	users, err := s.users.List(ctx, limit, (page-1)*limit)
	if err != nil {
		apperr.Abort(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "pagination": newPagination(page, limit, total)})
}
