package httpapi

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"birthdayReminderTracker/internal/anniversary"
	"birthdayReminderTracker/internal/apperr"
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

func validEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// bindJSON decodes the request body into dst. An empty body leaves dst untouched.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Invalid("body", "must be a valid JSON object")
	}
	return nil
}

// checkText trims *v in place and records a field error when it is empty
// (and required) or longer than max runes.
func checkText(f apperr.Fields, field string, v *string, required bool, max int) {
	*v = strings.TrimSpace(*v)
	if *v == "" {
		if required {
			f.Add(field, "is required")
		}
		return
	}
	if max > 0 && utf8.RuneCountInString(*v) > max {
		f.Add(field, fmt.Sprintf("cannot be more than %d characters", max))
	}
}

// checkEmail normalizes *v and validates it unless it is empty and optional.
func checkEmail(f apperr.Fields, field string, v *string, required bool) {
	*v = strings.ToLower(strings.TrimSpace(*v))
	if *v == "" {
		if required {
			f.Add(field, "is required")
		}
		return
	}
	if !validEmail(*v) {
		f.Add(field, "must be a valid email")
	}
}

// checkPastDate parses a calendar date that may not lie after today.
func checkPastDate(f apperr.Fields, field, raw string, today time.Time) (time.Time, bool) {
	d, err := anniversary.ParseDate(raw)
	if err != nil {
		f.Add(field, "must be a date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	if d.After(anniversary.DateOf(today)) {
		f.Add(field, "cannot be in the future")
		return time.Time{}, false
	}
	return d, true
}

func checkRange(f apperr.Fields, field string, v, min, max int) {
	if v < min || v > max {
		f.Add(field, fmt.Sprintf("must be between %d and %d", min, max))
	}
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid(name, "must be a positive integer")
	}
	return id, nil
}
