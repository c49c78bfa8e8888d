package testutil

import (
	"database/sql"
	"strconv"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"birthdayReminderTracker/internal/db"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// The database is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// Shared cache so that every pooled connection sees the same database.
	d, err := db.Open("file:" + dbName(name) + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// OpenInMemoryGorm is OpenInMemoryDB plus a GORM handle over the same pool.
func OpenInMemoryGorm(t *testing.T, name string) (*sql.DB, *gorm.DB) {
	t.Helper()
	d := OpenInMemoryDB(t, name)
	g, err := db.Gorm(d)
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}
	return d, g
}

// GenerateJWTHS256 returns a token signed with secret carrying exactly claims.
// Use it to build tokens the application itself would never issue.
func GenerateJWTHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// AppClaims returns claims shaped like the application's own tokens.
func AppClaims(userID int64, email, role string, exp time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"uid":   userID,
		"email": email,
		"role":  role,
		"sub":   strconv.FormatInt(userID, 10),
		"iss":   "birthday-reminder-tracker",
		"exp":   exp.Unix(),
	}
}

// BearerHeader formats token as an Authorization header value.
func BearerHeader(token string) string {
	return "Bearer " + token
}

// Date parses a YYYY-MM-DD date as UTC midnight.
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func dbName(name string) string {
	r := strings.NewReplacer("/", "_", " ", "_", "?", "_", "&", "_", "#", "_")
	return r.Replace(name)
}
