package httpapi

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"birthdayReminderTracker/internal/apperr"
)

func TestBirthdays_RequireToken(t *testing.T) {
	e := newTestEnv(t)
	for _, tok := range []string{"", "not-a-jwt"} {
		w := e.do(http.MethodGet, "/birthdays", tok, nil)
		mustError(t, w, http.StatusUnauthorized, apperr.KindAuthentication)
	}
}

func TestBirthdays_CreateDerivedFields(t *testing.T) {
	e := newTestEnv(t)
	tok, uid := e.register("Alice", "alice@example.com", "secret1")

	w := e.do(http.MethodPost, "/birthdays", tok, map[string]any{
		"name":        "  John  ",
		"dateOfBirth": "1990-03-15",
		"email":       "John@Example.com",
		"giftIdeas":   []string{"book", " ", "tea"},
	})
	mustStatus(t, w, http.StatusCreated)
	var resp struct {
		Message  string    `json:"message"`
		Birthday entryJSON `json:"birthday"`
	}
	decode(t, w, &resp)
	b := resp.Birthday
	if resp.Message != "Birthday created successfully" {
		t.Fatalf("message = %q", resp.Message)
	}
	if b.UserID != uid || b.Name != "John" || b.Email != "john@example.com" || b.Relationship != "friend" || !b.IsActive {
		t.Fatalf("birthday = %+v", b)
	}
	if !reflect.DeepEqual(b.GiftIdeas, []string{"book", "tea"}) {
		t.Fatalf("giftIdeas = %v", b.GiftIdeas)
	}
	if !b.ReminderSettings.Enabled || b.ReminderSettings.DaysBefore != 7 {
		t.Fatalf("reminderSettings = %+v", b.ReminderSettings)
	}
	if b.Age != 33 || b.DaysUntil != 5 || !b.NextBirthday.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("derived = age %d, days %d, next %s", b.Age, b.DaysUntil, b.NextBirthday)
	}

	w = e.do(http.MethodGet, "/birthdays/"+itoa(b.ID), tok, nil)
	mustStatus(t, w, http.StatusOK)
	var got struct {
		Birthday entryJSON `json:"birthday"`
	}
	decode(t, w, &got)
	if got.Birthday.DaysUntil != 5 || !got.Birthday.DateOfBirth.Equal(time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("get = %+v", got.Birthday)
	}
}

func TestBirthdays_CreateValidation(t *testing.T) {
	e := newTestEnv(t)
	tok, _ := e.register("Alice", "alice@example.com", "secret1")

	w := e.do(http.MethodPost, "/birthdays", tok, map[string]any{})
	body := mustError(t, w, http.StatusBadRequest, apperr.KindValidation)
	if body.Fields["name"] == "" || body.Fields["dateOfBirth"] == "" {
		t.Fatalf("fields = %v", body.Fields)
	}

	w = e.do(http.MethodPost, "/birthdays", tok, map[string]any{
		"name":             strings.Repeat("x", 61),
		"dateOfBirth":      "2024-03-11",
		"relationship":     "enemy",
		"email":            "nope",
		"notes":            strings.Repeat("n", 501),
		"giftIdeas":        []string{strings.Repeat("g", 101)},
		"reminderSettings": map[string]any{"daysBefore": 0},
	})
	body = mustError(t, w, http.StatusBadRequest, apperr.KindValidation)
	for _, f := range []string{"name", "dateOfBirth", "relationship", "email", "notes", "giftIdeas", "reminderSettings.daysBefore"} {
		if body.Fields[f] == "" {
			t.Fatalf("missing field error for %s: %v", f, body.Fields)
		}
	}

	w = e.do(http.MethodPost, "/birthdays", tok, map[string]any{"name": "A", "dateOfBirth": "15/03/1990"})
	body = mustError(t, w, http.StatusBadRequest, apperr.KindValidation)
	if body.Fields["dateOfBirth"] == "" {
		t.Fatalf("fields = %v", body.Fields)
	}

	// Today is not in the future.
	e.createBirthday(tok, map[string]any{"name": "Newborn", "dateOfBirth": "2024-03-10"})
}

func TestBirthdays_DuplicateConflict(t *testing.T) {
	e := newTestEnv(t)
	tok, _ := e.register("Alice", "alice@example.com", "secret1")
	other, _ := e.register("Bob", "bob@example.com", "secret1")

	id := e.createBirthday(tok, map[string]any{"name": "John", "dateOfBirth": "1990-05-15"})
	w := e.do(http.MethodPost, "/birthdays", tok, map[string]any{"name": "john", "dateOfBirth": "1990-05-15"})
	mustError(t, w, http.StatusConflict, apperr.KindConflict)

	// Another owner may track the same person.
	e.createBirthday(other, map[string]any{"name": "John", "dateOfBirth": "1990-05-15"})

	// After a soft delete the pair is free again.
	mustStatus(t, e.do(http.MethodDelete, "/birthdays/"+itoa(id), tok, nil), http.StatusOK)
	e.createBirthday(tok, map[string]any{"name": "John", "dateOfBirth": "1990-05-15"})
}

func TestBirthdays_Update(t *testing.T) {
	e := newTestEnv(t)
	tok, _ := e.register("Alice", "alice@example.com", "secret1")
	id := e.createBirthday(tok, map[string]any{"name": "John", "dateOfBirth": "1990-05-15", "notes": "likes tea"})
	e.createBirthday(tok, map[string]any{"name": "Jane", "dateOfBirth": "1991-06-01"})

	w := e.do(http.MethodPut, "/birthdays/"+itoa(id), tok, map[string]any{
		"relationship":     "family",
		"reminderSettings": map[string]any{"enabled": false},
	})
	mustStatus(t, w, http.StatusOK)
	var resp struct {
		Message  string    `json:"message"`
		Birthday entryJSON `json:"birthday"`
	}
	decode(t, w, &resp)
	b := resp.Birthday
	if resp.Message != "Birthday updated successfully" || b.Name != "John" || b.Notes != "likes tea" || b.Relationship != "family" {
		t.Fatalf("updated = %+v", resp)
	}
	if b.ReminderSettings.Enabled || b.ReminderSettings.DaysBefore != 7 {
		t.Fatalf("reminderSettings = %+v", b.ReminderSettings)
	}

	w = e.do(http.MethodPut, "/birthdays/"+itoa(id), tok, map[string]any{"name": "Jane", "dateOfBirth": "1991-06-01"})
	mustError(t, w, http.StatusConflict, apperr.KindConflict)

	w = e.do(http.MethodPut, "/birthdays/"+itoa(id), tok, map[string]any{"name": ""})
	mustError(t, w, http.StatusBadRequest, apperr.KindValidation)

	w = e.do(http.MethodPut, "/birthdays/abc", tok, map[string]any{"name": "X"})
	mustError(t, w, http.StatusBadRequest, apperr.KindValidation)
}

func TestBirthdays_SoftDelete(t *testing.T) {
	e := newTestEnv(t)
	tok, _ := e.register("Alice", "alice@example.com", "secret1")
	id := e.createBirthday(tok, map[string]any{"name": "John", "dateOfBirth": "1990-05-15"})

	w := e.do(http.MethodDelete, "/birthdays/"+itoa(id), tok, nil)
	mustStatus(t, w, http.StatusOK)

	mustError(t, e.do(http.MethodGet, "/birthdays/"+itoa(id), tok, nil), http.StatusNotFound, apperr.KindNotFound)
	mustError(t, e.do(http.MethodDelete, "/birthdays/"+itoa(id), tok, nil), http.StatusNotFound, apperr.KindNotFound)
	mustError(t, e.do(http.MethodPut, "/birthdays/"+itoa(id), tok, map[string]any{"notes": "x"}), http.StatusNotFound, apperr.KindNotFound)

	b, err := e.birthdays.GetByID(context.Background(), id)
	if err != nil || b == nil {
		t.Fatalf("row should survive soft delete: %v %v", b, err)
	}
	if b.IsActive {
		t.Fatalf("expected inactive row")
	}

	w = e.do(http.MethodGet, "/birthdays", tok, nil)
	var list struct {
		Birthdays  []entryJSON `json:"birthdays"`
		Pagination Pagination  `json:"pagination"`
	}
	decode(t, w, &list)
	if len(list.Birthdays) != 0 || list.Pagination.Total != 0 {
		t.Fatalf("list after delete = %+v", list)
	}
}

func TestBirthdays_OwnerScoped(t *testing.T) {
	e := newTestEnv(t)
	alice, _ := e.register("Alice", "alice@example.com", "secret1")
	bob, _ := e.register("Bob", "bob@example.com", "secret1")
	id := e.createBirthday(alice, map[string]any{"name": "John", "dateOfBirth": "1990-05-15"})

	path := "/birthdays/" + itoa(id)
	mustError(t, e.do(http.MethodGet, path, bob, nil), http.StatusNotFound, apperr.KindNotFound)
	mustError(t, e.do(http.MethodPut, path, bob, map[string]any{"notes": "x"}), http.StatusNotFound, apperr.KindNotFound)
	mustError(t, e.do(http.MethodDelete, path, bob, nil), http.StatusNotFound, apperr.KindNotFound)
	mustStatus(t, e.do(http.MethodGet, path, alice, nil), http.StatusOK)
}

func TestBirthdays_List(t *testing.T) {
	e := newTestEnv(t)
	tok, _ := e.register("Alice", "alice@example.com", "secret1")
	for _, b := range []map[string]any{
		{"name": "Past", "dateOfBirth": "1990-03-09", "relationship": "family"},
		{"name": "Soon", "dateOfBirth": "1985-03-15", "relationship": "colleague"},
		{"name": "Later", "dateOfBirth": "2000-12-01"},
		{"name": "January", "dateOfBirth": "1995-01-20", "relationship": "family"},
		{"name": "Birthday Today", "dateOfBirth": "1980-03-10"},
	} {
		e.createBirthday(tok, b)
	}

	type listResp struct {
		Birthdays  []entryJSON `json:"birthdays"`
		Pagination Pagination  `json:"pagination"`
	}
	list := func(query string) listResp {
		t.Helper()
		w := e.do(http.MethodGet, "/birthdays"+query, tok, nil)
		mustStatus(t, w, http.StatusOK)
		var r listResp
		decode(t, w, &r)
		return r
	}

	r := list("")
	want := []string{"Birthday Today", "Soon", "Later", "January", "Past"}
	if !reflect.DeepEqual(entryNames(r.Birthdays), want) {
		t.Fatalf("default order = %v, want %v", entryNames(r.Birthdays), want)
	}
	if r.Pagination != (Pagination{Page: 1, Limit: 10, Total: 5, Pages: 1}) {
		t.Fatalf("pagination = %+v", r.Pagination)
	}

	r = list("?sortBy=name&limit=2&page=2")
	if !reflect.DeepEqual(entryNames(r.Birthdays), []string{"Later", "Past"}) {
		t.Fatalf("page 2 by name = %v", entryNames(r.Birthdays))
	}
	if r.Pagination != (Pagination{Page: 2, Limit: 2, Total: 5, Pages: 3}) {
		t.Fatalf("pagination = %+v", r.Pagination)
	}

	r = list("?relationship=family&sortBy=dateOfBirth")
	if !reflect.DeepEqual(entryNames(r.Birthdays), []string{"Past", "January"}) {
		t.Fatalf("family by dob = %v", entryNames(r.Birthdays))
	}
	r = list("?relationship=all&search=SOO")
	if !reflect.DeepEqual(entryNames(r.Birthdays), []string{"Soon"}) {
		t.Fatalf("search = %v", entryNames(r.Birthdays))
	}
	r = list("?search=%25")
	if len(r.Birthdays) != 0 {
		t.Fatalf("wildcard search matched %v", entryNames(r.Birthdays))
	}

	w := e.do(http.MethodGet, "/birthdays?sortBy=age&relationship=enemy", tok, nil)
	body := mustError(t, w, http.StatusBadRequest, apperr.KindValidation)
	if body.Fields["sortBy"] == "" || body.Fields["relationship"] == "" {
		t.Fatalf("fields = %v", body.Fields)
	}
}
