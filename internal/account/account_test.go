package account

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/shelfmark/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	m, err := NewManager(store.New(dir), testLogger())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, dir
}

func TestSignupThenLogin(t *testing.T) {
	m, _ := newTestManager(t)

	user, err := m.Signup("user@example.com", "Abcdefg!", "France")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if user.ID == "" {
		t.Error("expected a fresh id")
	}
	if !user.LoggedIn {
		t.Error("expected new user to be logged in")
	}
	if len(user.Bookmarks) != 0 {
		t.Errorf("expected empty bookmarks, got %d", len(user.Bookmarks))
	}

	got, err := m.Login("user@example.com", "Abcdefg!")
	if err != nil {
		t.Fatalf("Login right after Signup: %v", err)
	}
	if got.Email != user.Email || got.ID != user.ID {
		t.Errorf("Login returned %s/%s, want %s/%s", got.ID, got.Email, user.ID, user.Email)
	}
}

func TestSignupRejectsInvalidInput(t *testing.T) {
	m, dir := newTestManager(t)

	cases := []struct {
		name            string
		email, password string
	}{
		{"bad email", "user@.com", "Abcdefg!"},
		{"weak password", "user@example.com", "abcdefgh"},
		{"short password", "user@example.com", "Ab1!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Signup(tc.email, tc.password, "France")
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "users.json")); !os.IsNotExist(err) {
		t.Error("rejected signups must not persist anything")
	}
	if _, ok := m.Current(); ok {
		t.Error("rejected signup must not open a session")
	}
}

func TestLoginUnknownCredentials(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Signup("user@example.com", "Abcdefg!", "France"); err != nil {
		t.Fatal(err)
	}

	cases := []struct{ email, password string }{
		{"user@example.com", "Wrong1!x"},
		{"other@example.com", "Abcdefg!"},
		{"User@example.com", "Abcdefg!"}, // matching is case-sensitive
	}
	for _, tc := range cases {
		if _, err := m.Login(tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q, %q) = %v, want ErrInvalidCredentials", tc.email, tc.password, err)
		}
	}
}

func TestLoginFirstMatchWins(t *testing.T) {
	m, _ := newTestManager(t)

	first, err := m.Signup("dup@example.com", "Abcdefg!", "France")
	if err != nil {
		t.Fatal(err)
	}
	// Duplicate emails are not rejected at signup time.
	if _, err := m.Signup("dup@example.com", "Abcdefg!", "Japan"); err != nil {
		t.Fatalf("duplicate signup: %v", err)
	}

	got, err := m.Login("dup@example.com", "Abcdefg!")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != first.ID {
		t.Errorf("expected first record to win, got %s want %s", got.ID, first.ID)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	m, dir := newTestManager(t)
	if _, err := m.Signup("user@example.com", "Abcdefg!", "France"); err != nil {
		t.Fatal(err)
	}

	if err := m.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := m.Current(); ok {
		t.Error("session should be cleared after logout")
	}

	users, err := store.New(dir).LoadUsers()
	if err != nil {
		t.Fatal(err)
	}
	if users[0].LoggedIn {
		t.Error("persisted record should be marked logged out")
	}

	// Logout without a session is a no-op
	if err := m.Logout(); err != nil {
		t.Errorf("idempotent logout: %v", err)
	}
}

func TestSessionRestoredAcrossRestart(t *testing.T) {
	m, dir := newTestManager(t)
	user, err := m.Signup("user@example.com", "Abcdefg!", "France")
	if err != nil {
		t.Fatal(err)
	}

	// Simulate a process restart over the same data dir
	m2, err := NewManager(store.New(dir), testLogger())
	if err != nil {
		t.Fatalf("NewManager after restart: %v", err)
	}
	got, ok := m2.Current()
	if !ok {
		t.Fatal("expected session to be restored from the last-login marker")
	}
	if got.ID != user.ID {
		t.Errorf("restored %s, want %s", got.ID, user.ID)
	}
}

func TestNoSessionRestoredAfterLogout(t *testing.T) {
	m, dir := newTestManager(t)
	if _, err := m.Signup("user@example.com", "Abcdefg!", "France"); err != nil {
		t.Fatal(err)
	}
	if err := m.Logout(); err != nil {
		t.Fatal(err)
	}

	m2, err := NewManager(store.New(dir), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m2.Current(); ok {
		t.Error("no session should be restored after logout")
	}
}

func TestCorruptStoreFallsBackToEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "users.json"), []byte("{corrupt"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(store.New(dir), testLogger())
	if !errors.Is(err, store.ErrCorrupt) {
		t.Errorf("expected ErrCorrupt to surface, got %v", err)
	}
	if m == nil {
		t.Fatal("manager must stay usable on corrupt store")
	}

	// The manager works over the empty in-memory state.
	if _, err := m.Signup("user@example.com", "Abcdefg!", "France"); err != nil {
		t.Fatalf("Signup after corrupt load: %v", err)
	}
}

func TestCurrentReturnsIndependentCopy(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Signup("user@example.com", "Abcdefg!", "France"); err != nil {
		t.Fatal(err)
	}

	user, _ := m.Current()
	user.Bookmarks = append(user.Bookmarks, store.Bookmark{ID: "x"})

	again, _ := m.Current()
	if len(again.Bookmarks) != 0 {
		t.Error("mutating the returned copy must not affect manager state")
	}
}
