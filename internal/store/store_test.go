package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadUsersMissingFile(t *testing.T) {
	s := New(t.TempDir())

	users, err := s.LoadUsers()
	if err != nil {
		t.Fatalf("LoadUsers on empty dir: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected no users, got %d", len(users))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		users []User
	}{
		{name: "zero", users: []User{}},
		{name: "one", users: []User{
			{ID: "u1", Email: "a@example.com", Password: "Secret1!", Country: "France", LoggedIn: true, Bookmarks: []Bookmark{}},
		}},
		{name: "many", users: []User{
			{ID: "u1", Email: "a@example.com", Password: "Secret1!", Country: "France", Bookmarks: []Bookmark{
				{ID: "/works/OL1W", Title: "Dune", RatingAverage: 4.2, RatingCount: 910, CoverID: "12345"},
				{ID: "/works/OL2W", Title: "Emma", CoverID: ""},
			}},
			{ID: "u2", Email: "b@example.com", Password: "Other2@", Country: "Japan", LoggedIn: true, Bookmarks: []Bookmark{}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(t.TempDir())
			if err := s.SaveUsers(tc.users); err != nil {
				t.Fatalf("SaveUsers: %v", err)
			}
			got, err := s.LoadUsers()
			if err != nil {
				t.Fatalf("LoadUsers: %v", err)
			}
			if len(got) == 0 && len(tc.users) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.users) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, tc.users)
			}
		})
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := New(dir)

	if err := s.SaveUsers([]User{{ID: "u1"}}); err != nil {
		t.Fatalf("SaveUsers into missing dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "users.json")); err != nil {
		t.Errorf("users.json not created: %v", err)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	if err := s.SaveUsers([]User{{ID: "u1"}}); err != nil {
		t.Fatalf("SaveUsers: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "users.json.tmp")); !os.IsNotExist(err) {
		t.Errorf("temp file left behind after save")
	}
}

func TestLoadUsersCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "users.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s := New(dir)
	_, err := s.LoadUsers()
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	s := New(t.TempDir())

	got, err := s.GetMetadata("last_login_email")
	if err != nil || got != "" {
		t.Fatalf("missing metadata: got %q, %v", got, err)
	}

	if err := s.SetMetadata("last_login_email", "a@example.com"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	got, err = s.GetMetadata("last_login_email")
	if err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if got != "a@example.com" {
		t.Errorf("got %q, want a@example.com", got)
	}

	// Empty value removes the key
	if err := s.SetMetadata("last_login_email", ""); err != nil {
		t.Fatalf("SetMetadata clear: %v", err)
	}
	got, _ = s.GetMetadata("last_login_email")
	if got != "" {
		t.Errorf("expected cleared key, got %q", got)
	}
}

func TestSaveUsersNilBecomesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	if err := s.SaveUsers(nil); err != nil {
		t.Fatalf("SaveUsers(nil): %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "users.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "null" {
		t.Error("nil collection serialized as JSON null, want []")
	}
}
