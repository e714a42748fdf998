// Package account owns the known user records and the current session.
// All state lives on the Manager instance; callers that need the session
// (the bookmark manager, the UI) get the Manager injected.
package account

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/user/shelfmark/internal/store"
)

// lastEmailKey is the metadata key remembering the last logged-in email
// so the session survives a restart.
const lastEmailKey = "last_login_email"

// ErrInvalidCredentials means no record matched the given email and
// password exactly.
var ErrInvalidCredentials = errors.New("account: invalid email or password")

type Manager struct {
	store  *store.Store
	logger *slog.Logger

	users     []store.User
	currentID string
}

// NewManager loads the persisted users and restores the previous
// session when the last-login marker matches a loaded record.
//
// A corrupt store is reported through the returned error but the
// Manager stays usable with an empty user list, so the caller decides
// whether to surface the data loss or carry on.
func NewManager(st *store.Store, logger *slog.Logger) (*Manager, error) {
	m := &Manager{store: st, logger: logger}

	users, err := st.LoadUsers()
	if err != nil {
		m.logger.Error("loading users failed, starting empty", "error", err)
		return m, err
	}
	m.users = users

	if email, err := st.GetMetadata(lastEmailKey); err == nil && email != "" {
		for i := range m.users {
			if m.users[i].Email == email {
				m.currentID = m.users[i].ID
				m.logger.Info("session restored", "email", email)
				break
			}
		}
	}

	return m, nil
}

// Current returns a copy of the logged-in user record, if any. The
// bookmark slice is cloned so callers can mutate it freely before
// handing it back through UpdateCurrent.
func (m *Manager) Current() (store.User, bool) {
	i := m.indexOf(m.currentID)
	if i < 0 {
		return store.User{}, false
	}
	return cloneUser(m.users[i]), true
}

func cloneUser(u store.User) store.User {
	out := u
	out.Bookmarks = make([]store.Bookmark, len(u.Bookmarks))
	copy(out.Bookmarks, u.Bookmarks)
	return out
}

// Signup validates the input, creates a new record with a fresh id and
// an empty bookmark list, persists it, and makes it the current session.
// Duplicate emails are not rejected; login matches the earliest record.
func (m *Manager) Signup(email, password, country string) (store.User, error) {
	if err := validateSignup(email, password); err != nil {
		return store.User{}, err
	}

	user := store.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  password,
		Country:   country,
		LoggedIn:  true,
		Bookmarks: []store.Bookmark{},
	}

	m.users = append(m.users, user)
	if err := m.store.SaveUsers(m.users); err != nil {
		m.users = m.users[:len(m.users)-1]
		return store.User{}, fmt.Errorf("account: persist signup: %w", err)
	}

	m.currentID = user.ID
	m.setLastEmail(email)
	m.logger.Info("user signed up", "email", email, "id", user.ID)
	return user, nil
}

// Login scans for an exact, case-sensitive match on email and password
// (first match wins), marks the record logged in, persists, and sets
// the session and the last-login marker.
func (m *Manager) Login(email, password string) (store.User, error) {
	for i := range m.users {
		if m.users[i].Email != email || m.users[i].Password != password {
			continue
		}
		m.users[i].LoggedIn = true
		if err := m.store.SaveUsers(m.users); err != nil {
			return store.User{}, fmt.Errorf("account: persist login: %w", err)
		}
		m.currentID = m.users[i].ID
		m.setLastEmail(email)
		m.logger.Info("login succeeded", "email", email, "id", m.users[i].ID)
		return cloneUser(m.users[i]), nil
	}

	m.logger.Info("login failed", "email", email)
	return store.User{}, ErrInvalidCredentials
}

// Logout marks the current record logged out, persists, and clears the
// session and the last-login marker. Without a session it is a no-op.
func (m *Manager) Logout() error {
	i := m.indexOf(m.currentID)
	if i < 0 {
		return nil
	}

	m.users[i].LoggedIn = false
	if err := m.store.SaveUsers(m.users); err != nil {
		return fmt.Errorf("account: persist logout: %w", err)
	}

	m.logger.Info("logged out", "email", m.users[i].Email)
	m.currentID = ""
	m.setLastEmail("")
	return nil
}

// UpdateCurrent replaces the current session's record (after a bookmark
// mutation) and persists the whole collection.
func (m *Manager) UpdateCurrent(user store.User) error {
	i := m.indexOf(m.currentID)
	if i < 0 || m.users[i].ID != user.ID {
		return errors.New("account: no matching session to update")
	}

	prev := m.users[i]
	m.users[i] = cloneUser(user)
	if err := m.store.SaveUsers(m.users); err != nil {
		m.users[i] = prev
		return fmt.Errorf("account: persist update: %w", err)
	}
	return nil
}

// Users returns a copy of the known records, for diagnostics.
func (m *Manager) Users() []store.User {
	out := make([]store.User, len(m.users))
	for i := range m.users {
		out[i] = cloneUser(m.users[i])
	}
	return out
}

func (m *Manager) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range m.users {
		if m.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) setLastEmail(email string) {
	if err := m.store.SetMetadata(lastEmailKey, email); err != nil {
		// The in-memory session is still valid; only restart restore is affected.
		m.logger.Error("saving last-login marker failed", "error", err)
	}
}
