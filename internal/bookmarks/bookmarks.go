// Package bookmarks maintains the current user's bookmark list. Every
// mutation is written back through the account manager's record before
// it is visible, so a follow-up read always sees persisted state.
package bookmarks

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/user/shelfmark/internal/account"
	"github.com/user/shelfmark/internal/store"
)

// ErrNoSession means a bookmark operation was attempted without a
// logged-in user. The UI is expected to gate against this.
var ErrNoSession = errors.New("bookmarks: no user is logged in")

type Manager struct {
	accounts *account.Manager
	logger   *slog.Logger
}

func NewManager(accounts *account.Manager, logger *slog.Logger) *Manager {
	return &Manager{accounts: accounts, logger: logger}
}

// List returns the current user's bookmarks in saved order.
func (m *Manager) List() ([]store.Bookmark, error) {
	user, ok := m.accounts.Current()
	if !ok {
		return nil, ErrNoSession
	}
	out := make([]store.Bookmark, len(user.Bookmarks))
	copy(out, user.Bookmarks)
	return out, nil
}

// Add appends b to the current user's list and persists. The same book
// id may be bookmarked more than once.
func (m *Manager) Add(b store.Bookmark) error {
	user, ok := m.accounts.Current()
	if !ok {
		return ErrNoSession
	}

	user.Bookmarks = append(user.Bookmarks, b)
	if err := m.accounts.UpdateCurrent(user); err != nil {
		return fmt.Errorf("bookmarks: add %q: %w", b.ID, err)
	}

	m.logger.Info("bookmark added", "id", b.ID, "title", b.Title, "user", user.Email)
	return nil
}

// Remove deletes the first bookmark matching b's id. The returned bool
// reports whether anything was removed; a miss is not an error.
func (m *Manager) Remove(b store.Bookmark) (bool, error) {
	return m.RemoveByID(b.ID)
}

// RemoveByID deletes the first bookmark with the given id and persists.
func (m *Manager) RemoveByID(id string) (bool, error) {
	user, ok := m.accounts.Current()
	if !ok {
		return false, ErrNoSession
	}

	idx := -1
	for i := range user.Bookmarks {
		if user.Bookmarks[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.logger.Info("bookmark not found", "id", id, "user", user.Email)
		return false, nil
	}

	user.Bookmarks = append(user.Bookmarks[:idx], user.Bookmarks[idx+1:]...)
	if err := m.accounts.UpdateCurrent(user); err != nil {
		return false, fmt.Errorf("bookmarks: remove %q: %w", id, err)
	}

	m.logger.Info("bookmark removed", "id", id, "user", user.Email)
	return true, nil
}
