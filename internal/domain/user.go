package domain

import (
	"context"
	"time"
)

// Account is a registered user. Accounts are never updated or deleted.
type Account struct {
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// NewAccount creates a new Account instance
func NewAccount(username, passwordHash string) *Account {
	return &Account{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
}

// AccountRepository defines the interface for account persistence.
type AccountRepository interface {
	// GetAccount returns nil, nil when the username is unknown.
	GetAccount(ctx context.Context, username string) (*Account, error)

	// CreateAccount fails with a DuplicateAccount error if the username exists.
	CreateAccount(ctx context.Context, account *Account) error
}

// PasswordHasher produces and checks password digests.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// PlayerSession is the per-login context: who is playing and their quiz progress.
// It replaces any process-wide session state.
type PlayerSession struct {
	ID        string       `json:"id"`
	Username  string       `json:"username"`
	Admin     bool         `json:"admin"`
	CreatedAt time.Time    `json:"created_at"`
	Quiz      *QuizSession `json:"quiz,omitempty"`
}

// NewPlayerSession creates a session for a freshly logged-in user.
func NewPlayerSession(id, username string, admin bool) *PlayerSession {
	return &PlayerSession{
		ID:        id,
		Username:  username,
		Admin:     admin,
		CreatedAt: time.Now(),
	}
}

// SessionStore keeps player sessions between requests.
type SessionStore interface {
	// Get returns a SessionNotFound error when the id is unknown or expired.
	Get(ctx context.Context, id string) (*PlayerSession, error)
	Put(ctx context.Context, session *PlayerSession) error
	Delete(ctx context.Context, id string) error
}

// Settings is the persisted user preference.
type Settings struct {
	Difficulty QuizLevel `json:"difficulty"`
}

// DefaultSettings is used when nothing usable is stored.
func DefaultSettings() Settings {
	return Settings{Difficulty: DefaultLevel}
}

// SettingsRepository persists Settings as a single document.
type SettingsRepository interface {
	// Load returns DefaultSettings and a nil error when no settings are stored.
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, settings Settings) error
}
