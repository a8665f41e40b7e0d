package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/example/tablebook/internal/db"
)

var ErrUserExists = errors.New("user already exists")

// DBUsers keeps staff accounts in the users table.
type DBUsers struct{ db *db.DB }

func NewDBUsers(d *db.DB) *DBUsers { return &DBUsers{db: d} }

func (u *DBUsers) CreateUser(ctx context.Context, username, hash string) error {
	err := u.db.Exec(ctx, `INSERT INTO users(username, password_bcrypt) VALUES ($1,$2)`, username, hash)
	if db.IsUniqueViolation(err) {
		return ErrUserExists
	}
	return err
}

func (u *DBUsers) PasswordHash(ctx context.Context, username string) (int64, string, error) {
	var id int64
	var hash string
	err := u.db.QueryRow(ctx, `SELECT id, password_bcrypt FROM users WHERE username=$1`, username).Scan(&id, &hash)
	if err != nil {
		return 0, "", db.WrapNotFound(err)
	}
	return id, hash, nil
}

// MemoryUsers keeps staff accounts in process memory.
type MemoryUsers struct {
	mu     sync.Mutex
	nextID int64
	byName map[string]memoryUser
}

type memoryUser struct {
	id   int64
	hash string
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{byName: make(map[string]memoryUser)}
}

func (u *MemoryUsers) CreateUser(_ context.Context, username, hash string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.byName[username]; ok {
		return ErrUserExists
	}
	u.nextID++
	u.byName[username] = memoryUser{id: u.nextID, hash: hash}
	return nil
}

func (u *MemoryUsers) PasswordHash(_ context.Context, username string) (int64, string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	m, ok := u.byName[username]
	if !ok {
		return 0, "", db.ErrNotFound
	}
	return m.id, m.hash, nil
}
