package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"quiz-runner/internal/domain"

	"github.com/spf13/afero"
)

// FileAccountRepository keeps accounts as a JSON object mapping username to
// password digest. The whole document is rewritten on every registration.
type FileAccountRepository struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

func NewFileAccountRepository(fs afero.Fs, path string) *FileAccountRepository {
	return &FileAccountRepository{fs: fs, path: path}
}

func (r *FileAccountRepository) readAll() (map[string]string, error) {
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, domain.NewInternalError("failed to read account store", err)
	}

	accounts := map[string]string{}
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, domain.NewMalformedError("account store is not a valid username map", err)
	}
	if accounts == nil {
		accounts = map[string]string{}
	}
	return accounts, nil
}

// GetAccount returns nil, nil for unknown usernames.
func (r *FileAccountRepository) GetAccount(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.readAll()
	if err != nil {
		return nil, err
	}
	hash, ok := accounts[username]
	if !ok {
		return nil, nil
	}
	return &domain.Account{Username: username, PasswordHash: hash}, nil
}

func (r *FileAccountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.readAll()
	if err != nil {
		return err
	}
	if _, exists := accounts[account.Username]; exists {
		return domain.NewDuplicateAccountError(account.Username)
	}
	accounts[account.Username] = account.PasswordHash

	if err := writeJSONFile(r.fs, r.path, accounts); err != nil {
		return domain.NewInternalError(fmt.Sprintf("failed to save account %s", account.Username), err)
	}
	return nil
}

var _ domain.AccountRepository = (*FileAccountRepository)(nil)
