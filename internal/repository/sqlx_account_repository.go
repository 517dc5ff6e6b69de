package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"quiz-runner/internal/domain"

	"github.com/jmoiron/sqlx"
)

// oracleUniqueViolation is the Oracle error code for a unique constraint violation.
const oracleUniqueViolation = "ORA-00001"

// SQLXAccountRepository stores accounts in the quiz_accounts table.
type SQLXAccountRepository struct {
	db *sqlx.DB
	tm *TransactionManager
}

func NewSQLXAccountRepository(db *sqlx.DB) *SQLXAccountRepository {
	return &SQLXAccountRepository{db: db, tm: NewTransactionManager(db)}
}

func (r *SQLXAccountRepository) GetAccount(ctx context.Context, username string) (*domain.Account, error) {
	return r.getAccount(ctx, GetExecutor(ctx, r.db), username)
}

func (r *SQLXAccountRepository) getAccount(ctx context.Context, exec DBTX, username string) (*domain.Account, error) {
	query := `SELECT username, password_hash, created_at FROM quiz_accounts WHERE username = :username`

	stmt, err := exec.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetAccount: %w", err)
	}
	defer stmt.Close()

	var account domain.Account
	err = stmt.GetContext(ctx, &account, map[string]interface{}{"username": username})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// CreateAccount checks for an existing username and inserts in one transaction.
// A concurrent insert that wins the race is still reported as a duplicate via
// the table's primary key.
func (r *SQLXAccountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}

	return r.tm.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := GetExecutor(txCtx, r.db)

		existing, err := r.getAccount(txCtx, exec, account.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.NewDuplicateAccountError(account.Username)
		}

		query := `INSERT INTO quiz_accounts (username, password_hash, created_at)
		          VALUES (:username, :password_hash, :created_at)`
		if _, err := exec.NamedExecContext(txCtx, query, account); err != nil {
			if strings.Contains(err.Error(), oracleUniqueViolation) {
				return domain.NewDuplicateAccountError(account.Username)
			}
			return fmt.Errorf("failed to create account: %w", err)
		}
		return nil
	})
}

var _ domain.AccountRepository = (*SQLXAccountRepository)(nil)
