/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements loyalty.AccountStore and loyalty.TransactionLog on SQLite.
  The same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  accounts:     One row per registered account. chat_id and phone both
                carry UNIQUE constraints; the CHECK keeps balance >= 0 as
                a last line of defense under the conditional UPDATE.
  transactions: Append-only audit trail of balance changes. No UPDATE or
                DELETE statements exist for this table.

ATOMIC BALANCE UPDATES:
  AdjustBalance uses a single conditional UPDATE
  (... SET balance = balance + ? WHERE phone = ? AND balance + ? >= 0)
  so the read-modify-write cannot interleave with a concurrent writer.
  Zero rows affected means either a missing account or an insufficient
  balance; a follow-up SELECT under the same lock tells them apart.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): multiple readers
  don't block, single writer at a time, better crash recovery.

USAGE:
  st, err := sqlite.New("./loyalty.db")   // ":memory:" for tests
  if err != nil { log.Fatal(err) }
  defer st.Close()

SEE ALSO:
  - loyalty/store.go: Interface definitions
  - store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/roastery/loyaltybot/loyalty"
)

// Store implements loyalty.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

var _ loyalty.Store = (*Store)(nil)

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A ":memory:" database exists per connection; a single connection
	// keeps it shared, and SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		chat_id TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL DEFAULT 'customer',
		balance INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_role ON accounts(role);

	-- Append-only audit of balance changes
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		phone TEXT NOT NULL,
		actor_chat TEXT NOT NULL,
		tx_type TEXT NOT NULL,
		amount INTEGER NOT NULL,
		balance INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_phone
		ON transactions(phone, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ACCOUNT STORE (loyalty.AccountStore interface)
// =============================================================================

func (s *Store) Create(ctx context.Context, acct loyalty.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (chat_id, phone, role, balance, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(acct.ChatID),
		acct.Phone,
		acct.Role.String(),
		acct.Balance,
		acct.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			if strings.Contains(err.Error(), "accounts.phone") {
				return loyalty.ErrPhoneAlreadyRegistered
			}
			return loyalty.ErrChatAlreadyRegistered
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *Store) ByChat(ctx context.Context, chat loyalty.ChatID) (*loyalty.Account, error) {
	return s.queryAccount(ctx, "chat_id = ?", string(chat))
}

func (s *Store) ByPhone(ctx context.Context, phone string) (*loyalty.Account, error) {
	return s.queryAccount(ctx, "phone = ?", phone)
}

func (s *Store) queryAccount(ctx context.Context, where string, arg any) (*loyalty.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT chat_id, phone, role, balance, created_at
		FROM accounts WHERE `+where, arg)

	var (
		chatID, phone, roleStr, createdAt string
		balance                           int64
	)
	if err := row.Scan(&chatID, &phone, &roleStr, &balance, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, loyalty.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	role, err := loyalty.ParseRole(roleStr)
	if err != nil {
		return nil, err
	}
	created, _ := time.Parse(time.RFC3339, createdAt)

	return &loyalty.Account{
		ChatID:    loyalty.ChatID(chatID),
		Phone:     phone,
		Role:      role,
		Balance:   balance,
		CreatedAt: created,
	}, nil
}

// AdjustBalance applies delta with a conditional UPDATE so the balance can
// never be driven negative, even under concurrent writers.
func (s *Store) AdjustBalance(ctx context.Context, phone string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET balance = balance + ?
		WHERE phone = ? AND balance + ? >= 0`,
		delta, phone, delta,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if affected == 0 {
		// Missing account or insufficient balance; the same lock is still
		// held, so this read is consistent with the failed UPDATE.
		var balance int64
		err := s.db.QueryRowContext(ctx,
			"SELECT balance FROM accounts WHERE phone = ?", phone,
		).Scan(&balance)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, loyalty.ErrAccountNotFound
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read balance: %w", err)
		}
		return 0, &loyalty.InsufficientBalanceError{
			Phone:     phone,
			Available: balance,
			Requested: -delta,
		}
	}

	var balance int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT balance FROM accounts WHERE phone = ?", phone,
	).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return balance, nil
}

func (s *Store) SetRole(ctx context.Context, phone string, role loyalty.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE accounts SET role = ? WHERE phone = ?",
		role.String(), phone,
	)
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return loyalty.ErrAccountNotFound
	}
	return nil
}

func (s *Store) Admins(ctx context.Context) ([]loyalty.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chat_id, phone, role, balance, created_at
		FROM accounts WHERE role = 'admin'`)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer rows.Close()

	var admins []loyalty.Account
	for rows.Next() {
		var (
			chatID, phone, roleStr, createdAt string
			balance                           int64
		)
		if err := rows.Scan(&chatID, &phone, &roleStr, &balance, &createdAt); err != nil {
			return nil, err
		}
		created, _ := time.Parse(time.RFC3339, createdAt)
		admins = append(admins, loyalty.Account{
			ChatID:    loyalty.ChatID(chatID),
			Phone:     phone,
			Role:      loyalty.RoleAdmin,
			Balance:   balance,
			CreatedAt: created,
		})
	}
	return admins, rows.Err()
}

// =============================================================================
// TRANSACTION LOG (loyalty.TransactionLog interface)
// =============================================================================

// AppendTx adds a transaction to the audit trail. Append-only.
func (s *Store) AppendTx(ctx context.Context, tx loyalty.PointsTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, phone, actor_chat, tx_type, amount, balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID,
		tx.Phone,
		string(tx.ActorChat),
		string(tx.Type),
		tx.Amount,
		tx.Balance,
		tx.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

func (s *Store) TransactionsByPhone(ctx context.Context, phone string) ([]loyalty.PointsTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, phone, actor_chat, tx_type, amount, balance, created_at
		FROM transactions
		WHERE phone = ?
		ORDER BY created_at ASC, id ASC`, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []loyalty.PointsTransaction
	for rows.Next() {
		var (
			tx        loyalty.PointsTransaction
			actorChat string
			txType    string
			createdAt string
		)
		if err := rows.Scan(&tx.ID, &tx.Phone, &actorChat, &txType, &tx.Amount, &tx.Balance, &createdAt); err != nil {
			return nil, err
		}
		tx.ActorChat = loyalty.ChatID(actorChat)
		tx.Type = loyalty.TxType(txType)
		tx.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
