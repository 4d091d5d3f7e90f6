// Package bank provides SQLite-backed storage for user credentials, accounts,
// and fund transfers. Balances and amounts are handled as decimal strings end
// to end; floating point never touches money.
package bank

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/omisdami/bankassist/core"
)

// Store wraps the banking database.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (and if needed initializes) the banking database at the given
// path.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, log: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS UserCredentials (
		UserId TEXT PRIMARY KEY,
		Password TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS Accounts (
		UserId TEXT NOT NULL,
		AccountNumber TEXT NOT NULL,
		AccountName TEXT NOT NULL,
		Balance TEXT NOT NULL,
		PRIMARY KEY (UserId, AccountNumber)
	);

	CREATE TABLE IF NOT EXISTS Transfers (
		TransactionNumber TEXT PRIMARY KEY,
		FromAccountNumber TEXT NOT NULL,
		ToAccountNumber TEXT NOT NULL,
		TransferDateTime TEXT NOT NULL,
		Amount TEXT NOT NULL,
		FromAccountBalance TEXT NOT NULL,
		ToAccountBalance TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transfers_from ON Transfers(FromAccountNumber);
	CREATE INDEX IF NOT EXISTS idx_transfers_to ON Transfers(ToAccountNumber);
	CREATE INDEX IF NOT EXISTS idx_transfers_time ON Transfers(TransferDateTime);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.seed()
}

// seed inserts the demo user and accounts on first run.
func (s *Store) seed() error {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM Accounts`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	seed := `
	INSERT OR IGNORE INTO UserCredentials (UserId, Password) VALUES
		('test1', 'test123');

	INSERT OR IGNORE INTO Accounts (UserId, AccountNumber, AccountName, Balance) VALUES
		('test1', '1234567890', 'Chequing', '1000.00'),
		('test1', '2345678901', 'Savings', '5000.00'),
		('test1', '3456789012', 'Credit Card', '-250.00');
	`
	_, err := s.db.Exec(seed)
	if err == nil {
		s.log.Info().Msg("seeded demo accounts")
	}
	return err
}

// Authenticate reports whether the user id and password match a stored pair.
// Demo only: credentials are stored in clear text.
func (s *Store) Authenticate(ctx context.Context, userID, password string) (bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT UserId FROM UserCredentials WHERE UserId = ? AND Password = ?`,
		userID, password,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying credentials: %w", err)
	}
	return true, nil
}

// Accounts returns all accounts belonging to the user.
func (s *Store) Accounts(ctx context.Context, userID string) ([]core.Account, error) {
	return s.queryAccounts(ctx,
		`SELECT AccountNumber, AccountName, Balance FROM Accounts WHERE UserId = ?`,
		userID)
}

// TransferTargets returns the user's accounts that the given account can
// transfer to: every account except the source.
func (s *Store) TransferTargets(ctx context.Context, userID, fromAccount string) ([]core.Account, error) {
	return s.queryAccounts(ctx,
		`SELECT AccountNumber, AccountName, Balance FROM Accounts WHERE UserId = ? AND AccountNumber != ?`,
		userID, fromAccount)
}

// Balance returns the named account, or a not-found error.
func (s *Store) Balance(ctx context.Context, userID, accountNumber string) (*core.Account, error) {
	accounts, err := s.queryAccounts(ctx,
		`SELECT AccountNumber, AccountName, Balance FROM Accounts WHERE UserId = ? AND AccountNumber = ?`,
		userID, accountNumber)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("account %s not found", accountNumber)
	}
	return &accounts[0], nil
}

func (s *Store) queryAccounts(ctx context.Context, query string, args ...interface{}) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.AccountNumber, &a.AccountName, &a.Balance); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		a.Currency = "CAD"
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Transfer moves the given amount between two accounts of the same user in a
// single transaction, recording the transfer with both post-transfer balances.
func (s *Store) Transfer(ctx context.Context, userID, fromAccount, toAccount, amount string) error {
	amt, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if amt.Sign() <= 0 {
		return fmt.Errorf("amount must be positive, got %s", amt.String())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	fromBalance, err := adjustBalance(ctx, tx, userID, fromAccount, amt.Neg())
	if err != nil {
		return err
	}
	if fromBalance.Sign() < 0 {
		return fmt.Errorf("insufficient funds in account %s", fromAccount)
	}
	toBalance, err := adjustBalance(ctx, tx, userID, toAccount, amt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO Transfers (
			TransactionNumber, FromAccountNumber, ToAccountNumber,
			TransferDateTime, Amount, FromAccountBalance, ToAccountBalance
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), fromAccount, toAccount,
		time.Now().Format(time.RFC3339), amt.StringFixed(2),
		fromBalance.StringFixed(2), toBalance.StringFixed(2),
	)
	if err != nil {
		return fmt.Errorf("recording transfer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transfer: %w", err)
	}

	s.log.Info().
		Str("from", fromAccount).
		Str("to", toAccount).
		Str("amount", amt.StringFixed(2)).
		Msg("transfer completed")
	return nil
}

// adjustBalance applies a signed delta to one account and returns the new
// balance.
func adjustBalance(ctx context.Context, tx *sql.Tx, userID, accountNumber string, delta decimal.Decimal) (decimal.Decimal, error) {
	var current string
	err := tx.QueryRowContext(ctx,
		`SELECT Balance FROM Accounts WHERE UserId = ? AND AccountNumber = ?`,
		userID, accountNumber,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return decimal.Zero, fmt.Errorf("account %s not found", accountNumber)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading balance: %w", err)
	}

	balance, err := decimal.NewFromString(current)
	if err != nil {
		return decimal.Zero, fmt.Errorf("stored balance %q is not decimal: %w", current, err)
	}
	balance = balance.Add(delta)

	_, err = tx.ExecContext(ctx,
		`UPDATE Accounts SET Balance = ? WHERE UserId = ? AND AccountNumber = ?`,
		balance.StringFixed(2), userID, accountNumber)
	if err != nil {
		return decimal.Zero, fmt.Errorf("updating balance: %w", err)
	}
	return balance, nil
}

// History returns the transfer history touching the given account within the
// last days days, most recent first. Outgoing transfers appear as debits with
// negated amounts; incoming as credits.
func (s *Store) History(ctx context.Context, accountNumber string, days int) ([]core.Transaction, error) {
	if days <= 0 {
		days = 30
	}
	startDate := time.Now().AddDate(0, 0, -days).Format(time.RFC3339)

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			TransactionNumber,
			TransferDateTime,
			CASE WHEN FromAccountNumber = ? THEN 'debit' ELSE 'credit' END,
			CASE WHEN FromAccountNumber = ? THEN '-' || Amount ELSE Amount END,
			CASE WHEN FromAccountNumber = ? THEN 'Transfer to ' || ToAccountNumber
			     ELSE 'Transfer from ' || FromAccountNumber END,
			CASE WHEN FromAccountNumber = ? THEN FromAccountBalance
			     ELSE ToAccountBalance END
		FROM Transfers
		WHERE (FromAccountNumber = ? OR ToAccountNumber = ?)
		  AND TransferDateTime >= ?
		ORDER BY TransferDateTime DESC`,
		accountNumber, accountNumber, accountNumber, accountNumber,
		accountNumber, accountNumber, startDate,
	)
	if err != nil {
		return nil, fmt.Errorf("querying transfers: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var transferTime string
		if err := rows.Scan(&t.TransactionID, &transferTime, &t.TransactionType,
			&t.Amount, &t.Description, &t.BalanceAfter); err != nil {
			return nil, fmt.Errorf("scanning transfer: %w", err)
		}
		// Date part only.
		t.Date, _, _ = strings.Cut(transferTime, "T")
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}
