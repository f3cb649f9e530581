package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"debt-coach/domain"

	_ "modernc.org/sqlite" // register sqlite driver
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS debts (
    id               TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL,
    name             TEXT NOT NULL,
    balance          TEXT NOT NULL,
    annual_rate      TEXT NOT NULL,
    minimum_payment  TEXT NOT NULL,
    due_day          INTEGER NOT NULL DEFAULT 0,
    type             TEXT,
    status           TEXT NOT NULL DEFAULT 'active',
    created_at       TEXT NOT NULL,
    updated_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS nudges (
    id               TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL,
    title            TEXT NOT NULL,
    message          TEXT NOT NULL,
    source           TEXT NOT NULL,
    status           TEXT NOT NULL,
    failure_reason   TEXT,
    created_at       TEXT NOT NULL,
    delivered_at     TEXT
);

CREATE TABLE IF NOT EXISTS events (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id          TEXT NOT NULL,
    kind             TEXT NOT NULL,
    payload          TEXT,
    created_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_debts_user ON debts(user_id);
CREATE INDEX IF NOT EXISTS idx_nudges_user ON nudges(user_id);
CREATE INDEX IF NOT EXISTS idx_events_user ON events(user_id);
`

// SQLiteStore persists debts, nudges and events. Monetary columns are TEXT
// so decimal values round-trip without binary-float loss.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at the given path and
// bootstraps the schema.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, debt domain.Debt) (domain.Debt, error) {
	if debt.ID == "" {
		debt.ID = uuid.NewString()
	}
	if debt.Status == "" {
		debt.Status = domain.DebtStatusActive
	}
	now := time.Now().UTC()
	debt.CreatedAt = now
	debt.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO debts (id, user_id, name, balance, annual_rate, minimum_payment,
		                   due_day, type, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		debt.ID, debt.UserID, debt.Name,
		debt.Balance.String(), debt.AnnualRate.String(), debt.MinimumPayment.String(),
		debt.DueDay, debt.Type, string(debt.Status),
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return domain.Debt{}, fmt.Errorf("inserting debt: %w", err)
	}
	return debt, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Debt, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, balance, annual_rate, minimum_payment,
		       due_day, type, status, created_at, updated_at
		FROM debts WHERE id = ?`, id)
	return scanDebt(row)
}

func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]domain.Debt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, balance, annual_rate, minimum_payment,
		       due_day, type, status, created_at, updated_at
		FROM debts WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var debts []domain.Debt
	for rows.Next() {
		debt, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, debt)
	}
	return debts, rows.Err()
}

func (s *SQLiteStore) Update(ctx context.Context, debt domain.Debt) (domain.Debt, error) {
	debt.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE debts SET name = ?, balance = ?, annual_rate = ?, minimum_payment = ?,
		                 due_day = ?, type = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		debt.Name, debt.Balance.String(), debt.AnnualRate.String(), debt.MinimumPayment.String(),
		debt.DueDay, debt.Type, string(debt.Status),
		debt.UpdatedAt.Format(time.RFC3339), debt.ID,
	)
	if err != nil {
		return domain.Debt{}, fmt.Errorf("updating debt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Debt{}, domain.ErrNotFound
	}
	return s.Get(ctx, debt.ID)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM debts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDebt(row rowScanner) (domain.Debt, error) {
	var (
		debt                          domain.Debt
		balance, rate, minPay, status string
		createdAt, updatedAt          string
	)
	err := row.Scan(&debt.ID, &debt.UserID, &debt.Name, &balance, &rate, &minPay,
		&debt.DueDay, &debt.Type, &status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return domain.Debt{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Debt{}, err
	}

	if debt.Balance, err = decimal.NewFromString(balance); err != nil {
		return domain.Debt{}, fmt.Errorf("parsing balance: %w", err)
	}
	if debt.AnnualRate, err = decimal.NewFromString(rate); err != nil {
		return domain.Debt{}, fmt.Errorf("parsing annual_rate: %w", err)
	}
	if debt.MinimumPayment, err = decimal.NewFromString(minPay); err != nil {
		return domain.Debt{}, fmt.Errorf("parsing minimum_payment: %w", err)
	}
	debt.Status = domain.DebtStatus(status)
	debt.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	debt.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return debt, nil
}

// Nudges returns the nudge repository view of the store.
func (s *SQLiteStore) Nudges() NudgeRepository { return sqliteNudges{s} }

// Events returns the event repository view of the store.
func (s *SQLiteStore) Events() EventRepository { return sqliteEvents{s} }

type sqliteNudges struct{ *SQLiteStore }

func (s sqliteNudges) Save(ctx context.Context, nudge domain.Nudge) error {
	deliveredAt := ""
	if !nudge.DeliveredAt.IsZero() {
		deliveredAt = nudge.DeliveredAt.Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO nudges (id, user_id, title, message, source, status,
		                    failure_reason, created_at, delivered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			message = excluded.message,
			source = excluded.source,
			status = excluded.status,
			failure_reason = excluded.failure_reason,
			delivered_at = excluded.delivered_at`,
		nudge.ID, nudge.UserID, nudge.Title, nudge.Message,
		string(nudge.Source), string(nudge.Status), nudge.FailureReason,
		nudge.CreatedAt.Format(time.RFC3339), deliveredAt,
	)
	if err != nil {
		return fmt.Errorf("saving nudge: %w", err)
	}
	return nil
}

func (s sqliteNudges) Get(ctx context.Context, id string) (domain.Nudge, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, message, source, status, failure_reason,
		       created_at, delivered_at
		FROM nudges WHERE id = ?`, id)
	return scanNudge(row)
}

func (s sqliteNudges) ListByUser(ctx context.Context, userID string) ([]domain.Nudge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, message, source, status, failure_reason,
		       created_at, delivered_at
		FROM nudges WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var nudges []domain.Nudge
	for rows.Next() {
		nudge, err := scanNudge(rows)
		if err != nil {
			return nil, err
		}
		nudges = append(nudges, nudge)
	}
	return nudges, rows.Err()
}

func scanNudge(row rowScanner) (domain.Nudge, error) {
	var (
		nudge                  domain.Nudge
		source, status         string
		createdAt, deliveredAt string
	)
	err := row.Scan(&nudge.ID, &nudge.UserID, &nudge.Title, &nudge.Message,
		&source, &status, &nudge.FailureReason, &createdAt, &deliveredAt)
	if err == sql.ErrNoRows {
		return domain.Nudge{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Nudge{}, err
	}
	nudge.Source = domain.NudgeSource(source)
	nudge.Status = domain.NudgeStatus(status)
	nudge.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if deliveredAt != "" {
		nudge.DeliveredAt, _ = time.Parse(time.RFC3339, deliveredAt)
	}
	return nudge, nil
}

type sqliteEvents struct{ *SQLiteStore }

func (s sqliteEvents) Record(ctx context.Context, event domain.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (user_id, kind, payload, created_at)
		VALUES (?, ?, ?, ?)`,
		event.UserID, string(event.Kind), event.Payload,
		event.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording event: %w", err)
	}
	return nil
}

func (s sqliteEvents) ListByUser(ctx context.Context, userID string) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, kind, payload, created_at
		FROM events WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []domain.Event
	for rows.Next() {
		var (
			event     domain.Event
			kind      string
			createdAt string
		)
		if err := rows.Scan(&event.ID, &event.UserID, &kind, &event.Payload, &createdAt); err != nil {
			return nil, err
		}
		event.Kind = domain.EventKind(kind)
		event.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		events = append(events, event)
	}
	return events, rows.Err()
}
