package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// QuotaRepository implements models.Repository[*models.QuotaEntry] for the
// YouTube Data API quota ledger.
//
// Every billable API call is recorded with its unit cost so conversions can
// estimate remaining daily budget before burning it. The ledger is advisory:
// Google is the source of truth and resets the budget at midnight Pacific.
type QuotaRepository struct {
	db *sql.DB
}

// NewQuotaRepository creates a new QuotaRepository with the given database connection.
func NewQuotaRepository(db *sql.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

// Create inserts a new [models.QuotaEntry] with generated ID and sequence.
func (r *QuotaRepository) Create(entry *models.QuotaEntry) error {
	sequence, err := NextSequence(r.db, "quota")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	entry.SetID(id)
	entry.SetSequence(sequence)

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO quota (id, sequence, operation, units, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, entry.Operation, entry.Units, entry.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert quota entry: %w", err)
	}

	return nil
}

// Get retrieves a quota entry by ID.
func (r *QuotaRepository) Get(id string) (*models.QuotaEntry, error) {
	query := `
		SELECT id, sequence, operation, units, created_at
		FROM quota
		WHERE id = ?
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing quota entry.
//
// Ledger entries are effectively append-only; Update exists to satisfy the
// Repository interface and is only exercised by tests.
func (r *QuotaRepository) Update(entry *models.QuotaEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result, err := r.db.Exec(
		"UPDATE quota SET operation = ?, units = ? WHERE id = ?",
		entry.Operation, entry.Units, entry.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update quota entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("quota entry not found: %s", entry.ID())
	}

	return nil
}

// Delete removes a quota entry by ID.
func (r *QuotaRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM quota WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete quota entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("quota entry not found: %s", id)
	}

	return nil
}

// List retrieves quota entries matching the given criteria.
func (r *QuotaRepository) List(criteria map[string]any) ([]*models.QuotaEntry, error) {
	query := `
		SELECT id, sequence, operation, units, created_at
		FROM quota
		WHERE 1 = 1
	`

	args := []any{}

	if operation, ok := criteria["operation"].(string); ok && operation != "" {
		query += " AND operation = ?"
		args = append(args, operation)
	}

	if since, ok := criteria["since"].(time.Time); ok && !since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, since)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quota entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.QuotaEntry
	for rows.Next() {
		entry, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// UsedSince sums the units recorded at or after the given time.
func (r *QuotaRepository) UsedSince(since time.Time) (int, error) {
	var used int
	err := r.db.QueryRow(
		"SELECT COALESCE(SUM(units), 0) FROM quota WHERE created_at >= ?",
		since,
	).Scan(&used)
	if err != nil {
		return 0, fmt.Errorf("failed to sum quota usage: %w", err)
	}

	return used, nil
}

// UsedToday sums the units recorded since midnight Pacific, matching the
// window Google uses when resetting the daily budget.
func (r *QuotaRepository) UsedToday() (int, error) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		loc = time.UTC
	}

	now := time.Now().In(loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	return r.UsedSince(midnight)
}

// Remaining estimates the units left out of a daily limit. Never negative.
func (r *QuotaRepository) Remaining(dailyLimit int) (int, error) {
	used, err := r.UsedToday()
	if err != nil {
		return 0, err
	}

	remaining := dailyLimit - used
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}

// scanOne scans a single [sql.Row] into a [models.QuotaEntry].
func (r *QuotaRepository) scanOne(row *sql.Row) (*models.QuotaEntry, error) {
	var (
		id        string
		sequence  int
		operation string
		units     int
		createdAt time.Time
	)

	err := row.Scan(&id, &sequence, &operation, &units, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("quota entry not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan quota entry: %w", err)
	}

	return buildQuotaEntry(id, sequence, operation, units, createdAt), nil
}

// scanRow scans a row from [sql.Rows] into a [models.QuotaEntry].
func (r *QuotaRepository) scanRow(rows *sql.Rows) (*models.QuotaEntry, error) {
	var (
		id        string
		sequence  int
		operation string
		units     int
		createdAt time.Time
	)

	err := rows.Scan(&id, &sequence, &operation, &units, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan quota entry: %w", err)
	}

	return buildQuotaEntry(id, sequence, operation, units, createdAt), nil
}

func buildQuotaEntry(id string, sequence int, operation string, units int, createdAt time.Time) *models.QuotaEntry {
	entry := models.NewQuotaEntry(operation, units)
	entry.SetID(id)
	entry.SetSequence(sequence)
	entry.SetCreatedAt(createdAt)
	return entry
}
