package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"sparxfest/internal/model"
)

var ErrRegistrationNotFound = errors.New("registration not found")

// Repository is the single collection of registration documents. The catalog
// is configuration, not storage, so nothing here touches events beyond the
// selected-name list each registration carries.
type Repository interface {
	CreateRegistration(ctx context.Context, reg *model.Registration) (int64, error)
	GetAllRegistrations(ctx context.Context) ([]model.Registration, error)
	GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error)
	UpdateRegistration(ctx context.Context, id int64, reg *model.Registration) error
	UpdateRegistrationStatusTx(ctx context.Context, id int64, newStatus string) error
	DeleteRegistration(ctx context.Context, id int64) error
	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

func (r *repository) MigrateUp(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := ioutil.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations applied successfully from %s", migrationsDir)
	return nil
}

func (r *repository) MigrateDown(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.down.sql"))
	if err != nil {
		return fmt.Errorf("failed to read rollback files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := ioutil.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read rollback file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations rolled back successfully from %s", migrationsDir)
	return nil
}

func (r *repository) CreateRegistration(ctx context.Context, reg *model.Registration) (int64, error) {
	query := `
		INSERT INTO registrations
			(full_name, email, phone, college, year, branch, events, team_members,
			 total_fee, payment_method, payment_screenshot_url, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	row := r.db.QueryRowContext(ctx, query,
		reg.FullName, reg.Email, reg.Phone, reg.College, reg.Year, reg.Branch,
		pq.Array(reg.Events), reg.TeamMembers, reg.TotalFee, reg.PaymentMethod,
		reg.PaymentScreenshotURL, reg.Status, parseTimestamp(reg.Timestamp),
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert registration: %w", err)
	}
	return id, nil
}

func (r *repository) GetAllRegistrations(ctx context.Context) ([]model.Registration, error) {
	query := `
		SELECT id, full_name, email, phone, college, year, branch, events,
		       team_members, total_fee, payment_method, payment_screenshot_url,
		       status, created_at
		FROM registrations
		ORDER BY created_at DESC NULLS LAST, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, *reg)
	}

	return regs, rows.Err()
}

func (r *repository) GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error) {
	query := `
		SELECT id, full_name, email, phone, college, year, branch, events,
		       team_members, total_fee, payment_method, payment_screenshot_url,
		       status, created_at
		FROM registrations
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return reg, nil
}

// UpdateRegistration overwrites every mutable field of the record. created_at
// is intentionally left untouched: the submission timestamp never changes.
func (r *repository) UpdateRegistration(ctx context.Context, id int64, reg *model.Registration) error {
	query := `
		UPDATE registrations
		SET full_name = $1, email = $2, phone = $3, college = $4, year = $5,
		    branch = $6, events = $7, team_members = $8, total_fee = $9,
		    payment_method = $10, payment_screenshot_url = $11, status = $12
		WHERE id = $13
		RETURNING id
	`

	var updated int64
	err := r.db.QueryRowContext(ctx, query,
		reg.FullName, reg.Email, reg.Phone, reg.College, reg.Year, reg.Branch,
		pq.Array(reg.Events), reg.TeamMembers, reg.TotalFee, reg.PaymentMethod,
		reg.PaymentScreenshotURL, reg.Status, id,
	).Scan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("failed to update registration: %w", err)
	}
	return nil
}

func (r *repository) UpdateRegistrationStatusTx(ctx context.Context, id int64, newStatus string) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	query := `
		UPDATE registrations
		SET status = $1
		WHERE id = $2
		RETURNING id
	`

	var updated int64
	if err := tx.QueryRowContext(ctx, query, newStatus, id).Scan(&updated); err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("failed to update registration status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteRegistration removes the record permanently. No soft-delete, no undo.
func (r *repository) DeleteRegistration(ctx context.Context, id int64) error {
	query := `
		DELETE FROM registrations
		WHERE id = $1
		RETURNING id
	`

	var deleted int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&deleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*model.Registration, error) {
	var reg model.Registration
	var createdAt sql.NullTime
	if err := row.Scan(
		&reg.ID,
		&reg.FullName,
		&reg.Email,
		&reg.Phone,
		&reg.College,
		&reg.Year,
		&reg.Branch,
		pq.Array(&reg.Events),
		&reg.TeamMembers,
		&reg.TotalFee,
		&reg.PaymentMethod,
		&reg.PaymentScreenshotURL,
		&reg.Status,
		&createdAt,
	); err != nil {
		return nil, err
	}
	if createdAt.Valid {
		reg.Timestamp = createdAt.Time.UTC().Format(time.RFC3339)
	}
	return &reg, nil
}

func parseTimestamp(s string) sql.NullTime {
	if s == "" {
		return sql.NullTime{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
