package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"registrations/internal/model"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrPasswordIncorrect    = errors.New("password incorrect")
	ErrConflict             = errors.New("conflicting state")
)

type Repository interface {
	CreateRegistration(ctx context.Context, reg *model.Registration) (int64, error)
	GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error)
	GetRegistrationsByEvent(ctx context.Context, eventID int64, page, size int) ([]model.Registration, error)
	UpdateRegistrationTx(ctx context.Context, upd *model.RegistrationUpdate) (*model.Registration, error)
	DeleteRegistrationTx(ctx context.Context, id int64, password string) error
	UpdateStatusTx(ctx context.Context, id int64, password, status string) error
	DeclineRegistrationTx(ctx context.Context, id int64, password, reason string) error
	SearchByStatusesAndEvent(ctx context.Context, eventID int64, statuses []string) ([]model.Registration, error)
	CountByStatusForEvent(ctx context.Context, eventID int64) (map[string]int64, error)
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
		sqlBytes, err := os.ReadFile(file)
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
		sqlBytes, err := os.ReadFile(file)
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
		INSERT INTO registrations (event_id, author_id, username, email, phone, password, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at
	`

	row := r.db.QueryRowContext(ctx, query,
		reg.EventID, reg.AuthorID, reg.Username, reg.Email, reg.Phone, reg.Password, reg.Status,
	)

	if err := row.Scan(&reg.ID, &reg.CreatedAt); err != nil {
		if isIntegrityViolation(err) {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("failed to insert registration: %w", err)
	}
	return reg.ID, nil
}

func (r *repository) GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error) {
	query := `
		SELECT id, event_id, author_id, username, email, phone, password, status, created_at, updated_at
		FROM registrations
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var reg model.Registration
	if err := scanRegistration(row, &reg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return &reg, nil
}

func (r *repository) GetRegistrationsByEvent(ctx context.Context, eventID int64, page, size int) ([]model.Registration, error) {
	query := `
		SELECT id, event_id, author_id, username, email, phone, password, status, created_at, updated_at
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, eventID, size, page*size)
	if err != nil {
		return nil, fmt.Errorf("failed to get registrations: %w", err)
	}
	defer rows.Close()

	return collectRegistrations(rows)
}

// UpdateRegistrationTx applies a partial update in a single transaction.
// The row is locked before the password compare, so the check and the
// mutation are not interleavable. Nil fields keep their stored value.
func (r *repository) UpdateRegistrationTx(ctx context.Context, upd *model.RegistrationUpdate) (*model.Registration, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := checkPassword(ctx, tx, upd.ID, upd.Password); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	query := `
		UPDATE registrations
		SET username = COALESCE($2, username),
		    email = COALESCE($3, email),
		    phone = COALESCE($4, phone),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, event_id, author_id, username, email, phone, password, status, created_at, updated_at
	`

	var reg model.Registration
	row := tx.QueryRowContext(ctx, query, upd.ID, upd.Username, upd.Email, upd.Phone)
	if err := scanRegistration(row, &reg); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to update registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &reg, nil
}

func (r *repository) DeleteRegistrationTx(ctx context.Context, id int64, password string) error {
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

	if err := checkPassword(ctx, tx, id, password); err != nil {
		_ = tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM declined_registrations WHERE registration_id = $1`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete decline reason: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *repository) UpdateStatusTx(ctx context.Context, id int64, password, status string) error {
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

	if err := checkPassword(ctx, tx, id, password); err != nil {
		_ = tx.Rollback()
		return err
	}

	query := `
		UPDATE registrations
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`
	if _, err := tx.ExecContext(ctx, query, status, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to update registration status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *repository) DeclineRegistrationTx(ctx context.Context, id int64, password, reason string) error {
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

	if err := checkPassword(ctx, tx, id, password); err != nil {
		_ = tx.Rollback()
		return err
	}

	queryStatus := `
		UPDATE registrations
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`
	if _, err := tx.ExecContext(ctx, queryStatus, model.StatusDeclined, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to set declined status: %w", err)
	}

	queryReason := `
		INSERT INTO declined_registrations (registration_id, reason, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (registration_id) DO UPDATE SET reason = EXCLUDED.reason
	`
	if _, err := tx.ExecContext(ctx, queryReason, id, reason); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to store decline reason: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *repository) SearchByStatusesAndEvent(ctx context.Context, eventID int64, statuses []string) ([]model.Registration, error) {
	query := `
		SELECT id, event_id, author_id, username, email, phone, password, status, created_at, updated_at
		FROM registrations
		WHERE event_id = $1 AND status = ANY($2)
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, eventID, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("failed to search registrations: %w", err)
	}
	defer rows.Close()

	return collectRegistrations(rows)
}

func (r *repository) CountByStatusForEvent(ctx context.Context, eventID int64) (map[string]int64, error) {
	query := `
		SELECT status, COUNT(*)
		FROM registrations
		WHERE event_id = $1
		GROUP BY status
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read count rows: %w", err)
	}

	return counts, nil
}

// checkPassword locks the target row and compares the stored credential.
// Returns ErrRegistrationNotFound or ErrPasswordIncorrect; the caller owns
// the transaction either way.
func checkPassword(ctx context.Context, tx *sql.Tx, id int64, password string) error {
	var stored string
	query := `
		SELECT password
		FROM registrations
		WHERE id = $1
		FOR UPDATE
	`
	if err := tx.QueryRowContext(ctx, query, id).Scan(&stored); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("failed to select registration: %w", err)
	}
	if stored != password {
		return ErrPasswordIncorrect
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner, reg *model.Registration) error {
	return row.Scan(
		&reg.ID,
		&reg.EventID,
		&reg.AuthorID,
		&reg.Username,
		&reg.Email,
		&reg.Phone,
		&reg.Password,
		&reg.Status,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
}

func collectRegistrations(rows *sql.Rows) ([]model.Registration, error) {
	regs := make([]model.Registration, 0)
	for rows.Next() {
		var reg model.Registration
		if err := scanRegistration(rows, &reg); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read registration rows: %w", err)
	}
	return regs, nil
}

func isIntegrityViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Class() == "23"
}
