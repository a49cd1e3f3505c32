package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/praylude/internal/domain"
)

// CustomSessionRepository implements domain.CustomSessionRepository using SQLite.
type CustomSessionRepository struct {
	db *sql.DB
}

// NewCustomSessionRepository creates a new SQLite-backed CustomSessionRepository.
func NewCustomSessionRepository(db *DB) *CustomSessionRepository {
	return &CustomSessionRepository{db: db.SqlDB}
}

func (r *CustomSessionRepository) Create(ctx context.Context, session *domain.CustomSession) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO custom_sessions (device_id, name, description, total_duration, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		session.DeviceID, session.Name, session.Description, session.TotalDuration, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert custom session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get custom session id: %w", err)
	}

	for _, step := range session.Steps {
		var techniqueID sql.NullString
		if step.TechniqueID != nil {
			techniqueID = sql.NullString{String: *step.TechniqueID, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO custom_session_steps (custom_session_id, sort_order, section_id, technique_id, duration)
			 VALUES (?, ?, ?, ?, ?)`,
			id, step.Order, step.SectionID, techniqueID, step.Duration,
		); err != nil {
			return fmt.Errorf("insert custom session step: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	session.ID = id
	session.CreatedAt = now
	session.UpdatedAt = now
	return nil
}

func (r *CustomSessionRepository) GetByID(ctx context.Context, id int64) (*domain.CustomSession, error) {
	s := &domain.CustomSession{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, device_id, name, description, total_duration, created_at, updated_at
		 FROM custom_sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.DeviceID, &s.Name, &s.Description, &s.TotalDuration, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get custom session: %w", err)
	}

	steps, err := r.loadSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Steps = steps
	return s, nil
}

func (r *CustomSessionRepository) ListByDevice(ctx context.Context, deviceID string) ([]domain.CustomSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device_id, name, description, total_duration, created_at, updated_at
		 FROM custom_sessions WHERE device_id = ? ORDER BY created_at DESC, id DESC`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("list custom sessions: %w", err)
	}

	var sessions []domain.CustomSession
	for rows.Next() {
		var s domain.CustomSession
		if err := rows.Scan(&s.ID, &s.DeviceID, &s.Name, &s.Description, &s.TotalDuration, &s.CreatedAt, &s.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan custom session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// Release the single connection before loading steps.
	rows.Close()

	for i := range sessions {
		steps, err := r.loadSteps(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Steps = steps
	}
	return sessions, nil
}

func (r *CustomSessionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM custom_sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete custom session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CustomSessionRepository) loadSteps(ctx context.Context, sessionID int64) ([]domain.CustomStep, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT sort_order, section_id, technique_id, duration
		 FROM custom_session_steps WHERE custom_session_id = ? ORDER BY sort_order`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list custom session steps: %w", err)
	}
	defer rows.Close()

	var steps []domain.CustomStep
	for rows.Next() {
		var (
			step        domain.CustomStep
			techniqueID sql.NullString
		)
		if err := rows.Scan(&step.Order, &step.SectionID, &techniqueID, &step.Duration); err != nil {
			return nil, fmt.Errorf("scan custom session step: %w", err)
		}
		if techniqueID.Valid {
			id := techniqueID.String
			step.TechniqueID = &id
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}
