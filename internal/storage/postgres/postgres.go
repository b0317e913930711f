package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"vani-service/internal/models"
	"vani-service/pkg/response"

	"github.com/lib/pq"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// #### query path ####

func (s *Storage) DistinctDoctors(ctx context.Context) ([]string, error) {
	const op = "storage.postgres.DistinctDoctors"

	return s.distinctColumn(ctx, op, `SELECT DISTINCT doctor_name FROM schedule`)
}

func (s *Storage) DistinctDepartments(ctx context.Context) ([]string, error) {
	const op = "storage.postgres.DistinctDepartments"

	return s.distinctColumn(ctx, op, `SELECT DISTINCT department FROM schedule`)
}

func (s *Storage) distinctColumn(ctx context.Context, op, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		values = append(values, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return values, nil
}

func (s *Storage) ListAll(ctx context.Context) ([]models.ScheduleEntry, error) {
	const op = "storage.postgres.ListAll"

	return s.listEntries(ctx, op,
		`SELECT id, doctor_name, department, day, schedule_time, current_status
		FROM schedule ORDER BY id`)
}

func (s *Storage) ListByDoctor(ctx context.Context, doctorName string) ([]models.ScheduleEntry, error) {
	const op = "storage.postgres.ListByDoctor"

	return s.listEntries(ctx, op,
		`SELECT id, doctor_name, department, day, schedule_time, current_status
		FROM schedule WHERE doctor_name=$1 ORDER BY id`, doctorName)
}

func (s *Storage) ListByDepartment(ctx context.Context, department string) ([]models.ScheduleEntry, error) {
	const op = "storage.postgres.ListByDepartment"

	return s.listEntries(ctx, op,
		`SELECT id, doctor_name, department, day, schedule_time, current_status
		FROM schedule WHERE department=$1 ORDER BY id`, department)
}

func (s *Storage) listEntries(ctx context.Context, op, query string, args ...any) ([]models.ScheduleEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var entries []models.ScheduleEntry
	for rows.Next() {
		var entry models.ScheduleEntry
		err := rows.Scan(
			&entry.ID,
			&entry.DoctorName,
			&entry.Department,
			&entry.Day,
			&entry.ScheduleTime,
			&entry.CurrentStatus,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entries, nil
}

// Overview returns one row per doctor for the system prompt.
func (s *Storage) Overview(ctx context.Context) ([]models.DoctorOverview, error) {
	const op = "storage.postgres.Overview"

	rows, err := s.db.QueryContext(ctx,
		`SELECT doctor_name, department FROM schedule
		GROUP BY doctor_name, department ORDER BY doctor_name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var overview []models.DoctorOverview
	for rows.Next() {
		var doc models.DoctorOverview
		if err := rows.Scan(&doc.DoctorName, &doc.Department); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		overview = append(overview, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return overview, nil
}

// #### mutation path ####

// UpdateStatusAllDays sets current_status on every row for the doctor and
// returns how many rows changed. Callers pass the resolved canonical name,
// never the raw query.
func (s *Storage) UpdateStatusAllDays(ctx context.Context, doctorName, status string) (int64, error) {
	const op = "storage.postgres.UpdateStatusAllDays"

	res, err := s.db.ExecContext(ctx,
		`UPDATE schedule SET current_status=$1 WHERE doctor_name=$2`,
		status, doctorName)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

func (s *Storage) UpdateStatusForDay(ctx context.Context, doctorName, day, status string) (int64, error) {
	const op = "storage.postgres.UpdateStatusForDay"

	res, err := s.db.ExecContext(ctx,
		`UPDATE schedule SET current_status=$1 WHERE doctor_name=$2 AND day=$3`,
		status, doctorName, day)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

// ReplaceAll swaps the whole table for the given rows in one transaction.
// This is the admin grid's save semantics: the grid is the source of truth
// for structural changes, so rows it no longer contains are gone.
func (s *Storage) ReplaceAll(ctx context.Context, entries []models.ScheduleEntry) error {
	const op = "storage.postgres.ReplaceAll"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule`); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(entries) > 0 {
		placeholders := make([]string, 0, len(entries))
		args := make([]any, 0, len(entries)*5)

		for i, entry := range entries {
			base := i * 5
			placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
				base+1, base+2, base+3, base+4, base+5))
			args = append(args,
				entry.DoctorName,
				entry.Department,
				entry.Day,
				entry.ScheduleTime,
				entry.CurrentStatus,
			)
		}

		query := fmt.Sprintf(`
			INSERT INTO schedule (doctor_name, department, day, schedule_time, current_status)
			VALUES %s`,
			strings.Join(placeholders, ","),
		)

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			sqlErr, ok := err.(*pq.Error)
			if ok && sqlErr.Code == "23502" {
				return fmt.Errorf("%s: %w", op, response.ErrBadRequest)
			}

			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}
