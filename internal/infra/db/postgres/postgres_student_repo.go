package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-tutoring-bot/internal/domain"
	"telegram-tutoring-bot/internal/domain/model"
	"telegram-tutoring-bot/internal/domain/ports/repository"
)

// Ensure studentRepo implements repository.StudentRepository
var _ repository.StudentRepository = (*studentRepo)(nil)

type studentRepo struct {
	pool *pgxpool.Pool
}

func NewStudentRepo(pool *pgxpool.Pool) *studentRepo {
	return &studentRepo{pool: pool}
}

const studentColumns = `chat_id, name, grade, exam_info, subjects, parent_phone, weekly_schedule, plan, target, status, joined_at, expires_at, receipt_file_id, start_link`

func (r *studentRepo) Upsert(ctx context.Context, tx repository.Tx, s *model.Student) error {
	if s.IsZero() {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO students (` + studentColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (chat_id) DO UPDATE SET
  name=$2, grade=$3, exam_info=$4, subjects=$5, parent_phone=$6,
  weekly_schedule=$7, plan=$8, target=$9, status=$10,
  joined_at=$11, expires_at=$12, receipt_file_id=$13, start_link=$14;`

	_, err := execSQL(ctx, r.pool, tx, q,
		s.ChatID, s.Name, s.Grade, s.ExamInfo, s.Subjects, s.ParentPhone,
		s.WeeklySchedule, string(s.Plan), s.Target, string(s.Status),
		s.JoinedAt, s.ExpiresAt, s.ReceiptFileID, s.StartLink)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *studentRepo) Find(ctx context.Context, tx repository.Tx, chatID int64) (*model.Student, error) {
	const q = `SELECT ` + studentColumns + ` FROM students WHERE chat_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, chatID)
	if err != nil {
		return nil, err
	}
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

func (r *studentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, chatID int64, status model.StudentStatus, joinedAt, expiresAt *time.Time, startLink string) error {
	const q = `
UPDATE students
   SET status=$2,
       joined_at=COALESCE($3, joined_at),
       expires_at=COALESCE($4, expires_at),
       start_link=CASE WHEN $5 <> '' THEN $5 ELSE start_link END
 WHERE chat_id=$1;`

	tag, err := execSQL(ctx, r.pool, tx, q, chatID, string(status), joinedAt, expiresAt, startLink)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return err
		default:
			return domain.ErrOperationFailed
		}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *studentRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.StudentStatus) ([]*model.Student, error) {
	const q = `SELECT ` + studentColumns + `
  FROM students
 WHERE status=$1
 ORDER BY chat_id ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, string(status))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, nil
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidExecContext):
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()
	var out []*model.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *studentRepo) Delete(ctx context.Context, chatID int64) error {
	const q = `DELETE FROM students WHERE chat_id=$1;`
	if _, err := execSQL(ctx, r.pool, repository.NoTX, q, chatID); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

// CountByStatus powers the admin stats endpoint and the status gauge.
func (r *studentRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.StudentStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM students GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	m := make(map[model.StudentStatus]int)
	for rows.Next() {
		var status string
		var c int
		if err := rows.Scan(&status, &c); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		m[model.StudentStatus(status)] = c
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return m, nil
}

// LockRow takes the per-student advisory lock inside the current transaction.
// All lifecycle mutations for one chat run behind it, so an approval and an
// expiry sweep can never interleave on the same row.
func (r *studentRepo) LockRow(ctx context.Context, tx repository.Tx, chatID int64) error {
	_, err := execSQL(ctx, r.pool, tx, `SELECT pg_advisory_xact_lock($1)`, chatID)
	return err
}

func scanStudent(row pgx.Row) (*model.Student, error) {
	var s model.Student
	var plan, status string
	err := row.Scan(&s.ChatID, &s.Name, &s.Grade, &s.ExamInfo, &s.Subjects,
		&s.ParentPhone, &s.WeeklySchedule, &plan, &s.Target, &status,
		&s.JoinedAt, &s.ExpiresAt, &s.ReceiptFileID, &s.StartLink)
	if err != nil {
		return nil, err
	}
	s.Plan = model.Plan(plan)
	s.Status = model.StudentStatus(status)
	return &s, nil
}
