package web

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"telegram-tutoring-bot/internal/domain"
	"telegram-tutoring-bot/internal/domain/model"
	"telegram-tutoring-bot/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	return &l
}

// stubStudentRepo serves a fixed slice of records.
type stubStudentRepo struct {
	students []*model.Student
}

func (s *stubStudentRepo) Upsert(ctx context.Context, tx repository.Tx, st *model.Student) error {
	s.students = append(s.students, st)
	return nil
}

func (s *stubStudentRepo) Find(ctx context.Context, tx repository.Tx, chatID int64) (*model.Student, error) {
	for _, st := range s.students {
		if st.ChatID == chatID {
			return st, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubStudentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, chatID int64, status model.StudentStatus, joinedAt, expiresAt *time.Time, startLink string) error {
	return nil
}

func (s *stubStudentRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.StudentStatus) ([]*model.Student, error) {
	var out []*model.Student
	for _, st := range s.students {
		if st.Status == status {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *stubStudentRepo) Delete(ctx context.Context, chatID int64) error { return nil }

func (s *stubStudentRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.StudentStatus]int, error) {
	counts := make(map[model.StudentStatus]int)
	for _, st := range s.students {
		counts[st.Status]++
	}
	return counts, nil
}

func (s *stubStudentRepo) LockRow(ctx context.Context, tx repository.Tx, chatID int64) error {
	return nil
}
