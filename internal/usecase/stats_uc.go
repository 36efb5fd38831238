package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-tutoring-bot/internal/domain/model"
	"telegram-tutoring-bot/internal/domain/ports/repository"
	"telegram-tutoring-bot/internal/infra/metrics"
)

// StatsUseCase aggregates record counts for the admin API and the status
// gauge metric.
type StatsUseCase struct {
	students repository.StudentRepository
	log      *zerolog.Logger
}

func NewStatsUseCase(students repository.StudentRepository, logger *zerolog.Logger) *StatsUseCase {
	ucLog := logger.With().Str("component", "StatsUC").Logger()
	return &StatsUseCase{students: students, log: &ucLog}
}

func (uc *StatsUseCase) CountByStatus(ctx context.Context) (map[model.StudentStatus]int, error) {
	counts, err := uc.students.CountByStatus(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	metrics.SetStudentsTotal(counts)
	return counts, nil
}

func (uc *StatsUseCase) ListByStatus(ctx context.Context, status model.StudentStatus) ([]*model.Student, error) {
	return uc.students.ListByStatus(ctx, repository.NoTX, status)
}
