package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/repository/dao"
)

type PointsDAO interface {
	Append(ctx context.Context, entry dao.PointsLog) (dao.PointsLog, int, error)
	History(ctx context.Context, memberID uuid.UUID, limit int) ([]dao.PointsLog, error)
	Recent(ctx context.Context, limit int) ([]dao.PointsRow, error)
	Totals(ctx context.Context, since time.Time) ([]dao.PointsTotal, error)
	Sum(ctx context.Context, memberID uuid.UUID) (int, error)
}

type PointsRepository struct {
	dao PointsDAO
}

func NewPointsRepository(dao PointsDAO) *PointsRepository {
	return &PointsRepository{
		dao: dao,
	}
}

// Append records the entry and returns it with the member's new total.
func (r *PointsRepository) Append(ctx context.Context, entry domain.PointsLogEntry) (domain.PointsLogEntry, int, error) {
	created, total, err := r.dao.Append(ctx, dao.PointsLog{
		MemberID:        entry.MemberID,
		TaskDescription: entry.TaskDescription,
		ComplexityScore: entry.ComplexityScore,
		Date:            entry.Date.UTC(),
		AdminComment:    entry.AdminComment,
		CreatedBy:       entry.CreatedBy,
	})
	if err != nil {
		return domain.PointsLogEntry{}, 0, fmt.Errorf("r.dao.Append -> %w", err)
	}

	return pointsDaoToDomain(created), total, nil
}

func (r *PointsRepository) History(ctx context.Context, memberID uuid.UUID, limit int) ([]domain.PointsLogEntry, error) {
	found, err := r.dao.History(ctx, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.History -> %w", err)
	}

	entries := make([]domain.PointsLogEntry, len(found))
	for i, e := range found {
		entries[i] = pointsDaoToDomain(e)
	}

	return entries, nil
}

func (r *PointsRepository) Recent(ctx context.Context, limit int) ([]domain.PointsLogEntry, error) {
	rows, err := r.dao.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Recent -> %w", err)
	}

	entries := make([]domain.PointsLogEntry, len(rows))
	for i, row := range rows {
		entries[i] = pointsDaoToDomain(row.PointsLog)
		entries[i].MemberName = row.MemberName
	}

	return entries, nil
}

// Totals returns points and task counts per member for entries dated at or
// after since. A zero since covers the whole ledger.
func (r *PointsRepository) Totals(ctx context.Context, since time.Time) (map[uuid.UUID]domain.PointsTotal, error) {
	if !since.IsZero() {
		since = since.UTC()
	}

	found, err := r.dao.Totals(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Totals -> %w", err)
	}

	totals := make(map[uuid.UUID]domain.PointsTotal, len(found))
	for _, t := range found {
		totals[t.MemberID] = domain.PointsTotal{
			MemberID: t.MemberID,
			Points:   t.Points,
			Tasks:    t.Tasks,
		}
	}

	return totals, nil
}

func (r *PointsRepository) Sum(ctx context.Context, memberID uuid.UUID) (int, error) {
	sum, err := r.dao.Sum(ctx, memberID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.Sum -> %w", err)
	}

	return sum, nil
}

func pointsDaoToDomain(p dao.PointsLog) domain.PointsLogEntry {
	return domain.PointsLogEntry{
		ID:              p.ID,
		MemberID:        p.MemberID,
		TaskDescription: p.TaskDescription,
		ComplexityScore: p.ComplexityScore,
		Date:            p.Date,
		AdminComment:    p.AdminComment,
		CreatedBy:       p.CreatedBy,
		CreatedAt:       p.CreatedAt,
	}
}
