package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

type stubAnalytics struct {
	since     time.Time
	breachAt  time.Time
	ticketErr error
}

func (s *stubAnalytics) CountRequestsByStatus(context.Context, string) (map[string]int, error) {
	return map[string]int{entity.RequestStatusDraft: 2, entity.RequestStatusApproved: 1}, nil
}

func (s *stubAnalytics) CountUnitsByStatus(context.Context, string) (map[string]int, error) {
	return map[string]int{entity.UnitStatusInStock: 5}, nil
}

func (s *stubAnalytics) CountOpenTickets(context.Context, string) (int, error) {
	return 3, s.ticketErr
}

func (s *stubAnalytics) CountSLABreaches(_ context.Context, _ string, now time.Time) (int, error) {
	s.breachAt = now
	return 1, nil
}

func (s *stubAnalytics) CountMovementsSince(_ context.Context, _ string, since time.Time) (map[string]int, error) {
	s.since = since
	return map[string]int{entity.MovementTypeOut: 4}, nil
}

func TestGetSummary(t *testing.T) {
	repo := &stubAnalytics{}
	uc := NewDashboardUseCase(repo)
	now := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }

	out, err := uc.GetSummary(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, "Febrero 2026", out.DateLabel)
	assert.Equal(t, 2, out.RequestsByStatus[entity.RequestStatusDraft])
	assert.Equal(t, 5, out.UnitsByStatus[entity.UnitStatusInStock])
	assert.Equal(t, 3, out.OpenTickets)
	assert.Equal(t, 1, out.SLABreaches)
	assert.Equal(t, 4, out.MovementsLast7Days[entity.MovementTypeOut])
	assert.True(t, repo.breachAt.Equal(now))
	assert.True(t, repo.since.Equal(now.Add(-7*24*time.Hour)))
}

func TestGetSummary_PropagaError(t *testing.T) {
	boom := errors.New("conexión cerrada")
	uc := NewDashboardUseCase(&stubAnalytics{ticketErr: boom})

	_, err := uc.GetSummary(context.Background(), "tenant-1")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "tickets abiertos")
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Enero 2027", monthLabel(time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Diciembre 2026", monthLabel(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)))
}
