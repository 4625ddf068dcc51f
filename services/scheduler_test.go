package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

var testSchedule = SchedulerConfig{ReportCron: "5 0 * * *", NoShowCron: "0 * * * *"}

func TestNewSchedulerRejectsBadCron(t *testing.T) {
	f := newFixture(t)
	_, err := NewScheduler(f.svc, utils.NewMemoryTokenStore(), SchedulerConfig{ReportCron: "every night", NoShowCron: "0 * * * *"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), JobDailyReport)
}

func TestSchedulerJobs(t *testing.T) {
	f := newFixture(t)
	tokens := utils.NewMemoryTokenStore()
	sch, err := NewScheduler(f.svc, tokens, testSchedule)
	require.NoError(t, err)
	assert.Len(t, sch.scheduler.Jobs(), 3)
	sch.Start()
	t.Cleanup(func() { _ = sch.Shutdown() })

	stale := f.book(t, day(0), day(1))
	kept := f.book(t, day(3), day(4))
	f.clock.Advance(48 * time.Hour)

	n, err := sch.RunNoShowSweep()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	got, err := f.svc.Reservations.Get(actorOf(f.admin), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, got.Status)
	assert.Equal(t, "no-show", got.CancellationReason)
	got, err = f.svc.Reservations.Get(actorOf(f.admin), kept.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPending, got.Status)

	require.NoError(t, sch.RunDailyReport())
	reports, total, err := f.svc.Reports.List(models.ReportDailySummary, utils.Pagination{Page: 1, PerPage: 5})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "daily_summary 2026-03-11", reports[0].Title)
	var payload DailySummaryPayload
	require.NoError(t, json.Unmarshal(reports[0].Payload, &payload))
	require.NotNil(t, payload.Occupancy)
	assert.Len(t, payload.Occupancy.Daily, 1)

	require.NoError(t, tokens.Revoke(context.Background(), "expired", time.Now().Add(-time.Minute)))
	sch.runTokenCleanup()
	revoked, err := tokens.IsRevoked(context.Background(), "expired")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestSchedulerSkipsCleanupForSharedStore(t *testing.T) {
	f := newFixture(t)
	sch, err := NewScheduler(f.svc, fakeTokenStore{}, testSchedule)
	require.NoError(t, err)
	assert.Len(t, sch.scheduler.Jobs(), 2)
	require.NoError(t, sch.Shutdown())
}

type fakeTokenStore struct{}

func (fakeTokenStore) Revoke(context.Context, string, time.Time) error { return nil }

func (fakeTokenStore) IsRevoked(context.Context, string) (bool, error) { return false, nil }
