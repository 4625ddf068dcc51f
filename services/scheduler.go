package services

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/yeremiapane/hotel-backoffice/metrics"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

const (
	JobDailyReport  = "daily_report"
	JobNoShowSweep  = "no_show_sweep"
	JobTokenCleanup = "token_cleanup"
)

// Scheduler runs the periodic back-office jobs.
type Scheduler struct {
	scheduler    gocron.Scheduler
	reports      *ReportService
	reservations *ReservationService
	tokens       utils.TokenStore
}

type scheduledJob struct {
	name string
	def  gocron.JobDefinition
	task func()
}

type SchedulerConfig struct {
	ReportCron string
	NoShowCron string
}

func NewScheduler(svc *Services, tokens utils.TokenStore, cfg SchedulerConfig) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}
	sch := &Scheduler{
		scheduler:    s,
		reports:      svc.Reports,
		reservations: svc.Reservations,
		tokens:       tokens,
	}

	jobs := []scheduledJob{
		{JobDailyReport, gocron.CronJob(cfg.ReportCron, false), func() { _ = sch.RunDailyReport() }},
		{JobNoShowSweep, gocron.CronJob(cfg.NoShowCron, false), func() { _, _ = sch.RunNoShowSweep() }},
	}
	if _, ok := tokens.(*utils.MemoryTokenStore); ok {
		jobs = append(jobs, scheduledJob{JobTokenCleanup, gocron.DurationJob(15 * time.Minute), sch.runTokenCleanup})
	}

	for _, j := range jobs {
		if _, err := s.NewJob(j.def, gocron.NewTask(j.task),
			gocron.WithName(j.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		); err != nil {
			_ = s.Shutdown()
			return nil, fmt.Errorf("schedule %s: %w", j.name, err)
		}
	}
	return sch, nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
	utils.InfoLogger.Printf("Scheduler started with %d jobs", len(s.scheduler.Jobs()))
}

func (s *Scheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}

// RunDailyReport stores yesterday's summary report.
func (s *Scheduler) RunDailyReport() error {
	report, err := s.reports.DailySummary()
	metrics.IncScheduledJob(JobDailyReport, err)
	if err != nil {
		utils.ErrorLogger.Errorf("Daily report failed: %v", err)
		return err
	}
	utils.InfoLogger.Printf("Daily report stored: %s", report.Title)
	return nil
}

// RunNoShowSweep cancels pending reservations whose arrival day has passed.
func (s *Scheduler) RunNoShowSweep() (int, error) {
	n, err := s.reservations.CancelNoShows()
	metrics.IncScheduledJob(JobNoShowSweep, err)
	if err != nil {
		utils.ErrorLogger.Errorf("No-show sweep failed: %v", err)
	}
	return n, err
}

func (s *Scheduler) runTokenCleanup() {
	store, ok := s.tokens.(*utils.MemoryTokenStore)
	if !ok {
		return
	}
	removed := store.Cleanup()
	metrics.IncScheduledJob(JobTokenCleanup, nil)
	if removed > 0 {
		utils.InfoLogger.Printf("Removed %d expired revoked tokens", removed)
	}
}
