package scheduler

import (
	"context"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/airtrack/internal/service/refresh"
	"github.com/airtrack/pkg/logger"
)

// Scheduler drives the periodic background refresh. The cron entry is
// registered before the first job body ever runs, so a long or killed pass
// never prevents the next trigger.
type Scheduler struct {
	cron    *cron.Cron
	refresh *refresh.Service
	mu      sync.Mutex
	running bool
}

func New(refreshService *refresh.Service) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		refresh: refreshService,
	}
}

// Start begins the scheduled refresh job.
func (s *Scheduler) Start(cronExpr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	// The parser wants six fields (with seconds). Standard five-field
	// expressions run at second zero; six-field ones pass through, and
	// anything else fails parsing below.
	spec := cronExpr
	if len(strings.Fields(cronExpr)) == 5 {
		spec = "0 " + cronExpr
	}

	_, err := s.cron.AddFunc(spec, func() {
		s.runRefresh()
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.running = true

	logger.Infof("Scheduler: %s", cronExpr)

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
}

// RunNow triggers an immediate API refresh in the background.
func (s *Scheduler) RunNow() {
	go s.runRefresh()
}

// RunFullRefreshNow triggers an immediate forced refresh in the background.
func (s *Scheduler) RunFullRefreshNow() {
	go s.refresh.ForceRefreshAll(context.Background())
}

func (s *Scheduler) runRefresh() {
	if s.refresh == nil {
		return
	}
	s.refresh.RefreshWithAPIData(context.Background())
}

// IsRunning returns whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
