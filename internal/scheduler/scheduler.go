package scheduler

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"immoeliza/server/config"
	"immoeliza/server/internal/models"
)

// CleaningRunner is the part of the runner the scheduler drives
type CleaningRunner interface {
	Run() (*models.RunReport, error)
}

// Scheduler manages periodic execution of cleaning runs
type Scheduler struct {
	runner       CleaningRunner
	logger       *logrus.Logger
	interval     time.Duration
	runOnStartup bool
	stopChan     chan struct{}
	wg           sync.WaitGroup
	jobMutex     sync.Mutex // Ensures sequential run execution
}

// NewScheduler creates a new scheduler
func NewScheduler(runner CleaningRunner, cfg *config.Config, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		runner:       runner,
		logger:       logger,
		interval:     time.Duration(cfg.Schedule.IntervalHours) * time.Hour,
		runOnStartup: cfg.Schedule.RunOnStartup,
		stopChan:     make(chan struct{}),
	}
}

// Start begins the scheduled cleaning runs
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

// runScheduler handles the startup run and the periodic ticker
func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	if s.runOnStartup {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.executeRun("startup")
		}()
	}

	if s.interval <= 0 {
		s.logger.Info("Periodic cleaning runs are disabled")
		<-s.stopChan
		return
	}

	s.logger.WithField("interval", s.interval.String()).Info("Scheduling periodic cleaning runs")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.executeRun("interval")
		}
	}
}

// executeRun performs a single cleaning run, one at a time
func (s *Scheduler) executeRun(trigger string) {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	s.logger.WithField("trigger", trigger).Info("Starting scheduled cleaning run")

	report, err := s.runner.Run()
	if err != nil {
		s.logger.WithError(err).WithField("trigger", trigger).Error("Scheduled cleaning run failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"trigger":  trigger,
		"run_id":   report.ID,
		"rows_out": report.RowsOut,
	}).Info("Scheduled cleaning run completed")
}

// Stop gracefully stops the scheduler and waits for in-flight runs
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
