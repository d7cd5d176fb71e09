package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"newsapp-summarizer/internal/logging"
)

const (
	PruneHistorySpec = "0 3 * * *"
	pruneTimeout     = 5 * time.Minute
)

type historyPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler prunes category history past its retention window once a day.
type Scheduler struct {
	ctx       context.Context
	cron      *cron.Cron
	history   historyPruner
	retention time.Duration
	now       func() time.Time
}

func New(ctx context.Context, history historyPruner, retentionDays int) *Scheduler {
	return &Scheduler{
		ctx:       ctx,
		cron:      cron.New(cron.WithLocation(time.UTC)),
		history:   history,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(PruneHistorySpec, s.pruneHistory); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) pruneHistory() {
	ctx, cancel := context.WithTimeout(s.ctx, pruneTimeout)
	defer cancel()

	log := logging.GetLogger()
	cutoff := s.now().Add(-s.retention)

	deleted, err := s.history.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.WithError(err).Error("Failed to prune category history")
		return
	}

	log.WithFields(logrus.Fields{
		"deleted": deleted,
		"cutoff":  cutoff.Format(time.RFC3339),
	}).Info("Category history pruned")
}
