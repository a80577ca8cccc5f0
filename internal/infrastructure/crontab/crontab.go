package crontab

import (
	"context"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"

	"policylens/services/chat-api/internal/config"
	"policylens/services/chat-api/internal/domain/metasummary"
)

// CronJobTimeout bounds each scheduled job execution.
const CronJobTimeout = 10 * time.Minute

// Crontab schedules the periodic meta-summary refresh sweep.
type Crontab struct {
	ctab      *crontab.Crontab
	cfg       *config.Config
	summaries *metasummary.Service
	log       zerolog.Logger
}

func New(cfg *config.Config, summaries *metasummary.Service, log zerolog.Logger) *Crontab {
	return &Crontab{
		ctab:      crontab.New(),
		cfg:       cfg,
		summaries: summaries,
		log:       log.With().Str("component", "crontab").Logger(),
	}
}

// Run registers the jobs and blocks until the context is cancelled.
func (c *Crontab) Run(ctx context.Context) error {
	if err := c.ctab.AddJob(c.cfg.SummarySweepSpec, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
		defer cancel()
		c.sweepStaleSummaries(jobCtx)
	}); err != nil {
		return err
	}
	c.log.Info().Str("spec", c.cfg.SummarySweepSpec).Msg("meta-summary sweep scheduled")

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

func (c *Crontab) sweepStaleSummaries(ctx context.Context) {
	refreshed := c.summaries.RefreshStale(ctx)
	if refreshed > 0 {
		c.log.Info().Int("refreshed", refreshed).Msg("refreshed stale meta-summaries")
	}
}
