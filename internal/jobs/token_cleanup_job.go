// AngelaMos | 2026
// token_cleanup_job.go

package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	cleanupTimeout = time.Minute
	// expired refresh tokens are kept this long for reuse detection
	cleanupGrace = 7 * 24 * time.Hour
)

type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context, grace time.Duration) (int64, error)
}

// TokenCleanupJob periodically deletes refresh tokens that expired more
// than a week ago.
type TokenCleanupJob struct {
	purger   TokenPurger
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewTokenCleanupJob(
	purger TokenPurger,
	schedule string,
	logger *slog.Logger,
) *TokenCleanupJob {
	return &TokenCleanupJob{
		purger:   purger,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "token_cleanup_job"),
	}
}

func (j *TokenCleanupJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("token cleanup job started", "schedule", j.schedule)
	return nil
}

// Run performs one cleanup pass.
func (j *TokenCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	deleted, err := j.purger.PurgeExpiredTokens(ctx, cleanupGrace)
	if err != nil {
		j.logger.ErrorContext(ctx, "token cleanup failed", "error", err)
		return
	}

	j.logger.InfoContext(ctx, "expired refresh tokens purged", "deleted", deleted)
}

// Stop waits for a running pass to finish.
func (j *TokenCleanupJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("token cleanup job stopped")
}
