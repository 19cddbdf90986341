// AngelaMos | 2026
// job_manager.go

package jobs

import (
	"fmt"
	"log/slog"

	"github.com/carterperez-dev/bakery-orders/internal/config"
)

type Job interface {
	Start() error
	Stop()
}

// JobManager starts and stops the scheduled jobs enabled in config.
type JobManager struct {
	jobs    []namedJob
	started []namedJob
}

type namedJob struct {
	name string
	job  Job
}

func NewJobManager(
	cfg config.JobsConfig,
	purger TokenPurger,
	logger *slog.Logger,
) *JobManager {
	jm := &JobManager{}

	if cfg.TokenCleanupEnabled {
		jm.jobs = append(jm.jobs, namedJob{
			name: "token cleanup",
			job:  NewTokenCleanupJob(purger, cfg.TokenCleanupSchedule, logger),
		})
	}

	return jm
}

// StartAll starts every job. If one fails, the ones already started are
// stopped again.
func (jm *JobManager) StartAll() error {
	for _, nj := range jm.jobs {
		if err := nj.job.Start(); err != nil {
			jm.StopAll()
			return fmt.Errorf("start %s job: %w", nj.name, err)
		}
		jm.started = append(jm.started, nj)
	}
	return nil
}

func (jm *JobManager) StopAll() {
	for _, nj := range jm.started {
		nj.job.Stop()
	}
	jm.started = nil
}
