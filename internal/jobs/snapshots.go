package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/fatali-fataliyev/budget_insight/internal/contextutil"
	"github.com/fatali-fataliyev/budget_insight/logging"
	"github.com/robfig/cron/v3"
)

const DefaultSnapshotSchedule = "@daily"

const snapshotTimeout = time.Minute

type SnapshotRefresher interface {
	RefreshSnapshots(ctx context.Context) error
}

// SnapshotJob rewrites the current month and year snapshots so history
// keeps up even when no transaction arrives.
type SnapshotJob struct {
	refresher SnapshotRefresher
}

func NewSnapshotJob(refresher SnapshotRefresher) *SnapshotJob {
	return &SnapshotJob{refresher: refresher}
}

func (j *SnapshotJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	if err := j.RunContext(ctx); err != nil {
		logging.WithTrace(ctx).Errorf("snapshot refresh failed: %v", err)
	}
}

func (j *SnapshotJob) RunContext(ctx context.Context) error {
	ctx = contextutil.WithTraceID(ctx, "")
	started := time.Now()

	if err := j.refresher.RefreshSnapshots(ctx); err != nil {
		return fmt.Errorf("failed to refresh snapshots: %w", err)
	}
	logging.WithTrace(ctx).Infof("snapshots refreshed in %s", time.Since(started).Round(time.Millisecond))
	return nil
}

// RegisterSnapshotJob schedules the snapshot refresh on c. An empty spec
// uses DefaultSnapshotSchedule.
func RegisterSnapshotJob(c *cron.Cron, spec string, refresher SnapshotRefresher) (cron.EntryID, error) {
	if spec == "" {
		spec = DefaultSnapshotSchedule
	}
	id, err := c.AddJob(spec, NewSnapshotJob(refresher))
	if err != nil {
		return 0, fmt.Errorf("failed to schedule snapshot job '%s': %w", spec, err)
	}
	return id, nil
}
