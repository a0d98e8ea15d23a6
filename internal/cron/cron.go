package cron

import (
	"context"
	"time"

	"github.com/linskybing/fundraise-go/internal/application"
	"github.com/linskybing/fundraise-go/internal/picker"
	"github.com/linskybing/fundraise-go/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Jobs groups the periodic housekeeping of the fundraise service.
type Jobs struct {
	Screens       *application.ScreenRegistry
	Fundraise     *application.FundraiseService
	Stage         *picker.Stage
	StagingTTL    time.Duration
	RetentionDays int
	now           func() time.Time
}

// EvictIdleScreens drops screens nobody touched within the idle TTL.
func (j *Jobs) EvictIdleScreens() {
	j.Screens.EvictIdle(j.clock())
}

// SweepStaging removes staged images older than the staging TTL. Images
// still referenced by a live screen are younger than the idle TTL, which is
// expected to be shorter.
func (j *Jobs) SweepStaging() {
	n, err := j.Stage.Sweep(j.StagingTTL, j.clock())
	if err != nil {
		logger.WithError(err).Warn("Failed to sweep staging dir")
		return
	}
	if n > 0 {
		logger.Log.WithField("removed", n).Info("Swept staged images")
	}
}

func (j *Jobs) CleanupAuditLogs() {
	n, err := j.Fundraise.CleanupOldAuditLogs(context.Background(), j.RetentionDays)
	if err != nil {
		logger.WithError(err).Error("Failed to cleanup old audit logs")
		return
	}
	logger.Log.WithField("deleted", n).Info("Audit log cleanup completed successfully")
}

func (j *Jobs) clock() time.Time {
	if j.now != nil {
		return j.now()
	}
	return time.Now()
}

// Start schedules the jobs and returns the running scheduler; callers stop
// it on shutdown. The audit cleanup also runs once immediately.
func Start(j *Jobs, sweepSchedule string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{})), cron.WithLogger(cronLogger{}))

	if _, err := c.AddFunc(sweepSchedule, j.EvictIdleScreens); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc(sweepSchedule, j.SweepStaging); err != nil {
		return nil, err
	}
	if j.RetentionDays > 0 {
		if _, err := c.AddFunc("@daily", j.CleanupAuditLogs); err != nil {
			return nil, err
		}
		go j.CleanupAuditLogs()
	}

	logger.Log.WithField("retention_days", j.RetentionDays).Info("Starting background cleanup tasks")
	c.Start()
	return c, nil
}

// cronLogger routes scheduler diagnostics through logrus.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Log.WithFields(kvFields(keysAndValues)).Debug(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.WithError(err).WithFields(kvFields(keysAndValues)).Error(msg)
}

func kvFields(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			fields[k] = kv[i+1]
		}
	}
	return fields
}
