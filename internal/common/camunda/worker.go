// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"planmytrip/internal/common/config"
	apperrors "planmytrip/internal/common/errors"
	"planmytrip/internal/common/logger"
	"planmytrip/internal/common/metrics"
	"planmytrip/internal/common/observability"
)

// JobHandler reports the job outcome to Zeebe itself and returns the error
// it reported, or nil when the job was completed.
type JobHandler func(client worker.JobClient, job entities.Job) error

type CamundaWorker struct {
	worker   worker.JobWorker
	log      logger.Logger
	taskType string
}

func NewWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handle JobHandler,
	log logger.Logger,
	obs *observability.Observability,
) *CamundaWorker {
	maxJobs := wcfg.MaxJobsActive
	if maxJobs <= 0 {
		maxJobs = 5
	}

	step := client.NewJobWorker().
		JobType(taskType).
		Handler(instrument(taskType, handle, log, obs)).
		MaxJobsActive(maxJobs)
	if timeout := config.GetDuration(wcfg.Timeout); timeout > 0 {
		step = step.Timeout(timeout)
	}

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": maxJobs,
		"timeoutMs":     wcfg.Timeout,
	})

	return &CamundaWorker{worker: step.Open(), log: log, taskType: taskType}
}

// instrument records job metrics around handle.
func instrument(taskType string, handle JobHandler, log logger.Logger, obs *observability.Observability) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		defer active.Dec()

		err := handle(client, job)

		status := "completed"
		if err != nil {
			status = "failed"
			code := apperrors.FromError(err).Code
			metrics.WorkerJobsFailed.WithLabelValues(taskType, string(code)).Inc()
			log.Debug("job reported as failed", map[string]interface{}{
				"taskType": taskType,
				"jobKey":   job.Key,
				"code":     code,
			})
		} else {
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}

		elapsed := time.Since(start)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
		obs.RecordJobProcessed(context.Background(), status)
		obs.RecordJobDuration(context.Background(), elapsed, status)
	}
}

func (w *CamundaWorker) Stop() {
	w.log.Info("stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
	w.worker.AwaitClose()
}
