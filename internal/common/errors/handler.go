// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler reports worker failures back to Zeebe: retryable codes fail
// the job with a retry budget, everything else is thrown as a BPMN error so
// the process can route on it.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// JobDecision is what HandleJobError does with a failed job.
type JobDecision struct {
	Throw   bool
	Retries int32
}

// Decide picks between failing with retries and throwing. The retry budget
// never exceeds what Zeebe has left on the job.
func Decide(stdErr *StandardError, jobRetries int32) JobDecision {
	retries := int32(GetRetryCount(stdErr.Code))
	if !stdErr.Retryable || retries == 0 || jobRetries <= 0 {
		return JobDecision{Throw: true}
	}
	if jobRetries-1 < retries {
		retries = jobRetries - 1
	}
	return JobDecision{Retries: retries}
}

// HandleJobError normalizes err and reports it for job.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := FromError(err)
	bpmnErr := ConvertToBPMNError(stdErr)
	decision := Decide(stdErr, job.Retries)

	h.logError(job, stdErr, bpmnErr, decision)

	if decision.Throw {
		h.throwBPMNError(ctx, client, job, bpmnErr)
		return
	}
	h.failJobWithRetries(ctx, client, job, bpmnErr, decision.Retries)
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int32) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(bpmnErr.Message)

	var err error
	if vars, ok := encodeVariables(bpmnErr); ok {
		if withVars, verr := cmd.VariablesFromString(vars); verr == nil {
			_, err = withVars.Send(ctx)
			h.logSendError(job, err)
			return
		}
	}
	_, err = cmd.Send(ctx)
	h.logSendError(job, err)
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	var err error
	if vars, ok := encodeVariables(bpmnErr); ok {
		if withVars, verr := cmd.VariablesFromString(vars); verr == nil {
			_, err = withVars.Send(ctx)
			h.logSendError(job, err)
			return
		}
	}
	_, err = cmd.Send(ctx)
	h.logSendError(job, err)
}

func (h *ErrorHandler) logSendError(job entities.Job, err error) {
	if err != nil {
		h.logger.Error("failed to report job failure", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func encodeVariables(bpmnErr *BPMNError) (string, bool) {
	data, err := json.Marshal(bpmnErr.ToErrorVariables())
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError, decision JobDecision) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"thrown":           decision.Throw,
		"retries":          decision.Retries,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
