// internal/workers/planning/generate-itinerary/handler.go
package generateitinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "planmytrip/internal/common/errors"
	"planmytrip/internal/common/logger"
	"planmytrip/internal/common/validation"
	"planmytrip/internal/models"
)

const TaskType = "generate-itinerary"

// Generator is satisfied by *generation.Generator.
type Generator interface {
	Generate(ctx context.Context, req models.TripRequest) (*models.Itinerary, error)
}

type Handler struct {
	config    *Config
	logger    logger.Logger
	errors    *apperrors.ErrorHandler
	generator Generator
	now       func() time.Time
}

func NewHandler(config *Config, log logger.Logger, generator Generator) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		logger:    log,
		errors:    apperrors.NewErrorHandler(log),
		generator: generator,
		now:       time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
		"retries":     job.Retries,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		stdErr := apperrors.NewInvalidInputError([]apperrors.FieldViolation{{
			Field: "(root)", Message: fmt.Sprintf("parse input: %v", err), Code: validation.CodeInvalidType,
		}})
		h.errors.HandleJobError(context.Background(), client, job, stdErr)
		return stdErr
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		// A transient MODEL_UNAVAILABLE fails the job with retries left. A
		// provider rejection, malformed output and schema-violating output
		// are thrown so the process can end the trip.
		h.errors.HandleJobError(context.Background(), client, job, err)
		return err
	}
	return h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}

	req, result := validation.ValidateTripRequest(input.TripRequest)
	if !result.Valid {
		return nil, apperrors.NewTripRequestInvalidError(result.ToFieldViolations())
	}

	it, err := h.generator.Generate(ctx, *req)
	if err != nil {
		return nil, err
	}

	h.logger.Info("itinerary generated", map[string]interface{}{
		"destination": req.Destination,
		"days":        len(it.Days),
		"activities":  it.ActivityCount(),
	})

	return &Output{
		Itinerary:   *it,
		Destination: req.Destination,
		GeneratedAt: h.now().UTC(),
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return err
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
		return err
	}
	return nil
}
