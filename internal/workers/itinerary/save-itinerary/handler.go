// internal/workers/itinerary/save-itinerary/handler.go
package saveitinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "planmytrip/internal/common/errors"
	"planmytrip/internal/common/logger"
	"planmytrip/internal/common/validation"
	"planmytrip/internal/models"
)

const TaskType = "save-itinerary"

// Store is satisfied by *store.ItineraryStore.
type Store interface {
	Create(ctx context.Context, userID string, it models.Itinerary, startingLocation string) (*models.SavedItinerary, error)
}

// Indexer is satisfied by *store.SearchIndex. It may be nil.
type Indexer interface {
	IndexBestEffort(ctx context.Context, saved models.SavedItinerary)
}

type Handler struct {
	config  *Config
	logger  logger.Logger
	errors  *apperrors.ErrorHandler
	store   Store
	indexer Indexer
}

func NewHandler(config *Config, log logger.Logger, store Store, indexer Indexer) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		logger:  log,
		errors:  apperrors.NewErrorHandler(log),
		store:   store,
		indexer: indexer,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
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
		h.errors.HandleJobError(context.Background(), client, job, err)
		return err
	}
	return h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}
	if strings.TrimSpace(input.UserID) == "" {
		return nil, apperrors.NewInvalidInputError([]apperrors.FieldViolation{{
			Field: "userId", Message: "required field missing", Code: validation.CodeRequiredFieldMissing,
		}})
	}

	it, result := validation.ValidateItinerary(input.Itinerary)
	if !result.Valid {
		return nil, apperrors.NewItineraryInvalidError(result.ToFieldViolations())
	}

	startingLocation := input.StartingLocation
	if startingLocation == "" && input.TripRequest != nil {
		startingLocation = input.TripRequest.StartingLocation
	}

	saved, err := h.store.Create(ctx, input.UserID, *it, startingLocation)
	if err != nil {
		return nil, err
	}
	if h.indexer != nil {
		h.indexer.IndexBestEffort(ctx, *saved)
	}

	h.logger.Info("itinerary saved", map[string]interface{}{
		"itineraryId": saved.ID,
		"userId":      saved.UserID,
		"destination": saved.Destination,
	})

	return &Output{ItineraryID: saved.ID, SavedAt: saved.CreatedAt}, nil
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
