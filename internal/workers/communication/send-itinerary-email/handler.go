// internal/workers/communication/send-itinerary-email/handler.go
package senditineraryemail

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"planmytrip/internal/common/aws"
	apperrors "planmytrip/internal/common/errors"
	"planmytrip/internal/common/logger"
	"planmytrip/internal/common/validation"
	"planmytrip/internal/models"
	"planmytrip/internal/render"
)

const TaskType = "send-itinerary-email"

// Mailer is satisfied by *aws.SESClient.
type Mailer interface {
	Send(ctx context.Context, e aws.Email) (string, error)
}

// Users is satisfied by *store.UserStore.
type Users interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type Handler struct {
	config *Config
	logger logger.Logger
	errors *apperrors.ErrorHandler
	mailer Mailer
	users  Users
	now    func() time.Time
}

func NewHandler(config *Config, log logger.Logger, mailer Mailer, users Users) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		logger: log,
		errors: apperrors.NewErrorHandler(log),
		mailer: mailer,
		users:  users,
		now:    time.Now,
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

	it, result := validation.ValidateItinerary(input.Itinerary)
	if !result.Valid {
		return nil, apperrors.NewItineraryInvalidError(result.ToFieldViolations())
	}

	to, name, err := h.recipient(ctx, input)
	if err != nil {
		return nil, err
	}

	email := aws.Email{
		From:    h.config.FromEmail,
		To:      to,
		Subject: fmt.Sprintf("Your trip to %s: %s", it.Destination, it.Title),
		Text:    h.buildBody(name, *it, input.ItineraryID),
	}

	messageID, err := h.mailer.Send(ctx, email)
	if err != nil {
		return nil, apperrors.NewNotificationSendFailedError("email", err)
	}

	h.logger.Info("itinerary email sent", map[string]interface{}{
		"messageId":   messageID,
		"userId":      input.UserID,
		"itineraryId": input.ItineraryID,
	})

	return &Output{MessageID: messageID, SentTo: to, SentAt: h.now().UTC()}, nil
}

// recipient prefers an explicit address and falls back to the account's.
func (h *Handler) recipient(ctx context.Context, input *Input) (email, name string, err error) {
	email = strings.TrimSpace(input.Email)
	if email == "" {
		if input.UserID == "" || h.users == nil {
			return "", "", apperrors.NewInvalidInputError([]apperrors.FieldViolation{{
				Field: "email", Message: "required field missing", Code: validation.CodeRequiredFieldMissing,
			}})
		}
		user, err := h.users.GetByID(ctx, input.UserID)
		if err != nil {
			return "", "", err
		}
		email, name = user.Email, user.Name
	}

	if !validation.ValidateEmail(email) {
		return "", "", apperrors.NewInvalidInputError([]apperrors.FieldViolation{{
			Field: "email", Message: "invalid email address", Code: validation.CodeInvalidValue,
		}})
	}
	return email, name, nil
}

func (h *Handler) buildBody(name string, it models.Itinerary, itineraryID string) string {
	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "Hi %s,\n\n", name)
	} else {
		b.WriteString("Hi,\n\n")
	}
	b.WriteString("Here is the plan for your upcoming trip.\n\n")
	b.WriteString(render.Render(it).Text())

	if itineraryID != "" && h.config.ShareBaseURL != "" {
		fmt.Fprintf(&b, "\nView it online: %s/itineraries/%s\n", strings.TrimRight(h.config.ShareBaseURL, "/"), itineraryID)
	}
	b.WriteString("\nHave a great trip!\n")
	return b.String()
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
