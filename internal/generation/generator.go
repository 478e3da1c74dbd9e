// internal/generation/generator.go
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"planmytrip/internal/common/config"
	"planmytrip/internal/common/logger"
	"planmytrip/internal/common/metrics"
	"planmytrip/internal/common/observability"
	"planmytrip/internal/common/validation"
	"planmytrip/internal/models"
	"planmytrip/internal/prompt"
)

// Config bounds a single Generate call.
type Config struct {
	MaxAttempts    int
	Temperature    float64
	MaxTokens      int
	AttemptTimeout time.Duration
	RetryDelay     time.Duration
}

// ConfigFromLLM converts the loaded llm section.
func ConfigFromLLM(c config.LLMConfig) Config {
	return Config{
		MaxAttempts:    c.MaxAttempts,
		Temperature:    c.Temperature,
		MaxTokens:      c.MaxTokens,
		AttemptTimeout: config.GetDuration(c.AttemptTimeout),
		RetryDelay:     config.GetDuration(c.RetryDelay),
	}
}

type Option func(*Generator)

func WithObservability(obs *observability.Observability) Option {
	return func(g *Generator) { g.obs = obs }
}

// Generator turns a validated trip request into a schema-valid itinerary.
// It holds no per-request state and is safe for concurrent use.
type Generator struct {
	model ModelClient
	cfg   Config
	log   logger.Logger
	obs   *observability.Observability
}

func NewGenerator(model ModelClient, cfg Config, log logger.Logger, opts ...Option) *Generator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = config.DefaultMaxAttempts
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = config.GetDuration(config.DefaultAttemptTimeout)
	}
	g := &Generator{model: model, cfg: cfg, log: log}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type attemptState int

const (
	stateAttempting attemptState = iota
	stateSuccess
	stateRetryable
	stateTerminal
)

func (s attemptState) String() string {
	switch s {
	case stateAttempting:
		return "attempting"
	case stateSuccess:
		return "success"
	case stateRetryable:
		return "retryable"
	case stateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// attemptResult is the outcome of one model call plus local parse and
// validation. outcome is the metrics label.
type attemptResult struct {
	state     attemptState
	itinerary *models.Itinerary
	err       *GenerationError
	outcome   string
}

// Generate runs up to MaxAttempts sequential attempts. A definitive
// provider rejection or parent cancellation ends the loop at once;
// otherwise the last attempt's error is returned unchanged.
func (g *Generator) Generate(ctx context.Context, req models.TripRequest) (*models.Itinerary, error) {
	start := time.Now()
	instructions := prompt.Build(req)

	var last *GenerationError
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		res := g.attempt(ctx, instructions, attempt)

		switch res.state {
		case stateSuccess:
			g.observe(start, "success")
			g.log.Info("Itinerary generated", map[string]interface{}{
				"attempt":     attempt,
				"destination": req.Destination,
				"days":        len(res.itinerary.Days),
			})
			return res.itinerary, nil

		case stateTerminal:
			g.observe(start, "failed")
			return nil, res.err

		case stateRetryable:
			last = res.err
			if attempt < g.cfg.MaxAttempts && !g.wait(ctx) {
				g.observe(start, "failed")
				return nil, &GenerationError{
					Kind:       ErrModelUnavailable,
					Attempt:    attempt,
					Violations: last.Violations,
					Raw:        last.Raw,
					Err:        errors.Join(ctx.Err(), last),
				}
			}
		}
	}

	g.observe(start, "exhausted")
	g.log.Error("Itinerary generation exhausted attempts", map[string]interface{}{
		"attempts": g.cfg.MaxAttempts,
		"error":    last,
	})
	return nil, last
}

func (g *Generator) attempt(ctx context.Context, in prompt.Instructions, attempt int) attemptResult {
	ctx, span := g.obs.StartSpan(ctx, "itinerary.generate.attempt",
		attribute.Int("attempt", attempt),
		attribute.String("provider", g.model.Provider()),
	)
	defer span.End()

	res := g.run(ctx, in, attempt)

	fields := map[string]interface{}{
		"attempt":      attempt,
		"max_attempts": g.cfg.MaxAttempts,
		"outcome":      res.outcome,
		"state":        res.state.String(),
	}
	if res.err != nil {
		fields["error"] = res.err.Error()
		if len(res.err.Violations) > 0 {
			fields["violations"] = len(res.err.Violations)
		}
		span.RecordError(res.err)
		span.SetStatus(codes.Error, res.outcome)
		g.log.Warn("Itinerary generation attempt failed", fields)
	} else {
		g.log.Debug("Itinerary generation attempt succeeded", fields)
	}
	span.SetAttributes(attribute.String("outcome", res.outcome))

	metrics.GenerationAttempts.WithLabelValues(g.model.Provider(), res.outcome).Inc()
	g.obs.RecordGenerationAttempt(ctx, g.model.Provider(), res.outcome)
	return res
}

func (g *Generator) run(ctx context.Context, in prompt.Instructions, attempt int) attemptResult {
	attemptCtx, cancel := context.WithTimeout(ctx, g.cfg.AttemptTimeout)
	defer cancel()

	raw, err := g.model.Complete(attemptCtx, in.System, in.User, CompletionOptions{
		Temperature: g.cfg.Temperature,
		JSONMode:    true,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		return g.classifyCallError(ctx, attemptCtx, attempt, err)
	}

	var candidate interface{}
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &candidate); err != nil {
		return attemptResult{
			state:   stateRetryable,
			outcome: metrics.OutcomeMalformedOutput,
			err:     &GenerationError{Kind: ErrMalformedOutput, Attempt: attempt, Raw: raw, Err: err},
		}
	}

	itinerary, result := validation.ValidateItinerary(candidate)
	if !result.Valid {
		return attemptResult{
			state:   stateRetryable,
			outcome: metrics.OutcomeSchemaViolation,
			err: &GenerationError{
				Kind:       ErrSchemaViolation,
				Attempt:    attempt,
				Violations: result.Errors,
				Raw:        raw,
				Err:        fmt.Errorf("%s", strings.Join(validation.GetErrorMessages(result), "; ")),
			},
		}
	}

	return attemptResult{state: stateSuccess, outcome: metrics.OutcomeSuccess, itinerary: itinerary}
}

// classifyCallError decides whether a failed model call consumes an
// attempt or ends generation.
func (g *Generator) classifyCallError(parent, attemptCtx context.Context, attempt int, err error) attemptResult {
	genErr := &GenerationError{Kind: ErrModelUnavailable, Attempt: attempt, Err: err}

	if parent.Err() != nil {
		return attemptResult{state: stateTerminal, outcome: metrics.OutcomeCanceled, err: genErr}
	}
	if IsRejected(err) {
		return attemptResult{state: stateTerminal, outcome: metrics.OutcomeRejected, err: genErr}
	}
	var me *ModelError
	if !errors.As(err, &me) && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		genErr.Err = &ModelError{Provider: g.model.Provider(), Kind: KindTransient, Err: err}
	}
	return attemptResult{state: stateRetryable, outcome: metrics.OutcomeTransient, err: genErr}
}

func (g *Generator) wait(ctx context.Context) bool {
	if g.cfg.RetryDelay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(g.cfg.RetryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (g *Generator) observe(start time.Time, result string) {
	metrics.GenerationDuration.WithLabelValues(g.model.Provider(), result).Observe(time.Since(start).Seconds())
}

// cleanJSON strips Markdown code fences some models wrap JSON in.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
