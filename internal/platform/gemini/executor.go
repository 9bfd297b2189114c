package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"google.golang.org/genai"

	"github.com/skouter/recruit-api/internal/config"
	"github.com/skouter/recruit-api/internal/domain"
	"github.com/skouter/recruit-api/internal/queue"
)

// Executor runs AI task payloads against the Gemini API. It backs the
// development worker binary; production deployments run a separate worker
// service that speaks the same descriptor and callback channels.
type Executor struct {
	logger     *slog.Logger
	client     *genai.Client
	model      string
	maxRetries int
	baseDelay  time.Duration
}

// taskResult is the result document stored for a completed task.
type taskResult struct {
	Kind    domain.TaskKind `json:"kind"`
	Model   string          `json:"model"`
	Content string          `json:"content"`
}

// NewExecutor creates a new Executor with the provided configuration.
func NewExecutor(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Executor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gemini client: %v", ErrInvalidConfig, err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		logger.Warn("invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	baseDelaySeconds := cfg.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		logger.Warn("invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	return &Executor{
		logger:     logger.With(slog.String("component", "gemini_executor")),
		client:     client,
		model:      cfg.ModelName,
		maxRetries: maxRetries,
		baseDelay:  time.Duration(baseDelaySeconds) * time.Second,
	}, nil
}

// Execute runs the descriptor's payload against the model and returns the
// result document to store on completion.
func (e *Executor) Execute(ctx context.Context, descriptor queue.Descriptor) (json.RawMessage, error) {
	prompt, err := buildPrompt(descriptor)
	if err != nil {
		return nil, err
	}

	content, err := e.generateWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, err := json.Marshal(taskResult{
		Kind:    descriptor.Kind,
		Model:   e.model,
		Content: content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode result document: %w", err)
	}

	return result, nil
}

// generateWithRetry calls the Gemini API, retrying transient failures with
// exponential backoff and jitter. Safety blocks and malformed responses are
// permanent and returned immediately.
func (e *Executor) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries+1; attempt++ {
		e.logger.Info("calling gemini API",
			"attempt", attempt,
			"max_attempts", e.maxRetries+1,
			"model", e.model)

		content, err := e.generate(ctx, prompt)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if errors.Is(err, ErrContentBlocked) || errors.Is(err, ErrInvalidResponse) {
			return "", err
		}

		e.logger.Error("gemini API call failed",
			"attempt", attempt,
			"error", err)

		if attempt > e.maxRetries {
			break
		}

		// Exponential backoff with jitter.
		delay := e.baseDelay * (1 << (attempt - 1))
		delay += time.Duration(rng.Int63n(int64(e.baseDelay)))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("gemini API call failed after %d attempts: %w", e.maxRetries+1, lastErr)
}

func (e *Executor) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", ErrContentBlocked
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty content in response", ErrInvalidResponse)
	}

	return text, nil
}

// buildPrompt turns the descriptor payload into a model prompt for the
// descriptor's kind.
func buildPrompt(descriptor queue.Descriptor) (string, error) {
	switch descriptor.Kind {
	case domain.TaskKindAnalysis:
		var p domain.AnalysisPayload
		if err := json.Unmarshal(descriptor.Payload, &p); err != nil {
			return "", fmt.Errorf("failed to decode analysis payload: %w", err)
		}
		return fmt.Sprintf(
			"Perform a %s analysis of the job posting with ID %d. Respond with your findings as plain text.",
			p.AnalysisType, p.JobID), nil

	case domain.TaskKindGeneration:
		var p domain.GenerationPayload
		if err := json.Unmarshal(descriptor.Payload, &p); err != nil {
			return "", fmt.Errorf("failed to decode generation payload: %w", err)
		}
		return fmt.Sprintf(
			"Write a job description for company %d based on the following draft.\n\nDraft: %s\nRequired skills: %s\nAdditional instructions: %s",
			p.CompanyID, p.JobDescription, p.RequiredSkills, p.AdditionalInstructions), nil

	case domain.TaskKindEvaluation:
		var p domain.EvaluationPayload
		if err := json.Unmarshal(descriptor.Payload, &p); err != nil {
			return "", fmt.Errorf("failed to decode evaluation payload: %w", err)
		}
		return fmt.Sprintf(
			"Evaluate candidates for the job posting with ID %d against these criteria: %s.",
			p.JobID, p.Criteria), nil

	case domain.TaskKindChat:
		var p domain.ChatPayload
		if err := json.Unmarshal(descriptor.Payload, &p); err != nil {
			return "", fmt.Errorf("failed to decode chat payload: %w", err)
		}
		return p.Message, nil

	default:
		return "", fmt.Errorf("unsupported task kind %q", descriptor.Kind)
	}
}
