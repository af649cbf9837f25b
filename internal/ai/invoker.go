package ai

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/suPer8Hu/client-portal/internal/apperr"
	"github.com/suPer8Hu/client-portal/internal/logger"
)

// Generator is the text generation capability the domain services depend on.
type Generator interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	GenerateStructured(ctx context.Context, req StructuredRequest, out any) error
}

type TextRequest struct {
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	JSON        bool
}

type StructuredRequest struct {
	System string
	User   string
	// SchemaHint is an example of the expected JSON object, appended to the
	// user prompt.
	SchemaHint  string
	Temperature float64
	MaxTokens   int
}

// DecodeError is returned when structured output is not valid JSON for the
// target. It matches apperr.ErrGenerationFailed and keeps the raw text.
type DecodeError struct {
	Raw string
	Err error
}

func (e *DecodeError) Error() string        { return "decode structured response: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error        { return e.Err }
func (e *DecodeError) Is(target error) bool { return target == apperr.ErrGenerationFailed }

// Invoker resolves the configured provider from the registry on every call.
type Invoker struct {
	registry *Registry
	provider string
	model    string
	log      *logger.Logger
}

func NewInvoker(registry *Registry, provider, model string, log *logger.Logger) *Invoker {
	if log == nil {
		log = logger.Nop()
	}
	return &Invoker{registry: registry, provider: provider, model: model, log: log}
}

func (i *Invoker) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	p, err := i.registry.Get(ctx, i.provider, i.model)
	if err != nil {
		return "", apperr.GenerationFailed(err, "resolve provider")
	}

	msgs := make([]Message, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: req.System})
	}
	msgs = append(msgs, req.Messages...)

	start := time.Now()
	out, err := p.Chat(ctx, msgs, Options{Temperature: req.Temperature, MaxTokens: req.MaxTokens, JSON: req.JSON})
	if err != nil {
		i.log.Error("generation failed", "provider", i.provider, "took", time.Since(start), "error", err)
		return "", apperr.GenerationFailed(err, "generation call failed")
	}
	i.log.Debug("generation finished", "provider", i.provider, "took", time.Since(start), "chars", len(out))
	return out, nil
}

func (i *Invoker) GenerateStructured(ctx context.Context, req StructuredRequest, out any) error {
	user := req.User
	if req.SchemaHint != "" {
		user += "\n\nRespond with a single JSON object using this structure:\n" + req.SchemaHint
	}
	raw, err := i.GenerateText(ctx, TextRequest{
		System:      req.System,
		Messages:    []Message{{Role: RoleUser, Content: user}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		JSON:        true,
	})
	if err != nil {
		return err
	}
	return DecodeJSON(raw, out)
}

// DecodeJSON parses model output into out, tolerating a surrounding markdown
// code fence.
func DecodeJSON(raw string, out any) error {
	if err := json.Unmarshal([]byte(stripFences(raw)), out); err != nil {
		return &DecodeError{Raw: raw, Err: err}
	}
	return nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
