package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/suPer8Hu/client-portal/internal/ai"
	"github.com/suPer8Hu/client-portal/internal/apperr"
	"github.com/suPer8Hu/client-portal/internal/logger"
	"github.com/suPer8Hu/client-portal/internal/profile"
	"github.com/suPer8Hu/client-portal/internal/prompts"
)

type ProfileReader interface {
	GetByID(ctx context.Context, id string) (*profile.ClientProfile, error)
}

type Service struct {
	profiles ProfileReader
	gen      ai.Generator
	log      *logger.Logger
}

func NewService(profiles ProfileReader, gen ai.Generator, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{profiles: profiles, gen: gen, log: log}
}

// Result is the output of one run, returned to clients under Key.
type Result struct {
	Key   string
	Value any
}

type promptData struct {
	Context string
	In      Input
}

// Decode parses body into the agent's input type. An empty body is an
// empty brief.
func Decode(d Definition, body []byte) (Input, error) {
	in := d.newInput()
	if len(bytes.TrimSpace(body)) == 0 {
		return in, nil
	}
	if err := json.Unmarshal(body, in); err != nil {
		return nil, apperr.InvalidArgument("invalid request body")
	}
	return in, nil
}

// Run executes agent name for clientID with the raw JSON brief.
func (s *Service) Run(ctx context.Context, clientID, name string, body []byte) (*Result, error) {
	d, ok := Lookup(name)
	if !ok {
		return nil, apperr.NotFound("Unknown agent %q", name)
	}
	in, err := Decode(d, body)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	in.Normalize(p)
	if err := in.Validate(); err != nil {
		return nil, apperr.InvalidArgument("%s", err.Error())
	}

	data := promptData{Context: profile.AgentContext(p), In: in}
	if d.Brand {
		data.Context = profile.BrandContext(p)
	}
	system, err := prompts.Render(name+".system", data)
	if err != nil {
		return nil, err
	}
	user, err := prompts.Render(name+".user", data)
	if err != nil {
		return nil, err
	}

	if d.Structured {
		return s.review(ctx, d, system, user)
	}

	out, err := s.gen.GenerateText(ctx, ai.TextRequest{
		System:      system,
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: user}},
		Temperature: d.Temperature,
		MaxTokens:   d.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out) == "" {
		out = d.Fallback
	}
	s.log.Info("agent run", "agent", name, "client_id", clientID, "chars", len(out))
	return &Result{Key: d.ResultKey, Value: out}, nil
}

func (s *Service) review(ctx context.Context, d Definition, system, user string) (*Result, error) {
	var review any
	err := s.gen.GenerateStructured(ctx, ai.StructuredRequest{
		System:      system,
		User:        user,
		SchemaHint:  qaSchema,
		Temperature: d.Temperature,
		MaxTokens:   d.MaxTokens,
	}, &review)
	if err != nil {
		degraded, ok := degradedReview(err)
		if !ok {
			return nil, err
		}
		s.log.Warn("qa review unparseable", "agent", d.Name, "error", err)
		return &Result{Key: d.ResultKey, Value: degraded}, nil
	}
	if review == nil {
		s.log.Warn("qa review was null", "agent", d.Name)
		return &Result{Key: d.ResultKey, Value: parseFailure("null")}, nil
	}
	return &Result{Key: d.ResultKey, Value: review}, nil
}
