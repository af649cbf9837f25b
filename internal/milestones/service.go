package milestones

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/suPer8Hu/client-portal/internal/ai"
	"github.com/suPer8Hu/client-portal/internal/apperr"
	"github.com/suPer8Hu/client-portal/internal/logger"
	"github.com/suPer8Hu/client-portal/internal/profile"
	"github.com/suPer8Hu/client-portal/internal/prompts"
)

const (
	suggestTemperature = 0.7
	suggestMaxTokens   = 800
	defaultStepDays    = 7

	suggestSystem = "You are an onboarding specialist who creates milestone-based progress tracking for marketing agency clients. Return only valid JSON."
	suggestSchema = `{"milestones": [{"title": "Complete Brand Asset Upload", "description": "Upload logo, brand colors, and style guide", "estimatedDays": 3}]}`
)

type ProfileReader interface {
	GetByID(ctx context.Context, id string) (*profile.ClientProfile, error)
}

type Service struct {
	repo     *Repo
	profiles ProfileReader
	gen      ai.Generator
	log      *logger.Logger
	now      func() time.Time
}

func NewService(repo *Repo, profiles ProfileReader, gen ai.Generator, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, profiles: profiles, gen: gen, log: log, now: time.Now}
}

func (s *Service) List(ctx context.Context, clientID string) ([]Milestone, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, apperr.InvalidArgument("clientId is required")
	}
	return s.repo.ListByClient(ctx, clientID)
}

type CreateRequest struct {
	ClientID    string     `json:"clientId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	AISuggested bool       `json:"aiSuggested"`
}

func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ClientID, validation.Required.Error("clientId is required")),
		validation.Field(&r.Title, validation.Required.Error("title is required"), validation.RuneLength(1, 255)),
	)
}

// Create appends one milestone at the end of the client's list.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Milestone, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.InvalidArgument("%s", err.Error())
	}
	if _, err := s.profiles.GetByID(ctx, req.ClientID); err != nil {
		return nil, err
	}
	m := &Milestone{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		DueDate:     req.DueDate,
		AISuggested: req.AISuggested,
	}
	if err := s.repo.Append(ctx, req.ClientID, []*Milestone{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateRequest is a partial edit; absent fields are left alone.
type UpdateRequest struct {
	ID          string       `json:"id"`
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	DueDate     OptionalTime `json:"dueDate"`
	Completed   *bool        `json:"completed"`
}

func (r UpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required.Error("Milestone ID is required")),
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.RuneLength(1, 255)),
	)
}

// Update applies req. Toggling completed sets or clears completedAt.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Milestone, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.InvalidArgument("%s", err.Error())
	}
	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.DueDate.Set {
		updates["due_date"] = req.DueDate.Value
	}
	if req.Completed != nil {
		updates["completed"] = *req.Completed
		if *req.Completed {
			updates["completed_at"] = s.now().UTC()
		} else {
			updates["completed_at"] = nil
		}
	}
	if _, err := s.repo.Get(ctx, req.ID); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, req.ID, updates)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.InvalidArgument("Milestone ID is required")
	}
	return s.repo.Delete(ctx, id)
}

// Suggestion is one proposed milestone with its projected due date.
type Suggestion struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	EstimatedDays int       `json:"estimatedDays"`
	DueDate       time.Time `json:"dueDate"`
}

type suggestionSet struct {
	Milestones []Suggestion `json:"milestones"`
}

// Suggest asks the generator for an onboarding plan. Due dates accumulate
// from now, one step after another.
func (s *Service) Suggest(ctx context.Context, clientID string) ([]Suggestion, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, apperr.InvalidArgument("clientId is required")
	}
	p, err := s.profiles.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	user, err := prompts.Render("milestones", p)
	if err != nil {
		return nil, err
	}
	var set suggestionSet
	if err := s.gen.GenerateStructured(ctx, ai.StructuredRequest{
		System:      suggestSystem,
		User:        user,
		SchemaHint:  suggestSchema,
		Temperature: suggestTemperature,
		MaxTokens:   suggestMaxTokens,
	}, &set); err != nil {
		return nil, err
	}
	if len(set.Milestones) == 0 {
		return nil, apperr.GenerationFailed(nil, "no milestone suggestions returned")
	}
	return schedule(s.now().UTC(), set.Milestones), nil
}

func schedule(start time.Time, in []Suggestion) []Suggestion {
	out := make([]Suggestion, 0, len(in))
	due := start
	for _, sg := range in {
		if sg.EstimatedDays <= 0 {
			sg.EstimatedDays = defaultStepDays
		}
		due = due.AddDate(0, 0, sg.EstimatedDays)
		sg.DueDate = due
		out = append(out, sg)
	}
	return out
}

type ApplyItem struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
}

type ApplyRequest struct {
	ClientID   string      `json:"clientId"`
	Milestones []ApplyItem `json:"milestones"`
}

func (r ApplyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ClientID, validation.Required.Error("clientId is required")),
		validation.Field(&r.Milestones, validation.Required.Error("milestones are required"), validation.Length(1, 20)),
	)
}

// Apply stores accepted suggestions after the client's existing milestones.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) ([]Milestone, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.InvalidArgument("%s", err.Error())
	}
	ms := make([]*Milestone, 0, len(req.Milestones))
	for i, it := range req.Milestones {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			return nil, apperr.InvalidArgument("milestones[%d]: title is required", i)
		}
		ms = append(ms, &Milestone{Title: title, Description: it.Description, DueDate: it.DueDate, AISuggested: true})
	}
	if _, err := s.profiles.GetByID(ctx, req.ClientID); err != nil {
		return nil, err
	}
	if err := s.repo.Append(ctx, req.ClientID, ms); err != nil {
		return nil, err
	}
	s.log.Info("milestones applied", "client_id", req.ClientID, "count", len(ms))
	out := make([]Milestone, len(ms))
	for i, m := range ms {
		out[i] = *m
	}
	return out, nil
}
