package chat

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/suPer8Hu/client-portal/internal/ai"
	"github.com/suPer8Hu/client-portal/internal/apperr"
	"github.com/suPer8Hu/client-portal/internal/logger"
	"github.com/suPer8Hu/client-portal/internal/profile"
	"github.com/suPer8Hu/client-portal/internal/prompts"
)

const (
	replyTemperature = 0.8
	replyMaxTokens   = 400
	maxMessageLength = 4000

	// FallbackReply replaces an empty completion.
	FallbackReply = "Sorry, I had a moment there! Could you ask that again?"
)

type ProfileReader interface {
	GetByID(ctx context.Context, id string) (*profile.ClientProfile, error)
}

type Service struct {
	repo         *Repo
	profiles     ProfileReader
	gen          ai.Generator
	historyLimit int
	log          *logger.Logger
}

func NewService(repo *Repo, profiles ProfileReader, gen ai.Generator, historyLimit int, log *logger.Logger) *Service {
	if historyLimit <= 0 || historyLimit > 100 {
		historyLimit = 10
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, profiles: profiles, gen: gen, historyLimit: historyLimit, log: log}
}

func (s *Service) Repo() *Repo { return s.repo }

func validateContent(content string) error {
	err := validation.Validate(strings.TrimSpace(content),
		validation.Required.Error("Message is required"),
		validation.RuneLength(1, maxMessageLength),
	)
	if err != nil {
		return apperr.InvalidArgument("%s", err.Error())
	}
	return nil
}

// PostMessage stores the user's message, asks the assistant for a reply and
// stores that too. The user message survives a failed generation.
func (s *Service) PostMessage(ctx context.Context, clientID, content string) (*Message, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}
	p, err := s.profiles.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	// 1) history before this message, oldest first
	recentDesc, err := s.repo.ListRecentMessagesDesc(ctx, clientID, s.historyLimit)
	if err != nil {
		return nil, err
	}
	history := make([]ai.Message, 0, len(recentDesc)+1)
	for i := len(recentDesc) - 1; i >= 0; i-- {
		m := recentDesc[i]
		history = append(history, ai.Message{Role: m.Role, Content: m.Content})
	}

	// 2) store user message (strong consistency)
	if err := s.repo.InsertMessage(ctx, &Message{ClientID: clientID, Role: RoleUser, Content: content}); err != nil {
		return nil, err
	}
	history = append(history, ai.Message{Role: ai.RoleUser, Content: content})

	system, err := persona(p)
	if err != nil {
		return nil, err
	}

	// 3) call provider
	reply, err := s.gen.GenerateText(ctx, ai.TextRequest{
		System:      system,
		Messages:    history,
		Temperature: replyTemperature,
		MaxTokens:   replyMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(reply) == "" {
		reply = FallbackReply
	}

	// 4) store assistant message
	assistant := &Message{ClientID: clientID, Role: RoleAssistant, Content: reply}
	if err := s.repo.InsertMessage(ctx, assistant); err != nil {
		return nil, err
	}
	s.log.Debug("chat reply stored", "client_id", clientID, "message_id", assistant.ID, "history", len(history)-1)
	return assistant, nil
}

func persona(p *profile.ClientProfile) (string, error) {
	name := strings.TrimSpace(p.CompanyName)
	if name == "" {
		name = "your company"
	}
	return prompts.Render("persona", struct {
		CompanyName string
		Context     string
	}{name, profile.BuildContext(p)})
}

// History returns the full transcript oldest first.
func (s *Service) History(ctx context.Context, clientID string) ([]Message, error) {
	return s.repo.ListMessages(ctx, clientID)
}

// Overview is the admin view across clients.
func (s *Service) Overview(ctx context.Context) ([]ClientStats, error) {
	return s.repo.Stats(ctx)
}

// Transcript is the admin view of one client. It fails with NotFound for an
// unknown client rather than returning an empty list.
func (s *Service) Transcript(ctx context.Context, clientID string) (*profile.ClientProfile, []Message, error) {
	p, err := s.profiles.GetByID(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.repo.ListMessages(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}
	return p, msgs, nil
}

func (s *Service) SetFlagged(ctx context.Context, messageID string, flagged bool) (*Message, error) {
	if strings.TrimSpace(messageID) == "" {
		return nil, apperr.InvalidArgument("message id is required")
	}
	return s.repo.SetFlagged(ctx, messageID, flagged)
}
