package documents

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/suPer8Hu/client-portal/internal/ai"
	"github.com/suPer8Hu/client-portal/internal/apperr"
	"github.com/suPer8Hu/client-portal/internal/logger"
	"github.com/suPer8Hu/client-portal/internal/profile"
	"github.com/suPer8Hu/client-portal/internal/prompts"
)

const (
	generationTemperature = 0.7
	generationMaxTokens   = 4000
)

type ProfileReader interface {
	GetByID(ctx context.Context, id string) (*profile.ClientProfile, error)
}

type Service struct {
	profiles ProfileReader
	repo     *Repo
	gen      ai.Generator
	cache    Cache
	log      *logger.Logger
	now      func() time.Time
}

// NewService wires the orchestrator. cache may be nil.
func NewService(profiles ProfileReader, repo *Repo, gen ai.Generator, cache Cache, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{profiles: profiles, repo: repo, gen: gen, cache: cache, log: log, now: time.Now}
}

type Result struct {
	Document *Document `json:"document"`
	Cached   bool      `json:"cached"`
}

// GetOrGenerate returns the stored document for (clientID, docType), calling
// the generator only when none exists or force is set. There is no lock
// between the read and the write: concurrent forced calls both generate and
// the last upsert wins.
func (s *Service) GetOrGenerate(ctx context.Context, clientID, docType string, force bool) (*Result, error) {
	t, err := ParseType(docType)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if !force {
		doc, err := s.lookup(ctx, clientID, t)
		if err == nil {
			return &Result{Document: doc, Cached: true}, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}

	system, user, err := BuildPrompt(p, t)
	if err != nil {
		return nil, err
	}
	content, err := s.gen.GenerateText(ctx, ai.TextRequest{
		System:      system,
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: user}},
		Temperature: generationTemperature,
		MaxTokens:   generationMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.GenerationFailed(nil, "empty document from provider")
	}

	now := s.now().UTC()
	doc, err := s.repo.Upsert(ctx, &Document{
		ClientID:     clientID,
		DocumentType: string(t),
		Title:        t.Title(),
		Content:      content,
		WordCount:    WordCount(content),
		GeneratedAt:  now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	s.remember(ctx, doc)
	s.log.Info("document generated", "client_id", clientID, "type", t, "words", doc.WordCount, "forced", force)
	return &Result{Document: doc, Cached: false}, nil
}

// Get returns a stored document without ever generating.
func (s *Service) Get(ctx context.Context, clientID, docType string) (*Document, error) {
	t, err := ParseType(docType)
	if err != nil {
		return nil, err
	}
	return s.lookup(ctx, clientID, t)
}

func (s *Service) List(ctx context.Context, clientID string) ([]Document, error) {
	return s.repo.ListByClient(ctx, clientID)
}

// Forget drops every cached document of a client.
func (s *Service) Forget(ctx context.Context, clientID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, CacheKeys(clientID)...); err != nil {
		s.log.Warn("document cache evict failed", "client_id", clientID, "error", err)
	}
}

func (s *Service) lookup(ctx context.Context, clientID string, t Type) (*Document, error) {
	if s.cache != nil {
		var doc Document
		hit, err := s.cache.GetJSON(ctx, CacheKey(clientID, t), &doc)
		if err != nil {
			s.log.Warn("document cache read failed", "client_id", clientID, "type", t, "error", err)
		} else if hit {
			return &doc, nil
		}
	}
	doc, err := s.repo.Get(ctx, clientID, t)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, doc)
	return doc, nil
}

func (s *Service) remember(ctx context.Context, doc *Document) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, CacheKey(doc.ClientID, Type(doc.DocumentType)), doc); err != nil {
		s.log.Warn("document cache write failed", "client_id", doc.ClientID, "type", doc.DocumentType, "error", err)
	}
}

// BuildPrompt assembles the system and user prompts for one document.
func BuildPrompt(p *profile.ClientProfile, t Type) (system, user string, err error) {
	brief, err := prompts.Document(string(t))
	if err != nil {
		return "", "", err
	}
	var b strings.Builder
	b.WriteString(prompts.DocumentPreamble())
	b.WriteString("\n\nClient Context:\n")
	b.WriteString(profile.BuildContext(p))
	b.WriteString("\n\nDocument to create: ")
	b.WriteString(t.Title())
	b.WriteString("\n\n")
	b.WriteString(brief)
	return b.String(), "Generate the " + t.Title() + " document based on the client context provided.", nil
}

// WordCount counts whitespace-separated tokens.
func WordCount(content string) int {
	return len(strings.Fields(content))
}
