// Package bootstrap wires the services shared by the API server and the
// notification worker.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/suPer8Hu/client-portal/internal/activity"
	"github.com/suPer8Hu/client-portal/internal/admin"
	"github.com/suPer8Hu/client-portal/internal/agents"
	"github.com/suPer8Hu/client-portal/internal/ai"
	"github.com/suPer8Hu/client-portal/internal/chat"
	"github.com/suPer8Hu/client-portal/internal/config"
	"github.com/suPer8Hu/client-portal/internal/documents"
	"github.com/suPer8Hu/client-portal/internal/httpapi/handlers"
	"github.com/suPer8Hu/client-portal/internal/links"
	"github.com/suPer8Hu/client-portal/internal/logger"
	"github.com/suPer8Hu/client-portal/internal/milestones"
	"github.com/suPer8Hu/client-portal/internal/notify"
	"github.com/suPer8Hu/client-portal/internal/profile"
	"github.com/suPer8Hu/client-portal/internal/store/rabbitmq"
	"github.com/suPer8Hu/client-portal/internal/store/redisstore"
	"gorm.io/gorm"
)

// Registry registers every supported provider. An empty model selects the
// provider's configured default.
func Registry(cfg config.Config) *ai.Registry {
	reg := ai.NewRegistry()
	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, orDefault(model, cfg.OllamaModel)), nil
	})
	reg.Register("openai", func(ctx context.Context, model string) (ai.Provider, error) {
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return ai.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, orDefault(model, cfg.OpenAIModel)), nil
	})
	reg.Register("openrouter", func(ctx context.Context, model string) (ai.Provider, error) {
		if cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY is not set")
		}
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey,
			orDefault(model, cfg.OpenRouterModel), cfg.OpenRouterSiteURL, cfg.AppName), nil
	})
	return reg
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// Generator returns the invoker for the configured provider.
func Generator(cfg config.Config, log *logger.Logger) (*ai.Invoker, error) {
	reg := Registry(cfg)
	if !reg.Has(cfg.AIProvider) {
		return nil, fmt.Errorf("unsupported AI_PROVIDER=%q (have %s)", cfg.AIProvider, strings.Join(reg.Names(), ", "))
	}
	return ai.NewInvoker(reg, cfg.AIProvider, cfg.AIModel, log.With("component", "ai")), nil
}

// Sink routes webhooks over HTTP and email through SMTP, the email webhook,
// or the log, whichever is configured first.
func Sink(cfg config.Config, log *logger.Logger) notify.Router {
	var email notify.Sink
	switch {
	case cfg.SMTPHost != "":
		email = notify.NewSMTPSink(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	case cfg.EmailWebhookURL != "":
		email = notify.NewEmailWebhookSink(cfg.EmailWebhookURL)
	default:
		log.Warn("no email transport configured, emails will only be logged")
		email = notify.LogSink{Log: log}
	}
	return notify.Router{
		notify.ChannelWebhook: notify.NewWebhookSink(),
		notify.ChannelEmail:   email,
	}
}

func Deliverer(cfg config.Config, gdb *gorm.DB, log *logger.Logger) *notify.Deliverer {
	return notify.NewDeliverer(notify.NewRepo(gdb), Sink(cfg, log), cfg.NotifyMaxAttempts, log.With("component", "notify"))
}

// App is the fully wired API.
type App struct {
	Handler *handlers.Handler
	closers []func() error
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

func NewApp(cfg config.Config, gdb *gorm.DB, log *logger.Logger) (*App, error) {
	app := &App{}

	gen, err := Generator(cfg, log)
	if err != nil {
		return nil, err
	}

	var cache documents.Cache
	if cfg.RedisAddr != "" {
		rds, err := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.DocumentCacheTTL)
		if err != nil {
			log.Warn("redis unavailable, document cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			cache = rds
			app.closers = append(app.closers, rds.Close)
		}
	}

	deliverer := Deliverer(cfg, gdb, log)
	var dispatcher notify.Dispatcher
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		app.closers = append(app.closers, pub.Close)
		dispatcher = notify.NewOutbox(deliverer.Repo(), pub, log.With("component", "outbox"))
	} else {
		dispatcher = notify.NewInline(deliverer, cfg.NotifyRetryDelay, log.With("component", "notify"))
	}

	emails := notify.NewEmails(cfg.AppName, cfg.PublicURL)
	announcer := notify.NewAnnouncer(dispatcher, emails, cfg.OnboardingWebhookURL, cfg.AdminEmail, log)

	profileRepo := profile.NewRepo(gdb)
	profiles := profile.NewService(profileRepo, announcer, log)
	docs := documents.NewService(profileRepo, documents.NewRepo(gdb), gen, cache, log.With("component", "documents"))
	chats := chat.NewService(chat.NewRepo(gdb), profileRepo, gen, cfg.ChatHistoryLimit, log)
	milestoneRepo := milestones.NewRepo(gdb)
	linkRepo := links.NewRepo(gdb)
	recorder := activity.NewRecorder(gdb, log)

	adminSvc := admin.NewService(admin.Deps{
		DB:                   gdb,
		Profiles:             profileRepo,
		Links:                linkRepo,
		Milestones:           milestoneRepo,
		Activity:             recorder,
		Documents:            docs,
		Chat:                 chats,
		Notify:               deliverer.Repo(),
		Deliverer:            deliverer,
		Dispatcher:           dispatcher,
		Emails:               emails,
		Generator:            gen,
		OnboardingWebhookURL: cfg.OnboardingWebhookURL,
		AdminEmail:           cfg.AdminEmail,
		Log:                  log.With("component", "admin"),
	})

	app.Handler = &handlers.Handler{
		DB:         gdb,
		Cfg:        cfg,
		Log:        log,
		Profiles:   profiles,
		Documents:  docs,
		Chat:       chats,
		Agents:     agents.NewService(profileRepo, gen, log),
		Milestones: milestones.NewService(milestoneRepo, profileRepo, gen, log),
		Links:      linkRepo,
		Activity:   recorder,
		Admin:      adminSvc,
		Announcer:  announcer,
	}
	return app, nil
}
