package cmd

import (
	"fmt"
	"path/filepath"

	openaiadapter "github.com/bnema/helpdesk-assistant/internal/adapters/openai"
	ticketrender "github.com/bnema/helpdesk-assistant/internal/adapters/render/ticket"
	tomlrepo "github.com/bnema/helpdesk-assistant/internal/adapters/repo/toml"
	chainstore "github.com/bnema/helpdesk-assistant/internal/adapters/secrets/chain"
	"github.com/bnema/helpdesk-assistant/internal/application"
	"github.com/bnema/helpdesk-assistant/internal/config"
	"github.com/bnema/helpdesk-assistant/internal/domain"
	hdlog "github.com/bnema/helpdesk-assistant/internal/log"
	"github.com/bnema/helpdesk-assistant/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const envFileName = ".env"

type app struct {
	cfg             config.Config
	assistant       *application.AssistantService
	tickets         *application.TicketService
	transcripts     ports.TranscriptRepository
	secretStore     ports.SecretStore
	renderSummary   func(domain.TicketSummary, ticketrender.RenderOptions) (string, error)
	renderIncidents func([]domain.Incident, ticketrender.RenderOptions) (string, error)
	newSessionID    func() string
	logger          zerolog.Logger
}

func wireApp() (*app, error) {
	configDir, err := config.DefaultConfigDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(config.LoadOptions{ConfigDir: configDir, EnvFile: envFileName})
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	hdlog.Configure(hdlog.Config{Level: cfg.LogLevel, Service: "hd"})
	logger := hdlog.WithComponent("cli")

	secretStore, err := chainstore.NewPassFirstWithFileFallback(filepath.Join(configDir, "secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	provider := openaiadapter.NewProvider(openaiadapter.Options{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		RequestTimeout: cfg.RequestTimeout,
		VerifyTLS:      cfg.VerifyTLS,
	}, secretStore)
	gateway := openaiadapter.NewGateway(provider)

	awaiter := application.NewRunAwaiter(gateway,
		application.WithRunTimeout(cfg.RunTimeout),
		application.WithAwaiterLogger(hdlog.WithComponent("run_awaiter")),
	)
	cache := application.NewConversationCache(application.DefaultConversationCacheCapacity, application.DefaultConversationEvictBatch)

	return &app{
		cfg:             cfg,
		assistant:       application.NewAssistantService(gateway, cache, awaiter, cfg.AssistantID, hdlog.WithComponent("assistant")),
		tickets:         application.NewTicketService(gateway, cfg.SummaryModel, hdlog.WithComponent("tickets")),
		transcripts:     tomlrepo.NewTranscriptRepository(),
		secretStore:     secretStore,
		renderSummary:   ticketrender.RenderSummary,
		renderIncidents: ticketrender.RenderIncidents,
		newSessionID:    uuid.NewString,
		logger:          logger,
	}, nil
}
