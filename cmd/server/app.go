package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"tutor-ai/internal/config"
	"tutor-ai/internal/db"
	"tutor-ai/internal/logger"
	"tutor-ai/internal/services"
	"tutor-ai/pkg/transcript"
	"tutor-ai/pkg/websearch"
)

// Sampling used by the tutoring endpoints.
const (
	tutorTemperature = 0.5
	tutorMaxTokens   = 0
)

// app holds the wired services shared by every command.
type app struct {
	cfg       config.Config
	log       *logger.Logger
	conn      *sql.DB
	tutor     *services.TutorService
	video     *services.VideoSummarizer
	search    *services.SearchService
	documents *services.DocumentService
	summaries *services.DocumentSummarizer
	history   *services.HistoryService
}

func newApp(withDB bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	mode := cfg.LogMode
	if verbose {
		mode = "development"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, log: log}
	if withDB {
		conn, err := db.Open(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.conn = conn
		a.history = services.NewHistoryService(conn)
	}

	if cfg.LLMKey == "" {
		log.Warn("no LLM API key configured; AI endpoints will answer 503")
	}
	ai := services.NewAIService(services.AIOptions{
		APIKey:      cfg.LLMKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
		Timeout:     cfg.LLMTimeout,
	})
	summarizerCfg := services.SummarizerConfig{
		Workers:      cfg.SummaryWorkers,
		RateLimitRPM: cfg.LLMRateLimitRPM,
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	hosts := []transcript.Host{transcript.NewYouTubeHost(httpClient)}
	if len(cfg.InvidiousHosts) == 0 {
		log.Warn("no transcript mirror hosts configured; YouTube is the only transcript source")
	}
	for _, base := range cfg.InvidiousHosts {
		hosts = append(hosts, transcript.NewInvidiousHost(base, httpClient))
	}
	fetcher := transcript.NewFetcher(hosts,
		transcript.WithLanguages(cfg.TranscriptLangs...),
		transcript.WithLogger(log.SugaredLogger.Desugar()),
	)

	searchCfg := websearch.Config{TavilyKey: cfg.TavilyKey, Timeout: 30}

	a.tutor = services.NewTutorService(ai.WithSampling(tutorTemperature, tutorMaxTokens), log)
	a.video = services.NewVideoSummarizer(fetcher,
		services.NewSummarizer(ai, services.VideoPrompts, summarizerCfg, log), log)
	a.search = services.NewSearchService(ai, a.video, map[services.Source]websearch.WebSearchService{
		services.SourceDuckDuckGo: websearch.NewDuckDuckGo(searchCfg),
		services.SourceWikipedia:  websearch.NewWikipedia(searchCfg),
		services.SourceArxiv:      websearch.NewArxiv(searchCfg),
		services.SourceTavily:     websearch.NewTavily(searchCfg),
	}, log)
	a.documents = services.NewDocumentService(cfg.UploadDir)
	a.summaries = services.NewDocumentSummarizer(a.documents, services.NewPDFService(),
		services.NewSummarizer(ai, services.DocumentPrompts, summarizerCfg, log), log)

	return a, nil
}

func (a *app) Close() {
	if a.conn != nil {
		_ = a.conn.Close()
	}
	a.log.Sync()
}
