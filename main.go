package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	orchestratorx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	extractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/extract"
	llmx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/llm"
	policyx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/policy"
	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
	statex "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/state"
	submitx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/submit"
	configx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/pkg/config"
	_ "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/pkg/logger/autoload"
	qstashx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/pkg/qstash"
	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/server"
)

type AppConfig struct {
	HTTPAddr           string        `envconfig:"HTTP_ADDR" default:":8000"`
	CORSAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:4200,https://localhost:4200"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"45s"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("")

	sessionCfg := configx.MustNew[statex.Config]("SESSION")
	var redisCfg *statex.UpstashRedisConfig
	if sessionCfg.Backend == statex.BackendUpstash {
		redisCfg = configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
	}
	store, err := statex.NewStore(*sessionCfg, redisCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session store")
	}
	sessions := statex.NewSessionStore(store)

	submitCfg := configx.MustNew[submitx.Config]("SUBMIT")
	var qstashCfg *qstashx.Config
	if submitCfg.QStashDestination != "" {
		qstashCfg = configx.MustNew[qstashx.Config]("QSTASH")
	}
	sink, closeSink, err := submitx.New(ctx, *submitCfg, qstashCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create submission sink")
	}
	defer func() {
		if err := closeSink(); err != nil {
			log.Warn().Err(err).Msg("failed to close submission sink")
		}
	}()

	strategies := []contractx.Strategy{extractx.NewStrategy()}
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	if llmCfg.Active() {
		remote, err := llmx.New(ctx, *llmCfg, policyx.DefaultConfirmations.Phrases())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create extraction service")
		}
		strategies = append([]contractx.Strategy{remote}, strategies...)
		log.Info().Str("strategy", remote.Name()).Str("model", llmCfg.Model).Msg("remote extraction enabled")
	} else {
		log.Info().Msg("remote extraction disabled, using pattern extraction only")
	}

	locker := statex.NewKeyedLocker()
	var handlers []*server.Handler
	catalog := slot.DefaultCatalog()
	for _, domain := range catalog.Domains() {
		schema, err := catalog.Schema(domain)
		if err != nil {
			log.Fatal().Err(err).Str("domain", domain).Msg("failed to load slot schema")
		}
		o, err := orchestratorx.New(schema, sessions, strategies, sink, orchestratorx.Config{Locker: locker})
		if err != nil {
			log.Fatal().Err(err).Str("domain", schema.Domain()).Msg("failed to create orchestrator")
		}
		handlers = append(handlers, server.NewHandler(o))
	}

	httpServer := &http.Server{
		Addr: appCfg.HTTPAddr,
		Handler: server.NewRouter(server.Config{
			AllowedOrigins: appCfg.CORSAllowedOrigins,
			RequestTimeout: appCfg.RequestTimeout,
		}, handlers...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", appCfg.HTTPAddr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
