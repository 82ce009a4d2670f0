package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mobiusvibe/assistant/internal/assistant"
	"github.com/mobiusvibe/assistant/internal/core"
	"github.com/mobiusvibe/assistant/internal/execx"
	"github.com/mobiusvibe/assistant/internal/integrations/calendar"
	"github.com/mobiusvibe/assistant/internal/integrations/email"
	"github.com/mobiusvibe/assistant/internal/integrations/search"
	"github.com/mobiusvibe/assistant/internal/integrations/whoisx"
	"github.com/mobiusvibe/assistant/internal/launcher"
	"github.com/mobiusvibe/assistant/internal/llm"
	"github.com/mobiusvibe/assistant/internal/memory"
	"github.com/mobiusvibe/assistant/internal/nlu"
	"github.com/mobiusvibe/assistant/internal/task"
	"github.com/mobiusvibe/assistant/internal/tts"
	logx "github.com/mobiusvibe/assistant/pkg/logger"
	pkgredis "github.com/mobiusvibe/assistant/pkg/redis"
)

// AppConfig defines all configurable parameters for the assistant, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis       pkgredis.Config
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	// Memory
	MemoryTurns     int `envconfig:"MEMORY_SHORT_TERM_LIMIT" default:"10"`
	MemoryPruneDays int `envconfig:"MEMORY_PRUNE_DAYS" default:"180"`

	// Components
	LLM      llm.Config
	Calendar calendar.Config
	Email    email.Config
	Search   search.Config
	Whois    whoisx.Config
	TTS      tts.Config
	Task     task.Config
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env})
	logx.Info().Str("environment", env.String()).Msg("starting assistant")

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	// Collaborators. Each degrades on its own; a missing credential never
	// stops the conversation loop from starting.
	runner := execx.NewLocalRunner()
	launch := launcher.New(runner)
	searchClient := search.New(cfg.Search)
	whoisClient := whoisx.New(cfg.Whois)
	calendarSvc := calendar.New(ctx, cfg.Calendar)
	emailSvc := email.New(cfg.Email)
	responder := llm.NewResponder(ctx, cfg.LLM)
	speaker := tts.NewSpeaker(cfg.TTS, runner)

	processor := nlu.NewProcessor(nlu.NewProseAnnotator())

	dispatcher := task.NewDispatcher(cfg.Task, calendarSvc, emailSvc, searchClient, whoisClient, launch, runner)

	transcript := memory.NewShortTerm(cfg.MemoryTurns)
	bot := assistant.New(processor, dispatcher, responder, speaker, transcript)

	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			logx.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()

		facts := memory.NewRedisLongTerm(rdb)
		bot.WithFactStore(facts)

		if cfg.MemoryPruneDays > 0 {
			cutoff := time.Now().UTC().AddDate(0, 0, -cfg.MemoryPruneDays)
			if n, err := facts.Prune(ctx, cutoff); err != nil {
				logx.Warn().Err(err).Msg("long-term memory pruning failed")
			} else if n > 0 {
				logx.Info().Int("pruned", n).Msg("pruned old memory entries")
			}
		}
	} else {
		logx.Info().Msg("redis not configured, long-term memory disabled")
	}

	sessionID := uuid.NewString()
	logx.Info().Str("session", sessionID).Msg("session started")

	runLoop(ctx, bot)
	logx.Info().Str("session", sessionID).Msg("session finished")
}

// runLoop reads utterances from stdin until EOF or a quit command.
func runLoop(ctx context.Context, bot *assistant.Assistant) {
	fmt.Println("Mobius Vibe Assistant started. Type 'quit' or 'exit' to end.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if lower := strings.ToLower(input); lower == "quit" || lower == "exit" {
			break
		}

		fmt.Printf("Assistant: %s\n", bot.Respond(ctx, input))
	}
	if err := scanner.Err(); err != nil {
		logx.Error().Err(err).Msg("input loop terminated")
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logx.Info().Str("addr", addr).Msg("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logx.Error().Err(err).Msg("metrics server stopped")
	}
}
