package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/intervue/internal/api"
	"github.com/abhisek/intervue/internal/capture"
	"github.com/abhisek/intervue/internal/config"
	"github.com/abhisek/intervue/internal/interview"
	"github.com/abhisek/intervue/internal/llm"
	"github.com/abhisek/intervue/internal/local"
	"github.com/abhisek/intervue/internal/screens/summary"
	"github.com/abhisek/intervue/internal/store"
)

// backend is where sessions live: the interview API server or the
// in-process local service.
type backend interface {
	interview.SessionAPI
	interview.Transcriber
	summary.Fetcher
	StartSession(ctx context.Context, req api.StartRequest) (*api.StartResponse, error)
}

var (
	_ backend = (*api.Client)(nil)
	_ backend = (*local.Service)(nil)
)

// env bundles what every session command needs.
type env struct {
	cfg     *config.Config
	store   *store.Store
	backend backend
}

// openEnv loads config, opens the store and builds the backend for
// the configured mode. mode overrides the config when non-empty.
func openEnv(cmd *cobra.Command, mode string) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if mode != "" {
		cfg.Mode = mode
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	b, err := newBackend(cmd.Context(), cfg, st)
	if err != nil {
		st.Close()
		return nil, err
	}
	return &env{cfg: cfg, store: st, backend: b}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

func newBackend(ctx context.Context, cfg *config.Config, st *store.Store) (backend, error) {
	switch cfg.Mode {
	case config.ModeRemote:
		return api.NewClient(cfg.API.BaseURL, api.WithToken(cfg.API.Token)), nil
	case config.ModeLocal:
		return newLocalService(ctx, cfg, st), nil
	}
	return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
}

// newLocalService wires the LLM stack into an offline service. Missing
// LLM configuration degrades to the built-in question bank and typed
// answers only.
func newLocalService(ctx context.Context, cfg *config.Config, st *store.Store) *local.Service {
	var provider llm.Provider
	var transcriber llm.Transcriber

	llmCfg, err := llm.Resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: LLM provider not configured: %v\n", err)
		fmt.Fprintln(os.Stderr, "warning: using built-in questions and heuristic grading.")
	} else {
		provider, err = llm.NewProvider(ctx, llmCfg, st.EventRepo())
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: LLM provider unavailable: %v\n", err)
			provider = nil
		}
	}

	transcriber, err = llm.NewTranscriber(llmCfg, st.EventRepo())
	if err != nil {
		if !errors.Is(err, llm.ErrNoTranscriber) {
			fmt.Fprintf(os.Stderr, "warning: speech-to-text unavailable: %v\n", err)
		}
		transcriber = nil
	}

	return local.NewService(st.InterviewRepo(), provider, transcriber, local.Config{
		QuestionCount: cfg.Local.QuestionCount,
		TimeLimit:     cfg.Local.TimeLimit,
		SessionLimit:  cfg.Local.SessionLimit,
		DataDir:       cfg.Local.DataDir,
	})
}

// newDevice returns the capture device: a WAV replay when audioFile is
// set, otherwise ffmpeg recording from the configured input.
func newDevice(cfg *config.Config, audioFile string) capture.Device {
	if audioFile == "" {
		audioFile = cfg.Capture.AudioFile
	}
	if audioFile != "" {
		return capture.NewFileDevice(audioFile)
	}
	return capture.NewExecDevice(capture.ExecConfig{
		Command:     cfg.Capture.Command,
		InputFormat: cfg.Capture.InputFormat,
		InputDevice: cfg.Capture.InputDevice,
	})
}

// withTimeout bounds a one-shot CLI request by the configured fetch timeout.
func (e *env) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	limit := e.cfg.Timeouts.Fetch
	if limit <= 0 {
		limit = 30 * time.Second
	}
	return context.WithTimeout(ctx, limit)
}
