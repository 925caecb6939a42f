package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/intervue/internal/api"
	"github.com/abhisek/intervue/internal/capture"
	"github.com/abhisek/intervue/internal/config"
	"github.com/abhisek/intervue/internal/llm"
	"github.com/abhisek/intervue/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, server compatibility and microphone setup",
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	failed := 0
	report := func(name string, err error, detail string) {
		if err != nil {
			failed++
			fmt.Printf("✗ %-14s %v\n", name, err)
			return
		}
		fmt.Printf("✓ %-14s %s\n", name, detail)
	}

	cfgPath, _ := resolveConfigPath(cmd)
	cfg, err := loadConfig(cmd)
	report("config", err, cfgPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	dbPath, err := resolveDBPath(cmd)
	if err == nil {
		var st *store.Store
		if st, err = store.Open(dbPath); err == nil {
			st.Close()
		}
	}
	report("database", err, dbPath)

	switch cfg.Mode {
	case config.ModeRemote:
		ver, err := checkServer(ctx, cfg)
		report("server", err, fmt.Sprintf("%s (API %s)", cfg.API.BaseURL, ver))
	case config.ModeLocal:
		llmCfg, err := llm.Resolve()
		report("llm", err, llmCfg.Provider)
		_, err = llm.NewTranscriber(llmCfg, nil)
		report("speech-to-text", err, "openai "+llmCfg.OpenAI.TranscribeModel)
	}

	device := capture.NewExecDevice(capture.ExecConfig{
		Command:     cfg.Capture.Command,
		InputFormat: cfg.Capture.InputFormat,
		InputDevice: cfg.Capture.InputDevice,
	})
	path, err := device.Check()
	report("microphone", err, path)

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

// checkServer fetches the server version and verifies the API major.
func checkServer(ctx context.Context, cfg *config.Config) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeouts.Fetch)
	defer cancel()

	client := api.NewClient(cfg.API.BaseURL, api.WithToken(cfg.API.Token))
	info, err := client.Version(ctx)
	if err != nil {
		return "", err
	}
	if err := api.CheckCompatibility(info.Version); err != nil {
		return info.Version, err
	}
	return info.Version, nil
}
