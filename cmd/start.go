package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/intervue/internal/api"
	"github.com/abhisek/intervue/internal/config"
	"github.com/abhisek/intervue/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new interview",
	Example: `  intervue start --role "Backend Engineer"
  intervue start --role "Product Manager" --resume
  intervue start --role "Data Scientist" --local`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().String("role", "", "Role you are interviewing for (required)")
	startCmd.Flags().Bool("resume", false, "Ask questions about your own experience")
	startCmd.Flags().Bool("local", false, "Run offline with the configured LLM instead of the API server")
	startCmd.Flags().String("audio-file", "", "Replay this WAV file instead of recording from the microphone")
	_ = startCmd.MarkFlagRequired("role")
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	role, _ := cmd.Flags().GetString("role")
	useResume, _ := cmd.Flags().GetBool("resume")
	offline, _ := cmd.Flags().GetBool("local")
	audioFile, _ := cmd.Flags().GetString("audio-file")

	role = strings.TrimSpace(role)
	if role == "" {
		return fmt.Errorf("--role must not be empty")
	}

	mode := ""
	if offline {
		mode = config.ModeLocal
	}
	rt, err := openEnv(cmd, mode)
	if err != nil {
		return err
	}
	defer rt.Close()

	if prev, err := rt.store.SessionRepo().Active(ctx); err == nil && prev != nil {
		fmt.Fprintf(os.Stderr, "warning: leaving interview %s (%s) unfinished\n", prev.SessionID, prev.Role)
		_ = rt.store.EventRepo().AppendSessionEvent(ctx, store.SessionEventData{
			SessionID: prev.SessionID,
			Role:      prev.Role,
			Mode:      prev.Mode,
			Action:    "abandon",
			Detail:    "replaced by a new interview",
		})
	}

	reqCtx, cancel := rt.withTimeout(ctx)
	resp, err := rt.backend.StartSession(reqCtx, api.StartRequest{Role: role, UseResume: useResume})
	cancel()
	if err != nil {
		return fmt.Errorf("start interview: %w", err)
	}

	active := store.ActiveSession{
		SessionID: resp.SessionID,
		Role:      role,
		UseResume: useResume,
		Mode:      rt.cfg.Mode,
		StartedAt: time.Now(),
	}
	if err := rt.store.SessionRepo().SaveActive(ctx, active); err != nil {
		return err
	}
	_ = rt.store.EventRepo().AppendSessionEvent(ctx, store.SessionEventData{
		SessionID: active.SessionID,
		Role:      role,
		Mode:      rt.cfg.Mode,
		Action:    "start",
	})

	return runInterview(rt, &active, audioFile)
}
