package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/intervue/internal/api"
	"github.com/abhisek/intervue/internal/app"
	"github.com/abhisek/intervue/internal/interview"
	"github.com/abhisek/intervue/internal/screens/session"
	"github.com/abhisek/intervue/internal/store"
)

// runResume reopens the remembered interview in the TUI.
func runResume(cmd *cobra.Command) error {
	ctx := cmd.Context()

	// Peek at the remembered session first so the backend matches the
	// mode it was started in.
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	active, err := st.SessionRepo().Active(ctx)
	st.Close()
	if err != nil {
		return err
	}
	if active == nil {
		fmt.Println("No interview in progress.")
		fmt.Println(`Start one with: intervue start --role "Backend Engineer"`)
		return nil
	}

	rt, err := openEnv(cmd, active.Mode)
	if err != nil {
		return err
	}
	defer rt.Close()

	_ = rt.store.EventRepo().AppendSessionEvent(ctx, store.SessionEventData{
		SessionID: active.SessionID,
		Role:      active.Role,
		Mode:      rt.cfg.Mode,
		Action:    "resume",
	})

	audioFile, _ := cmd.Flags().GetString("audio-file")
	return runInterview(rt, active, audioFile)
}

// runInterview launches the interview screen for an active session.
func runInterview(rt *env, active *store.ActiveSession, audioFile string) error {
	sess := &interview.Session{
		ID:     active.SessionID,
		Role:   active.Role,
		Status: api.StatusActive,
	}

	ctrl := interview.New(sess, interview.Options{
		API:               rt.backend,
		Transcriber:       rt.backend,
		Device:            newDevice(rt.cfg, audioFile),
		Events:            rt.store.EventRepo(),
		Sessions:          rt.store.SessionRepo(),
		Mode:              rt.cfg.Mode,
		TranscribeTimeout: rt.cfg.Timeouts.Transcribe,
		SubmitTimeout:     rt.cfg.Timeouts.Submit,
		FetchTimeout:      rt.cfg.Timeouts.Fetch,
	})

	if err := app.Run(session.New(ctrl, rt.backend)); err != nil {
		return err
	}

	switch ctrl.State() {
	case interview.StateCompleted:
		fmt.Println("Interview complete. Review it again with: intervue summary", active.SessionID)
	case interview.StateExpired:
		fmt.Fprintln(os.Stderr, interview.MsgSessionExpired)
	default:
		fmt.Println("Interview paused. Run intervue to resume.")
	}
	return nil
}
