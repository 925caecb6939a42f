package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/intervue/internal/api"
	"github.com/abhisek/intervue/internal/screens/summary"
	"github.com/abhisek/intervue/internal/store"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [session-id]",
	Short: "Show the graded summary of an interview",
	Long: `Show the graded summary of an interview. Without a session ID the most
recent interview is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().Bool("json", false, "Print the raw summary as JSON")
	summaryCmd.Flags().Int("width", 100, "Render width")
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	asJSON, _ := cmd.Flags().GetBool("json")
	width, _ := cmd.Flags().GetInt("width")

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	var sessionID, mode string
	if len(args) == 1 {
		sessionID = args[0]
		mode = sessionMode(cmd, st, sessionID)
	} else {
		last, err := latestSession(cmd, st)
		if err != nil {
			st.Close()
			return err
		}
		sessionID, mode = last.SessionID, last.Mode
	}
	st.Close()

	rt, err := openEnv(cmd, mode)
	if err != nil {
		return err
	}
	defer rt.Close()

	reqCtx, cancel := rt.withTimeout(ctx)
	defer cancel()
	sum, err := rt.backend.FetchSummary(reqCtx, sessionID)
	if err != nil {
		if api.IsNotActive(err) {
			return fmt.Errorf("session %s is not available: %w", sessionID, err)
		}
		return fmt.Errorf("fetch summary: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	fmt.Println(summary.Render(sum, width))
	return nil
}

// latestSession returns the newest session this machine has seen.
func latestSession(cmd *cobra.Command, st *store.Store) (*store.SessionEventRecord, error) {
	events, err := st.EventRepo().QuerySessionEvents(cmd.Context(), store.QueryOpts{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	if len(events) == 0 {
		return nil, errors.New("no interviews yet; start one with: intervue start --role ...")
	}
	return &events[0], nil
}

// sessionMode returns the mode a session was run in, or "" when unknown.
func sessionMode(cmd *cobra.Command, st *store.Store, sessionID string) string {
	events, err := st.EventRepo().QuerySessionEvents(cmd.Context(), store.QueryOpts{SessionID: sessionID, Limit: 1})
	if err != nil || len(events) == 0 {
		return ""
	}
	return events[0].Mode
}
