package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/intervue/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past interviews and answers",
	Example: `  intervue history
  intervue history --session 6650c0ffee
  intervue history --local`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of entries to show")
	historyCmd.Flags().StringP("session", "s", "", "Show the answers given in one session")
	historyCmd.Flags().Bool("local", false, "List offline interviews with their status")
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	sessionID, _ := cmd.Flags().GetString("session")
	offline, _ := cmd.Flags().GetBool("local")

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	switch {
	case sessionID != "":
		return printAnswers(cmd, s, sessionID)
	case offline:
		return printLocalSessions(cmd, s, limit)
	}
	return printSessionEvents(cmd, s, limit)
}

func printSessionEvents(cmd *cobra.Command, s *store.Store, limit int) error {
	events, err := s.EventRepo().QuerySessionEvents(cmd.Context(), store.QueryOpts{Limit: limit})
	if err != nil {
		return fmt.Errorf("query events: %w", err)
	}
	if len(events) == 0 {
		fmt.Println("No interviews recorded yet.")
		return nil
	}

	fmt.Printf("%-19s  %-10s  %-24s  %-26s  %-6s  %8s  %s\n",
		"Timestamp", "Action", "Session", "Role", "Mode", "Answers", "Duration")
	fmt.Println(strings.Repeat("─", 112))
	for _, e := range events {
		duration := ""
		if e.DurationSecs > 0 {
			duration = fmt.Sprintf("%dm%02ds", e.DurationSecs/60, e.DurationSecs%60)
		}
		fmt.Printf("%-19s  %-10s  %-24s  %-26s  %-6s  %8d  %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Action,
			truncate(e.SessionID, 24),
			truncate(e.Role, 26),
			e.Mode,
			e.QuestionsAnswered,
			duration,
		)
	}
	return nil
}

func printAnswers(cmd *cobra.Command, s *store.Store, sessionID string) error {
	answers, err := s.EventRepo().QueryAnswerEvents(cmd.Context(), store.QueryOpts{SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("query answers: %w", err)
	}
	if len(answers) == 0 {
		fmt.Printf("No answers recorded for session %s.\n", sessionID)
		return nil
	}

	sep := strings.Repeat("─", 60)
	for _, a := range answers {
		var flags []string
		flags = append(flags, a.Provenance)
		if a.AutoSubmitted {
			flags = append(flags, "time's up")
		}
		if a.Substituted {
			flags = append(flags, "empty")
		}
		fmt.Printf("Q%d  %s\n", a.QuestionIndex+1, a.QuestionText)
		fmt.Printf("    %ds, %s\n", a.ResponseSecs, strings.Join(flags, ", "))
		fmt.Println(sep)
		fmt.Println(a.Answer)
		fmt.Println()
	}
	return nil
}

func printLocalSessions(cmd *cobra.Command, s *store.Store, limit int) error {
	sessions, err := s.InterviewRepo().ListSessions(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No offline interviews yet.")
		return nil
	}

	fmt.Printf("%-36s  %-19s  %-10s  %-7s  %s\n", "Session", "Started", "Status", "Graded", "Role")
	fmt.Println(strings.Repeat("─", 100))
	for _, ls := range sessions {
		graded := "no"
		if ls.Summary != "" {
			graded = "yes"
		}
		fmt.Printf("%-36s  %-19s  %-10s  %-7s  %s\n",
			ls.ID,
			ls.StartedAt.Local().Format("2006-01-02 15:04:05"),
			ls.Status,
			graded,
			ls.Role,
		)
	}
	return nil
}
