package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/intervue/internal/store"
)

var abandonCmd = &cobra.Command{
	Use:   "abandon",
	Short: "Forget the interview in progress",
	Long: `Forget the interview in progress so the next run starts fresh. The
session is only dropped on this machine; answers already submitted stay
on the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		active, err := st.SessionRepo().Active(ctx)
		if err != nil {
			return err
		}
		if active == nil {
			fmt.Println("No interview in progress.")
			return nil
		}

		if err := st.SessionRepo().ClearActive(ctx, ""); err != nil {
			return err
		}
		_ = st.EventRepo().AppendSessionEvent(ctx, store.SessionEventData{
			SessionID: active.SessionID,
			Role:      active.Role,
			Mode:      active.Mode,
			Action:    "abandon",
		})

		fmt.Printf("Forgot interview %s (%s).\n", active.SessionID, active.Role)
		return nil
	},
}
