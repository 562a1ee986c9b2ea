package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/chatroom-server/internal/store"
	"github.com/vovakirdan/chatroom-server/internal/store/sqlite"
)

func newBanCmd() *cobra.Command {
	ban := &cobra.Command{
		Use:   "ban",
		Short: "Manage chat bans directly in the database",
	}

	var reason string
	add := &cobra.Command{
		Use:   "add <battleTag> <yyyy-MM-dd>",
		Short: "Ban a battle tag until the given date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			endDate, err := store.ParseBanDate(args[1])
			if err != nil {
				return err
			}
			return withStore(func(st *sqlite.SQLiteStore) error {
				b := &store.Ban{BattleTag: args[0], EndDate: endDate, Reason: reason}
				if err := st.SaveBan(cmd.Context(), b); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "banned %s until %s\n", b.BattleTag, b.EndDate)
				return nil
			})
		},
	}
	add.Flags().StringVar(&reason, "reason", "", "ban reason shown to the user")

	remove := &cobra.Command{
		Use:   "remove <battleTag>",
		Short: "Lift a ban",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *sqlite.SQLiteStore) error {
				if err := st.DeleteBan(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "unbanned %s\n", args[0])
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List bans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(func(st *sqlite.SQLiteStore) error {
				bans, err := st.ListBans(cmd.Context())
				if err != nil {
					return err
				}
				if len(bans) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no bans")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "BATTLETAG\tEND DATE\tREASON")
				for _, b := range bans {
					fmt.Fprintf(w, "%s\t%s\t%s\n", b.BattleTag, b.EndDate, b.Reason)
				}
				return w.Flush()
			})
		},
	}

	ban.AddCommand(add, remove, list)
	return ban
}

func withStore(fn func(*sqlite.SQLiteStore) error) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	return fn(st)
}
