package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"questlog/internal/models"

	"github.com/spf13/cobra"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid game id %q", arg)
	}
	return id, nil
}

func (c *cli) discoverCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "discover [game_id]",
		Short: "Start tracking a game, fetching it from IGDB if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			st, err := models.ParseStatus(status)
			if err != nil {
				return err
			}
			quest, err := c.app.Library.Discover(cmd.Context(), id, st)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tracking game %d in %s%s\n", id, quest.Status, position(quest.Priority))
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", string(models.StatusBacklog), "list to add the game to")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [status]",
		Short: "List one status in priority order, or count every status",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				counts, err := c.app.Library.Summary(cmd.Context())
				if err != nil {
					return err
				}
				for _, st := range models.Statuses {
					fmt.Fprintf(out, "%-13s %d\n", st, counts[st])
				}
				return nil
			}

			st, err := models.ParseStatus(args[0])
			if err != nil {
				return err
			}
			entries, err := c.app.Library.Board(cmd.Context(), st)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(out, "No games in %s\n", st)
				return nil
			}
			for i, e := range entries {
				name := "(unknown)"
				if e.Game != nil {
					name = e.Game.Name
				}
				line := fmt.Sprintf("%3d. %s [%d]", i+1, name, e.Quest.GameID)
				if e.Quest.PersonalRating != nil {
					line += fmt.Sprintf(" %d/10", *e.Quest.PersonalRating)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	return cmd
}

func (c *cli) moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move [game_id] [status]",
		Short: "Move a tracked game to the end of another list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			st, err := models.ParseStatus(args[1])
			if err != nil {
				return err
			}
			if err := c.app.Library.ChangeStatus(cmd.Context(), id, st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved game %d to %s\n", id, st)
			return nil
		},
	}
}

func (c *cli) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [game_id]",
		Short: "Stop tracking a game; its rating and notes are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.Library.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed game %d\n", id)
			return nil
		},
	}
}

func (c *cli) reorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder [status] [from] [to]",
		Short: "Move the game at position from to position to (1-based, as listed)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := models.ParseStatus(args[0])
			if err != nil {
				return err
			}
			from, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}
			to, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[2])
			}
			if err := c.app.Library.Reorder(cmd.Context(), st, from-1, to-1); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s #%d to #%d\n", st, from, to)
			return nil
		},
	}
}

func (c *cli) rateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate [game_id] [1-10|clear]",
		Short: "Set or clear your rating for a game",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var rating *int
			if args[1] != "clear" {
				r, err := strconv.Atoi(args[1])
				if err != nil {
					return models.ErrInvalidRating
				}
				rating = &r
			}
			return c.app.Library.Rate(cmd.Context(), id, rating)
		},
	}
}

func (c *cli) noteCmd() *cobra.Command {
	var clearNotes bool
	cmd := &cobra.Command{
		Use:   "note [game_id] [text...]",
		Short: "Replace the notes on a game",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var notes *string
			if !clearNotes {
				if len(args) < 2 {
					return fmt.Errorf("note text is required unless --clear is given")
				}
				text := strings.Join(args[1:], " ")
				notes = &text
			}
			return c.app.Library.Annotate(cmd.Context(), id, notes)
		},
	}
	cmd.Flags().BoolVar(&clearNotes, "clear", false, "remove the notes")
	return cmd
}

func (c *cli) completeCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "complete [game_id]",
		Short: "Mark a game completed, today unless --date is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var when *time.Time
			if date != "" {
				parsed, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
				}
				when = &parsed
			}
			if err := c.app.Library.Complete(cmd.Context(), id, when); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed game %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "completion date (YYYY-MM-DD)")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "import [game_id...]",
		Short: "Fetch many games from IGDB and track them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := models.ParseStatus(status)
			if err != nil {
				return err
			}
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			report, err := c.app.Library.Import(cmd.Context(), ids, st)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d of %d games into %s\n", len(report.Imported), len(ids), st)
			for id, reason := range report.Failed {
				fmt.Fprintf(out, "  %d: %s\n", id, reason)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", string(models.StatusBacklog), "list to add the games to")
	return cmd
}

func position(priority *int) string {
	if priority == nil {
		return ""
	}
	return fmt.Sprintf(" at #%d", *priority)
}
