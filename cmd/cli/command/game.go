package command

import (
	"fmt"
	"strings"
	"time"

	"questlog/internal/models"

	"github.com/spf13/cobra"
)

func (c *cli) searchCmd() *cobra.Command {
	var remote bool
	var limit int
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search stored games by name, or IGDB with --remote",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			if remote {
				games, err := c.app.Library.Search(cmd.Context(), query)
				if err != nil {
					return err
				}
				for _, g := range games {
					fmt.Fprintf(out, "%8d  %s%s\n", g.ID, g.Name, year(g.ReleaseDates))
				}
				return nil
			}

			games, err := c.app.Games.SearchLocal(cmd.Context(), query, limit)
			if err != nil {
				return err
			}
			if len(games) == 0 {
				fmt.Fprintln(out, "No stored games match")
				return nil
			}
			for _, g := range games {
				fmt.Fprintf(out, "%8d  %s%s\n", g.ID, g.Name, year(g.ReleaseDates))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&remote, "remote", "r", false, "search IGDB instead of the local store")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum local results")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [game_id]",
		Short: "Show everything stored about a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			game, err := c.app.Games.GetFull(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d)%s\n", game.Name, game.ID, year(game.ReleaseDates))
			if game.Summary != nil {
				fmt.Fprintf(out, "\n%s\n", *game.Summary)
			}
			printRefs(cmd, "Genres", game.Genres)
			printRefs(cmd, "Platforms", game.Platforms)
			printRefs(cmd, "Themes", game.Themes)
			printRefs(cmd, "Franchises", game.Franchises)

			var devs, pubs []string
			for _, ic := range game.InvolvedCompanies {
				if ic.Developer {
					devs = append(devs, ic.Company.Name)
				}
				if ic.Publisher {
					pubs = append(pubs, ic.Company.Name)
				}
			}
			if len(devs) > 0 {
				fmt.Fprintf(out, "Developers: %s\n", strings.Join(devs, ", "))
			}
			if len(pubs) > 0 {
				fmt.Fprintf(out, "Publishers: %s\n", strings.Join(pubs, ", "))
			}
			for _, rd := range game.ReleaseDates {
				if rd.Platform != nil {
					fmt.Fprintf(out, "Released %s on %s\n", rd.Human, rd.Platform.Name)
				}
			}
			return nil
		},
	}
}

func printRefs(cmd *cobra.Command, label string, refs []models.NamedRef) {
	if len(refs) == 0 {
		return
	}
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", label, strings.Join(names, ", "))
}

func year(dates []models.ReleaseDate) string {
	var earliest *int64
	for _, d := range dates {
		if d.Date != nil && (earliest == nil || *d.Date < *earliest) {
			earliest = d.Date
		}
	}
	if earliest == nil {
		return ""
	}
	return fmt.Sprintf(" (%d)", time.Unix(*earliest, 0).UTC().Year())
}
