package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codwats/prism/internal/charts"
	"github.com/codwats/prism/internal/prism"
)

// collectionFlag registers --collection, the collection a command works on.
func collectionFlag(cmd *cobra.Command, ref *string) {
	cmd.Flags().StringVarP(ref, "collection", "c", "", "collection name or ID (default: current collection)")
}

func (c *cli) newCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.open(); err != nil {
				return err
			}
			col, err := c.collections.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", successStyle.Render("Created collection"), col.Name, col.ID)
			return nil
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List collections",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.open(); err != nil {
				return err
			}
			list, err := c.collections.List(cmd.Context())
			if err != nil {
				return err
			}
			printCollections(cmd.OutOrStdout(), list)
			return nil
		},
	}
}

func (c *cli) useCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <collection>",
		Short: "Select the collection other commands work on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.open(); err != nil {
				return err
			}
			col, err := c.collections.Use(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("Now using"), col.Name)
			return nil
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection>",
		Short: "Delete a collection with its decks and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.open(); err != nil {
				return err
			}
			col, err := c.collections.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", warnStyle.Render("Deleted collection"), col.Name)
			return nil
		},
	}
}

func (c *cli) reorderCmd() *cobra.Command {
	var (
		ref   string
		auto  bool
		order []int
	)
	cmd := &cobra.Command{
		Use:   "reorder",
		Short: "Change the stripe positions of decks",
		Long: `Reorder the decks of a collection. Stripe positions follow deck order, so a
reorder means repainting. --auto puts the decks sharing the most cards first;
--order lists the current 0-based deck indices in their new order.`,
		Example: "  prism reorder --auto\n  prism reorder --order 2,0,1",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if auto == (len(order) > 0) {
				return fmt.Errorf("use exactly one of --auto or --order")
			}
			if err := c.open(); err != nil {
				return err
			}

			var (
				col *prism.Collection
				err error
			)
			if auto {
				col, err = c.collections.AutoOrder(cmd.Context(), ref)
			} else {
				col, err = c.collections.Reorder(cmd.Context(), ref, order)
			}
			if err != nil {
				return err
			}
			printDecks(cmd.OutOrStdout(), col)
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Run `prism process` to see which stripes move."))
			return nil
		},
	}
	collectionFlag(cmd, &ref)
	cmd.Flags().BoolVar(&auto, "auto", false, "order decks by how many cards they share")
	cmd.Flags().IntSliceVar(&order, "order", nil, "new order as current deck indices, e.g. 2,0,1")
	return cmd
}

func (c *cli) overlapCmd() *cobra.Command {
	var ref, chart string
	cmd := &cobra.Command{
		Use:   "overlap",
		Short: "Show how many cards each pair of decks shares",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.open(); err != nil {
				return err
			}
			report, err := c.collections.Overlap(cmd.Context(), ref)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(report.Pairs) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("Overlap needs at least two decks."))
			} else {
				t := newTable("Deck", "Deck", "Shared")
				for _, p := range report.Pairs {
					t.Row(p.DeckA, p.DeckB, strconv.Itoa(p.Shared))
				}
				fmt.Fprintln(out, t.Render())
			}

			if chart == "" {
				return nil
			}
			col, err := c.collections.Get(cmd.Context(), ref)
			if err != nil {
				return err
			}
			cfg := charts.DefaultChartConfig()
			cfg.Subtitle = col.Name
			if err := charts.RenderToFile(chart, func(w io.Writer) error {
				return charts.RenderOverlapHeatMap(col.Decks, cfg, w)
			}); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", successStyle.Render("Wrote"), chart)
			return nil
		},
	}
	collectionFlag(cmd, &ref)
	cmd.Flags().StringVar(&chart, "chart", "", "write an HTML overlap heat map to this file")
	return cmd
}

func (c *cli) markCmd(marked bool) *cobra.Command {
	var ref string
	use, short, done := "mark <card>", "Record that a card's stripes are painted", "Marked"
	if !marked {
		use, short, done = "unmark <card>", "Clear the painted flag of a card", "Unmarked"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.open(); err != nil {
				return err
			}
			name := strings.Join(args, " ")
			if _, err := c.collections.SetMarked(cmd.Context(), ref, name, marked); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render(done), name)
			return nil
		},
	}
	collectionFlag(cmd, &ref)
	return cmd
}
