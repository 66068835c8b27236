package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/codwats/prism/internal/charts"
	"github.com/codwats/prism/internal/export"
	"github.com/codwats/prism/internal/prism"
)

// deltaLimit is the number of changes printed without --all.
const deltaLimit = 25

type processFlags struct {
	collection string
	csv        string
	json       string
	html       string
	changes    string
	chart      string
	all        bool
	dryRun     bool
}

func (c *cli) processCmd() *cobra.Command {
	var flags processFlags
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Assign stripes and show what changed since the last run",
		Long: `Deduplicate the cards of a collection, assign every deck its stripe colour and
position, and compare the result with the last run. Cards whose stripes changed
lose their painted mark.`,
		Example: "  prism process --csv cards.csv --changes changes.csv --html guide.html",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.open(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			var (
				col     *prism.Collection
				data    *prism.ProcessedData
				delta   *prism.Delta
				cleared int
			)
			if flags.dryRun {
				var err error
				col, data, err = c.collections.Preview(cmd.Context(), flags.collection)
				if err != nil {
					return err
				}
			} else {
				result, err := c.collections.Process(cmd.Context(), flags.collection)
				if err != nil {
					return err
				}
				col, data, delta, cleared = result.Collection, result.Data, result.Delta, result.MarksCleared
			}

			fmt.Fprintln(out, titleStyle.Render(col.Name))
			printStats(out, data.Stats)
			printSlots(out, data.Decks)
			if delta != nil {
				limit := deltaLimit
				if flags.all {
					limit = 0
				}
				printDelta(out, delta, limit)
			}
			if cleared > 0 {
				fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("%d painted cards need repainting and were unmarked.", cleared)))
			}

			return c.writeOutputs(out, flags, col, data, delta)
		},
	}

	collectionFlag(cmd, &flags.collection)
	cmd.Flags().StringVar(&flags.csv, "csv", "", "write the cards CSV to this file")
	cmd.Flags().StringVar(&flags.json, "json", "", "write a JSON snapshot to this file")
	cmd.Flags().StringVar(&flags.html, "html", "", "write the printable marking guide to this file")
	cmd.Flags().StringVar(&flags.changes, "changes", "", "write the changes since the last run as CSV")
	cmd.Flags().StringVar(&flags.chart, "chart", "", "write an HTML chart of the most shared cards")
	cmd.Flags().BoolVar(&flags.all, "all", false, "print every change")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "process without saving or comparing")
	return cmd
}

func printSlots(w io.Writer, decks []prism.Deck) {
	t := newTable("Slot", "Deck", "Colour")
	for _, d := range decks {
		t.Row(strconv.Itoa(d.StripePosition), d.Name, swatch(d.AssignedColor))
	}
	fmt.Fprintln(w, t.Render())
}

// output is a file written after processing.
type output struct {
	path  string
	write func(w io.Writer) error
}

func (c *cli) writeOutputs(out io.Writer, flags processFlags, col *prism.Collection, data *prism.ProcessedData, delta *prism.Delta) error {
	now := c.now()
	outputs := []output{
		{flags.csv, func(w io.Writer) error { return export.WriteCardsCSV(w, data, c.cfg.Prism.CSVSlots) }},
		{flags.json, func(w io.Writer) error { return export.WriteSnapshot(w, export.BuildSnapshot(col, data, now)) }},
		{flags.html, func(w io.Writer) error { return export.WriteGuide(w, col, data, now) }},
		{flags.chart, func(w io.Writer) error {
			cfg := charts.DefaultChartConfig()
			cfg.Subtitle = col.Name
			return charts.RenderMostSharedBar(data, cfg, w)
		}},
	}
	if flags.changes != "" {
		if delta == nil {
			return fmt.Errorf("--changes cannot be combined with --dry-run")
		}
		outputs = append(outputs, output{flags.changes, func(w io.Writer) error { return export.WriteChangesCSV(w, delta) }})
	}

	for _, o := range outputs {
		if o.path == "" {
			continue
		}
		exporter := export.NewExporter(export.Options{FilePath: o.path, Overwrite: true})
		if err := exporter.WriteWith(o.write); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", successStyle.Render("Wrote"), o.path)
	}
	return nil
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <snapshot.json>",
		Short: "Import a collection from a JSON snapshot and make it current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open snapshot: %w", err)
			}
			defer func() { _ = f.Close() }()

			snap, err := export.LoadSnapshot(f)
			if err != nil {
				return err
			}
			if err := c.open(); err != nil {
				return err
			}
			col, err := c.collections.Import(cmd.Context(), snap)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d decks)\n", successStyle.Render("Imported"), col.Name, len(col.Decks))
			return nil
		},
	}
}

func (c *cli) historyCmd() *cobra.Command {
	var (
		ref   string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the stored processing runs of a collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.open(); err != nil {
				return err
			}
			runs, err := c.collections.History(cmd.Context(), ref, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Not processed yet."))
				return nil
			}
			t := newTable("Run", "Processed", "Decks", "Cards", "Fingerprint")
			for _, r := range runs {
				t.Row(strconv.FormatInt(r.ID, 10), r.CreatedAt.Local().Format("2006-01-02 15:04"),
					strconv.Itoa(r.DeckCount), strconv.Itoa(r.CardCount), r.Fingerprint[:12])
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	collectionFlag(cmd, &ref)
	cmd.Flags().IntVar(&limit, "limit", 10, "number of runs to show")
	return cmd
}
