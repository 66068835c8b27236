package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codwats/prism/internal/export"
	"github.com/codwats/prism/internal/prism"
	"github.com/codwats/prism/internal/version"
	"github.com/codwats/prism/internal/watch"
)

func (c *cli) watchCmd() *cobra.Command {
	var (
		bracket int
		outputs watchOutputs
	)
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Reprocess a directory of decklist files whenever one changes",
		Long: `Watch a directory holding one decklist per .txt file. Every file is a deck named
after the file; colours stick to file names between runs. After each change the
new stripe changes are printed, and optionally written to CSV files.

With --state the result is saved as a JSON snapshot after every change. The next
run starts from it, so decks keep their colours and only real changes are shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			report := func(r *watch.Result) {
				printWatchResult(out, r)
				if err := c.writeWatchOutputs(out, r, outputs); err != nil {
					fmt.Fprintln(out, errorStyle.Render("Error:"), err)
				}
			}

			w, err := watch.New(watch.Config{
				Dir:          args[0],
				Debounce:     c.cfg.WatchDebounce(),
				PollInterval: c.cfg.WatchPollInterval(),
				Options:      c.cfg.Options(),
				Bracket:      bracket,
			}, report)
			if err != nil {
				return err
			}
			outputs.dir = args[0]
			if outputs.state != "" {
				baseline, err := loadWatchState(outputs.state)
				if err != nil {
					return err
				}
				if baseline != nil {
					w.SetBaseline(baseline)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(out, "%s %s %s\n", titleStyle.Render("Watching"), args[0], mutedStyle.Render("(Ctrl+C to stop)"))
			return w.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&bracket, "bracket", "b", watch.DefaultBracket, "power bracket of every deck")
	cmd.Flags().StringVar(&outputs.csv, "csv", "", "rewrite the cards CSV after every change")
	cmd.Flags().StringVar(&outputs.changes, "changes", "", "rewrite the changes CSV after every change")
	cmd.Flags().StringVar(&outputs.state, "state", "", "JSON snapshot to resume from and rewrite after every change")
	return cmd
}

func printWatchResult(w io.Writer, r *watch.Result) {
	fmt.Fprintf(w, "\n%s %s\n", titleStyle.Render("Processed"), mutedStyle.Render(r.ScannedAt.Local().Format("15:04:05")))
	for _, p := range r.Problems {
		fmt.Fprintf(w, "%s %s: %s\n", warnStyle.Render("warning:"), p.File, p.Reason)
	}
	printSlots(w, r.Data.Decks)
	printDelta(w, r.Delta, deltaLimit)
}

// watchOutputs are the files rewritten after every watch result.
type watchOutputs struct {
	dir     string
	csv     string
	changes string
	state   string
}

func (c *cli) writeWatchOutputs(out io.Writer, r *watch.Result, files watchOutputs) error {
	outputs := []output{
		{files.csv, func(w io.Writer) error { return export.WriteCardsCSV(w, r.Data, c.cfg.Prism.CSVSlots) }},
		{files.changes, func(w io.Writer) error { return export.WriteChangesCSV(w, r.Delta) }},
		{files.state, func(w io.Writer) error {
			col := &prism.Collection{ID: "watch", Name: filepath.Base(files.dir)}
			return export.WriteSnapshot(w, export.BuildSnapshot(col, r.Data, r.ScannedAt))
		}},
	}
	for _, o := range outputs {
		if o.path == "" {
			continue
		}
		if err := export.NewExporter(export.Options{FilePath: o.path, Overwrite: true}).WriteWith(o.write); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", successStyle.Render("Wrote"), o.path)
	}
	return nil
}

// loadWatchState returns the result saved by an earlier watch run, or nil when
// path does not exist yet.
func loadWatchState(path string) (*prism.ProcessedData, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	snap, err := export.LoadSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load watch state %s: %w", path, err)
	}
	return snap.ProcessedData(), nil
}

func (c *cli) cardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "card <name>",
		Short: "Look up a card on Scryfall",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.open(); err != nil {
				return err
			}
			card, err := c.cards.LookupCard(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", titleStyle.Render(card.Name), card.ManaCost)
			fmt.Fprintln(out, headerStyle.Render(card.TypeLine))
			if card.OracleText != "" {
				fmt.Fprintln(out, card.OracleText)
			}
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%s (%s) · %s", card.SetName, strings.ToUpper(card.SetCode), card.Rarity)))
			for _, link := range []string{card.ScryfallURI, card.ImageURL()} {
				if link != "" {
					fmt.Fprintln(out, mutedStyle.Render(link))
				}
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
