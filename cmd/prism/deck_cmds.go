package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/codwats/prism/internal/facade"
)

// deckFlags are the deck fields shared by `deck add` and `deck edit`.
type deckFlags struct {
	collection string
	name       string
	commander  string
	bracket    int
	color      string
	file       string
	moxfield   string
}

func (f *deckFlags) register(cmd *cobra.Command) {
	collectionFlag(cmd, &f.collection)
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "deck name")
	cmd.Flags().StringVar(&f.commander, "commander", "", "commander name")
	cmd.Flags().IntVarP(&f.bracket, "bracket", "b", 0, "power bracket (1-4)")
	cmd.Flags().StringVar(&f.color, "color", "", "stripe colour, e.g. #558CC1 (default: next free palette colour)")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "decklist file, - reads stdin")
	cmd.Flags().StringVar(&f.moxfield, "moxfield", "", "Moxfield deck URL or ID")
}

// request builds the facade request, reading the decklist file when one is given.
func (f *deckFlags) request(in io.Reader) (facade.AddDeckRequest, error) {
	req := facade.AddDeckRequest{
		Name:        f.name,
		Commander:   f.commander,
		Bracket:     f.bracket,
		Color:       f.color,
		MoxfieldURL: f.moxfield,
	}
	if f.file != "" && f.moxfield != "" {
		return req, fmt.Errorf("use either --file or --moxfield, not both")
	}

	switch f.file {
	case "":
	case "-":
		data, err := io.ReadAll(in)
		if err != nil {
			return req, fmt.Errorf("failed to read decklist from stdin: %w", err)
		}
		req.DeckList = string(data)
	default:
		data, err := os.ReadFile(f.file)
		if err != nil {
			return req, fmt.Errorf("failed to read decklist: %w", err)
		}
		req.DeckList = string(data)
	}
	return req, nil
}

func (c *cli) deckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage the decks of a collection",
	}
	cmd.AddCommand(c.deckAddCmd(), c.deckEditCmd(), c.deckRemoveCmd(), c.deckListCmd())
	return cmd
}

func (c *cli) deckAddCmd() *cobra.Command {
	var flags deckFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a deck from a decklist file or Moxfield",
		Example: `  prism deck add --name "Atraxa Superfriends" --bracket 3 --file atraxa.txt
  prism deck add --bracket 2 --moxfield https://moxfield.com/decks/abc123`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if req.DeckList == "" && req.MoxfieldURL == "" {
				return fmt.Errorf("a deck needs --file or --moxfield")
			}
			if err := c.open(); err != nil {
				return err
			}
			result, err := c.collections.AddDeck(cmd.Context(), flags.collection, req)
			if err != nil {
				return err
			}
			printDeckResult(cmd.OutOrStdout(), "Added", result)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *cli) deckEditCmd() *cobra.Command {
	var flags deckFlags
	cmd := &cobra.Command{
		Use:   "edit <deck>",
		Short: "Change a deck; omitted flags keep their values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := c.open(); err != nil {
				return err
			}
			result, err := c.collections.UpdateDeck(cmd.Context(), flags.collection, args[0], req)
			if err != nil {
				return err
			}
			printDeckResult(cmd.OutOrStdout(), "Updated", result)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *cli) deckRemoveCmd() *cobra.Command {
	var ref string
	cmd := &cobra.Command{
		Use:     "remove <deck>",
		Aliases: []string{"rm"},
		Short:   "Remove a deck",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.open(); err != nil {
				return err
			}
			result, err := c.collections.RemoveDeck(cmd.Context(), ref, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", warnStyle.Render("Removed"), result.Deck.Name)
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Decks after it moved up one slot. Run `prism process` to see which stripes move."))
			return nil
		},
	}
	collectionFlag(cmd, &ref)
	return cmd
}

func (c *cli) deckListCmd() *cobra.Command {
	var ref string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the decks of a collection",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.open(); err != nil {
				return err
			}
			col, err := c.collections.Get(cmd.Context(), ref)
			if err != nil {
				return err
			}
			printDecks(cmd.OutOrStdout(), col)
			return nil
		},
	}
	collectionFlag(cmd, &ref)
	return cmd
}

func printDeckResult(w io.Writer, verb string, result *facade.DeckResult) {
	d := result.Deck
	fmt.Fprintf(w, "%s %s (%d cards, bracket %d, %s)\n",
		successStyle.Render(verb), d.Name, d.CardCount(), d.Bracket, swatch(d.AssignedColor))
	for _, warning := range result.Warnings {
		fmt.Fprintln(w, warnStyle.Render("  warning: ")+warning.Message)
	}
	for _, skipped := range result.Skipped {
		fmt.Fprintln(w, warnStyle.Render("  skipped: ")+skipped.Error())
	}
}
