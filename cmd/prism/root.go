package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/codwats/prism/internal/config"
	"github.com/codwats/prism/internal/events"
	"github.com/codwats/prism/internal/facade"
	"github.com/codwats/prism/internal/logging"
	"github.com/codwats/prism/internal/scryfall"
	"github.com/codwats/prism/internal/storage"
)

// cli holds the flags and the lazily opened services of one invocation.
type cli struct {
	configPath string
	dbPath     string
	verbosity  int

	cfg         *config.Config
	storage     *storage.Service
	collections *facade.CollectionFacade
	cards       *facade.CardFacade

	// Overridable in tests.
	lookup scryfall.Lookup
	now    func() time.Time
}

func newCLI() *cli {
	return &cli{now: time.Now}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "prism",
		Short: "Stripe marking for shared Commander cards",
		Long: `PRISM finds the cards your Commander decks share and assigns every deck a
fixed stripe colour and position, so one physical copy of a card can be moved
between decks and always put back where it belongs.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.prism/config.toml)")
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "database file (overrides storage.db_path)")
	root.PersistentFlags().CountVarP(&c.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG)")

	root.AddCommand(
		c.newCmd(),
		c.listCmd(),
		c.useCmd(),
		c.deleteCmd(),
		c.deckCmd(),
		c.processCmd(),
		c.reorderCmd(),
		c.overlapCmd(),
		c.markCmd(true),
		c.markCmd(false),
		c.importCmd(),
		c.historyCmd(),
		c.watchCmd(),
		c.cardCmd(),
		c.configCmd(),
		versionCmd(),
	)
	return root
}

// setup loads the configuration and configures logging.
func (c *cli) setup(cmd *cobra.Command) error {
	var err error
	if c.configPath != "" {
		c.cfg, err = config.LoadFrom(c.configPath)
	} else {
		c.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if c.dbPath != "" {
		c.cfg.Storage.DBPath = c.dbPath
	}

	// Setup logs its own warning when the log file cannot be opened.
	_ = logging.Setup(logging.LevelForVerbosity(c.verbosity), cmd.ErrOrStderr(), c.cfg.Log.File)
	log.Debug().Str("command", cmd.Name()).Msg("Command started")
	return nil
}

// open connects to the database and builds the facades. Commands that never touch
// a collection do not call it.
func (c *cli) open() error {
	if c.collections != nil {
		return nil
	}

	path := c.cfg.Storage.DBPath
	if path == "" {
		path = storage.DefaultPath()
	}
	db, err := storage.Open(storage.DefaultConfig(path))
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", path, err)
	}
	c.storage = storage.NewService(db)
	c.storage.SetSnapshotRetention(c.cfg.Storage.SnapshotRetention)

	services := facade.NewServices(c.cfg, c.storage, logging.Get("cli"))
	services.Now = c.now
	services.Events = events.NewEventDispatcher(logging.Get("events"))
	services.Events.Register(events.NewLoggingObserver(logging.Get("events"), c.verbosity > 1))
	if c.lookup != nil {
		services.Scryfall = c.lookup
	}
	c.collections = facade.NewCollectionFacade(services)
	c.cards = facade.NewCardFacade(services)
	return nil
}

func (c *cli) close() error {
	if c.storage == nil {
		return nil
	}
	err := c.storage.Close()
	c.storage = nil
	c.collections = nil
	c.cards = nil
	return err
}
