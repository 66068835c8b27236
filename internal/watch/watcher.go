// Package watch reprocesses a directory of decklist files whenever it changes.
//
// Every *.txt file in the directory is one deck named after the file. Deck IDs are
// derived from the file name, so a deck keeps its colour while its file is edited.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/codwats/prism/internal/deckimport"
	"github.com/codwats/prism/internal/logging"
	"github.com/codwats/prism/internal/prism"
)

// deckNamespace seeds the name based deck IDs.
var deckNamespace = uuid.MustParse("6f1d2c8e-4b0a-4c7e-9a53-3d1f0e6b9a21")

// DefaultBracket is given to decks read from files.
const DefaultBracket = 3

// Config holds watch mode settings.
type Config struct {
	// Dir is the directory holding one decklist per *.txt file.
	Dir string

	// Debounce is the quiet period after the last file event before reprocessing.
	Debounce time.Duration

	// PollInterval rescans the directory in case file events are missed. 0 disables it.
	PollInterval time.Duration

	// Options are the processing options (palette and deck limit).
	Options prism.Options

	// Bracket is the power bracket of every deck. 0 means DefaultBracket.
	Bracket int
}

// FileProblem is a decklist file that could not be used as a deck.
type FileProblem struct {
	File   string                  `json:"file"`
	Reason string                  `json:"reason"`
	Lines  []deckimport.ParseError `json:"lines,omitempty"`
}

// Result is the outcome of one scan.
type Result struct {
	Data      *prism.ProcessedData `json:"data"`
	Delta     *prism.Delta         `json:"delta"`
	Problems  []FileProblem        `json:"problems"`
	ScannedAt time.Time            `json:"scannedAt"`
}

// Changed reports whether the scan changed any card marks.
func (r *Result) Changed() bool {
	return r != nil && r.Delta != nil && r.Delta.Summary.Total() > 0
}

// Watcher watches a decklist directory.
type Watcher struct {
	cfg      Config
	parser   *deckimport.Parser
	onChange func(*Result)
	logger   zerolog.Logger

	mu       sync.Mutex
	previous *prism.ProcessedData

	stopChan chan struct{}
	stopOnce sync.Once
}

// New creates a watcher for cfg.Dir. onChange receives the first scan and every
// later scan that changed card marks; it may be nil.
func New(cfg Config, onChange func(*Result)) (*Watcher, error) {
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", cfg.Dir)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if cfg.Bracket == 0 {
		cfg.Bracket = DefaultBracket
	}

	return &Watcher{
		cfg:      cfg,
		parser:   deckimport.NewParser(),
		onChange: onChange,
		logger:   logging.Get("watch"),
		stopChan: make(chan struct{}),
	}, nil
}

// SetBaseline makes data the snapshot the next scan is compared against. Decks of
// data keep their colours and stripe positions.
func (w *Watcher) SetBaseline(data *prism.ProcessedData) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.previous = data
}

// DeckID returns the ID given to the deck read from a file with the given stem.
func DeckID(name string) string {
	return uuid.NewSHA1(deckNamespace, []byte(strings.ToLower(strings.TrimSpace(name)))).String()
}

// Scan reads every decklist, processes them and compares the result with the
// previous scan. Unreadable files are reported in Result.Problems and skipped.
func (w *Watcher) Scan() (*Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	defer logging.LogOperationStart(w.logger, "scan")()

	decks, problems, err := w.readDecks()
	if err != nil {
		return nil, err
	}

	data, err := prism.Process(decks, w.cfg.Options)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Data:      data,
		Delta:     prism.CalculateDelta(w.previous, data),
		Problems:  problems,
		ScannedAt: time.Now().UTC(),
	}
	w.previous = data
	return result, nil
}

func (w *Watcher) readDecks() ([]prism.Deck, []FileProblem, error) {
	files, err := filepath.Glob(filepath.Join(w.cfg.Dir, "*.txt"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list decklists: %w", err)
	}
	sort.Strings(files)

	// Decks seen before keep their colour and slot; new files take free ones.
	colors := map[string]string{}
	positions := map[string]int{}
	if w.previous != nil {
		colors = w.previous.ColorPalette
		for _, d := range w.previous.Decks {
			positions[d.ID] = d.StripePosition
		}
	}

	decks := make([]prism.Deck, 0, len(files))
	problems := make([]FileProblem, 0)
	for _, file := range files {
		base := filepath.Base(file)
		content, err := os.ReadFile(file)
		if err != nil {
			problems = append(problems, FileProblem{File: base, Reason: err.Error()})
			continue
		}

		parsed := w.parser.Parse(string(content))
		if !parsed.OK() {
			problems = append(problems, FileProblem{File: base, Reason: "no readable cards", Lines: parsed.Errors})
			continue
		}
		if len(parsed.Errors) > 0 {
			problems = append(problems, FileProblem{File: base, Reason: "lines skipped", Lines: parsed.Errors})
		}

		name := strings.TrimSuffix(base, filepath.Ext(base))
		id := DeckID(name)
		decks = append(decks, prism.Deck{
			ID:             id,
			Name:           name,
			Commander:      parsed.Commander,
			Bracket:        w.cfg.Bracket,
			Cards:          parsed.Cards,
			AssignedColor:  colors[id],
			StripePosition: positions[id],
		})
	}
	return decks, problems, nil
}

// Run scans once, then rescans after file changes settle and on every poll tick
// until ctx is cancelled or Stop is called.
func (w *Watcher) Run(ctx context.Context) (err error) {
	w.rescan(true)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := watcher.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}
	w.logger.Info().Str("dir", w.cfg.Dir).Msg("Watching decklists")

	var poll <-chan time.Time
	if w.cfg.PollInterval > 0 {
		ticker := time.NewTicker(w.cfg.PollInterval)
		defer ticker.Stop()
		poll = ticker.C
	}

	debounce := time.NewTimer(w.cfg.Debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-w.stopChan:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isDecklist(event.Name) || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Decklist changed")
			debounce.Reset(w.cfg.Debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("File watcher error")
		case <-debounce.C:
			w.rescan(false)
		case <-poll:
			// Backup polling in case file events are missed
			w.rescan(false)
		}
	}
}

// Stop stops Run. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}

func (w *Watcher) rescan(always bool) {
	result, err := w.Scan()
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to process decklists")
		return
	}
	for _, p := range result.Problems {
		w.logger.Warn().Str("file", p.File).Int("lines", len(p.Lines)).Msg(p.Reason)
	}
	if !always && !result.Changed() {
		return
	}
	w.logger.Info().
		Int("decks", len(result.Data.Decks)).
		Int("new", result.Delta.Summary.NewCards).
		Int("updated", result.Delta.Summary.UpdatedCards).
		Int("removed", result.Delta.Summary.RemovedCards).
		Msg("Decklists processed")
	if w.onChange != nil {
		w.onChange(result)
	}
}

func isDecklist(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".txt")
}
