package facade

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/codwats/prism/internal/events"
	"github.com/codwats/prism/internal/export"
	"github.com/codwats/prism/internal/logging"
	"github.com/codwats/prism/internal/prism"
	"github.com/codwats/prism/internal/storage"
)

// ProcessResult is the outcome of processing a collection.
type ProcessResult struct {
	Collection *prism.Collection    `json:"collection"`
	Data       *prism.ProcessedData `json:"data"`
	Delta      *prism.Delta         `json:"delta"`

	// Previous is the last stored result, nil on the first run.
	Previous *prism.ProcessedData `json:"-"`

	// Saved is false when the result matches the previous one.
	Saved        bool `json:"saved"`
	MarksCleared int  `json:"marksCleared"`
}

// Process deduplicates the cards of a collection and assigns stripes. The result is
// compared with the last stored one; assigned colours and the new result are stored,
// and cards whose stripes changed lose their painted mark.
func (f *CollectionFacade) Process(ctx context.Context, ref string) (*ProcessResult, error) {
	defer logging.LogOperationStart(f.services.Logger, "process")()

	c, err := f.Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	data, err := prism.Process(c.Decks, f.services.config().Options())
	if err != nil {
		return nil, err
	}

	previous, err := f.services.Storage.LatestSnapshot(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous result: %w", err)
	}
	delta := prism.CalculateDelta(previous, data)

	// Keep the colours and positions handed out by this pass.
	c.SetDecks(data.Decks)
	cleared := c.ClearMarksFor(delta)

	saved, err := f.services.Storage.SaveProcessed(ctx, c, data)
	if err != nil {
		return nil, fmt.Errorf("failed to save processing result: %w", err)
	}

	f.services.Logger.Info().
		Str("collection", c.ID).
		Int("decks", data.Stats.TotalDecks).
		Int("unique_cards", data.Stats.TotalUniqueCards).
		Int("changes", delta.Summary.Total()).
		Bool("saved", saved).
		Msg("Processed collection")

	f.services.dispatch(events.NewTypedEvent(ctx, events.TypeCollectionProcessed, events.CollectionProcessedEvent{
		CollectionID: c.ID,
		Name:         c.Name,
		Stats:        data.Stats,
		Changes:      delta.Summary,
		Saved:        saved,
	}))

	return &ProcessResult{
		Collection:   c,
		Data:         data,
		Delta:        delta,
		Previous:     previous,
		Saved:        saved,
		MarksCleared: cleared,
	}, nil
}

// Preview processes a collection without storing anything.
func (f *CollectionFacade) Preview(ctx context.Context, ref string) (*prism.Collection, *prism.ProcessedData, error) {
	c, err := f.Get(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	data, err := prism.Process(c.Decks, f.services.config().Options())
	if err != nil {
		return nil, nil, err
	}
	return c, data, nil
}

// Snapshot builds the JSON export of a collection.
func (f *CollectionFacade) Snapshot(ctx context.Context, ref string) (*export.Snapshot, error) {
	c, data, err := f.Preview(ctx, ref)
	if err != nil {
		return nil, err
	}
	return export.BuildSnapshot(c, data, f.services.now()), nil
}

// Export writes a collection in format to w: the cards CSV, the JSON snapshot or
// the HTML marking guide.
func (f *CollectionFacade) Export(ctx context.Context, ref string, format export.Format, w io.Writer) error {
	c, data, err := f.Preview(ctx, ref)
	if err != nil {
		return err
	}

	switch format {
	case export.FormatCSV:
		return export.WriteCardsCSV(w, data, f.services.config().Prism.CSVSlots)
	case export.FormatJSON:
		return export.WriteSnapshot(w, export.BuildSnapshot(c, data, f.services.now()))
	case export.FormatHTML:
		return export.WriteGuide(w, c, data, f.services.now())
	default:
		return &ValidationError{Message: fmt.Sprintf("unsupported export format %q", format)}
	}
}

// Import stores the collection of a snapshot and makes it current. A snapshot whose
// collection already exists is imported as a copy with fresh IDs. The snapshot's
// processing result becomes the baseline of the next Process.
func (f *CollectionFacade) Import(ctx context.Context, snap *export.Snapshot) (*prism.Collection, error) {
	if snap == nil {
		return nil, &ValidationError{Message: "snapshot is empty"}
	}
	store, err := f.storage()
	if err != nil {
		return nil, err
	}

	src := snap.ToCollection()
	freshIDs := src.ID == ""
	if !freshIDs {
		_, err := store.GetCollection(ctx, src.ID)
		switch {
		case err == nil:
			freshIDs = true
		case !errors.Is(err, storage.ErrCollectionNotFound):
			return nil, err
		}
	}

	c := prism.NewCollection(src.Name)
	if !freshIDs {
		c.ID = src.ID
	}
	c.MarkedCards = src.MarkedCards

	limit := f.services.config().Prism.MaxDecks
	for _, d := range src.Decks {
		if freshIDs || d.ID == "" {
			d.ID = uuid.NewString()
		}
		if err := c.AddDeck(d, limit); err != nil {
			return nil, &ValidationError{Message: fmt.Sprintf("invalid deck %q in snapshot: %v", d.Name, err)}
		}
	}

	if err := store.SaveCollection(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save imported collection: %w", err)
	}
	if len(snap.Cards) > 0 {
		if _, err := store.SaveSnapshot(ctx, c.ID, snap.ProcessedData()); err != nil {
			return nil, fmt.Errorf("failed to save imported snapshot: %w", err)
		}
	}
	if err := store.SetCurrentCollection(ctx, c.ID); err != nil {
		return nil, err
	}

	f.services.Logger.Info().Str("collection", c.ID).Int("decks", len(c.Decks)).Msg("Imported collection")
	f.notifyUpdated(ctx, c, "import")
	return c, nil
}

// History lists the stored processing results of a collection, newest first.
func (f *CollectionFacade) History(ctx context.Context, ref string, limit int) ([]storage.SnapshotInfo, error) {
	c, err := f.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	return f.services.Storage.ListSnapshots(ctx, c.ID, limit)
}
