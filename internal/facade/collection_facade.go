package facade

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codwats/prism/internal/events"
	"github.com/codwats/prism/internal/prism"
	"github.com/codwats/prism/internal/storage"
)

// CollectionFacade handles collection and deck operations.
type CollectionFacade struct {
	services *Services
}

// NewCollectionFacade creates a new CollectionFacade with the given services.
func NewCollectionFacade(services *Services) *CollectionFacade {
	return &CollectionFacade{services: services}
}

func (f *CollectionFacade) storage() (*storage.Service, error) {
	if f.services.Storage == nil {
		return nil, &AppError{Message: "Database not initialized"}
	}
	return f.services.Storage, nil
}

// Create stores a new empty collection. The first collection becomes the current one.
func (f *CollectionFacade) Create(ctx context.Context, name string) (*prism.Collection, error) {
	store, err := f.storage()
	if err != nil {
		return nil, err
	}

	c := prism.NewCollection(name)
	if err := store.SaveCollection(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	if _, err := store.GetCurrentCollection(ctx); errors.Is(err, storage.ErrNoCurrentCollection) {
		if err := store.SetCurrentCollection(ctx, c.ID); err != nil {
			return nil, err
		}
	}

	f.services.Logger.Info().Str("collection", c.ID).Str("name", c.Name).Msg("Created collection")
	f.notifyUpdated(ctx, c, "created")
	return c, nil
}

// List returns all collections.
func (f *CollectionFacade) List(ctx context.Context) ([]storage.CollectionSummary, error) {
	store, err := f.storage()
	if err != nil {
		return nil, err
	}
	return store.ListCollections(ctx)
}

// Get loads a collection by ID or case-insensitive name. An empty ref means the
// current collection.
func (f *CollectionFacade) Get(ctx context.Context, ref string) (*prism.Collection, error) {
	store, err := f.storage()
	if err != nil {
		return nil, err
	}

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return store.GetCurrentCollection(ctx)
	}

	c, err := store.GetCollection(ctx, ref)
	if err == nil || !errors.Is(err, storage.ErrCollectionNotFound) {
		return c, err
	}

	summaries, listErr := store.ListCollections(ctx)
	if listErr != nil {
		return nil, listErr
	}
	for _, s := range summaries {
		if strings.EqualFold(s.Name, ref) {
			return store.GetCollection(ctx, s.ID)
		}
	}
	return nil, err
}

// Current loads the current collection.
func (f *CollectionFacade) Current(ctx context.Context) (*prism.Collection, error) {
	return f.Get(ctx, "")
}

// Use makes a collection the current one.
func (f *CollectionFacade) Use(ctx context.Context, ref string) (*prism.Collection, error) {
	c, err := f.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := f.services.Storage.SetCurrentCollection(ctx, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a collection with its decks, marks and snapshots.
func (f *CollectionFacade) Delete(ctx context.Context, ref string) (*prism.Collection, error) {
	c, err := f.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := f.services.Storage.DeleteCollection(ctx, c.ID); err != nil {
		return nil, err
	}
	f.services.Logger.Info().Str("collection", c.ID).Msg("Deleted collection")
	f.services.dispatch(events.NewTypedEvent(ctx, events.TypeCollectionDeleted, events.CollectionDeletedEvent{
		CollectionID: c.ID,
		Name:         c.Name,
	}))
	return c, nil
}

// SetMarked records whether the physical copy of a card has been painted.
func (f *CollectionFacade) SetMarked(ctx context.Context, ref, cardName string, marked bool) (*prism.Collection, error) {
	if prism.CardKey(cardName) == "" {
		return nil, &ValidationError{Message: "card name is required"}
	}
	reason := "unmarked"
	if marked {
		reason = "marked"
	}
	return f.update(ctx, ref, reason, func(c *prism.Collection) error {
		c.SetMarked(cardName, marked)
		return nil
	})
}

// Reorder applies a manual deck order: order[i] is the current index of the deck
// that moves to slot i+1.
func (f *CollectionFacade) Reorder(ctx context.Context, ref string, order []int) (*prism.Collection, error) {
	return f.update(ctx, ref, "reorder", func(c *prism.Collection) error {
		decks, err := prism.ReorderDecks(c.Decks, order)
		if err != nil {
			return err
		}
		c.SetDecks(decks)
		return nil
	})
}

// ReorderByID applies a manual deck order given as deck IDs.
func (f *CollectionFacade) ReorderByID(ctx context.Context, ref string, ids []string) (*prism.Collection, error) {
	return f.update(ctx, ref, "reorder", func(c *prism.Collection) error {
		decks, err := prism.ReorderDecksByID(c.Decks, ids)
		if err != nil {
			return err
		}
		c.SetDecks(decks)
		return nil
	})
}

// AutoOrder chains decks so that decks sharing the most cards sit next to each other.
func (f *CollectionFacade) AutoOrder(ctx context.Context, ref string) (*prism.Collection, error) {
	return f.update(ctx, ref, "reorder", func(c *prism.Collection) error {
		c.SetDecks(prism.OrderDecksBySharing(c.Decks))
		return nil
	})
}

// OverlapReport is the shared card analysis of a collection.
type OverlapReport struct {
	Decks  []string            `json:"decks"`
	Matrix [][]int             `json:"matrix"`
	Pairs  []prism.DeckOverlap `json:"pairs"`
}

// Overlap computes how many cards every pair of decks shares.
func (f *CollectionFacade) Overlap(ctx context.Context, ref string) (*OverlapReport, error) {
	c, err := f.Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(c.Decks))
	for i, d := range c.Decks {
		names[i] = d.Name
	}
	return &OverlapReport{
		Decks:  names,
		Matrix: prism.OverlapMatrix(c.Decks),
		Pairs:  prism.PairwiseOverlap(c.Decks),
	}, nil
}

// update loads a collection, applies edit and saves it when edit succeeds.
func (f *CollectionFacade) update(ctx context.Context, ref, reason string, edit func(c *prism.Collection) error) (*prism.Collection, error) {
	c, err := f.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := edit(c); err != nil {
		return nil, err
	}
	if err := f.services.Storage.SaveCollection(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save collection: %w", err)
	}
	f.notifyUpdated(ctx, c, reason)
	return c, nil
}

func (f *CollectionFacade) notifyUpdated(ctx context.Context, c *prism.Collection, reason string) {
	f.services.dispatch(events.NewTypedEvent(ctx, events.TypeCollectionUpdated, events.CollectionUpdatedEvent{
		CollectionID: c.ID,
		Name:         c.Name,
		DeckCount:    len(c.Decks),
		Reason:       reason,
	}))
}
