package storage

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/codwats/prism/internal/prism"
	"github.com/codwats/prism/internal/storage/models"
	"github.com/codwats/prism/internal/storage/repository"
)

// currentCollectionKey is the settings key of the collection the CLI works on.
const currentCollectionKey = "current_collection"

var (
	// ErrCollectionNotFound is returned when a collection ID does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrNoCurrentCollection is returned when no collection has been selected.
	ErrNoCurrentCollection = errors.New("no current collection selected")
)

// CollectionSummary is a collection listing entry.
type CollectionSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	DeckCount int       `json:"deckCount"`
	Current   bool      `json:"current"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SnapshotInfo describes a stored processing result without its payload.
type SnapshotInfo struct {
	ID          int64     `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	DeckCount   int       `json:"deckCount"`
	CardCount   int       `json:"cardCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Service provides high-level operations for storing and retrieving collections.
type Service struct {
	db    *DB
	repos *Repositories

	// snapshotRetention is the number of snapshots kept per collection; 0 keeps all.
	snapshotRetention int
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db:    db,
		repos: NewRepositories(db.Conn()),
	}
}

// SetSnapshotRetention limits how many snapshots are kept per collection.
func (s *Service) SetSnapshotRetention(n int) {
	s.snapshotRetention = n
}

// CardCache exposes the card lookup cache.
func (s *Service) CardCache() repository.CardCacheRepository {
	return s.repos.CardCache
}

// Ping reports whether the database answers.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the underlying database.
func (s *Service) Close() error {
	return s.db.Close()
}

// SaveCollection stores a collection, replacing its decks, cards and marks in a
// single transaction. Each deck keeps its stripe position.
func (s *Service) SaveCollection(ctx context.Context, c *prism.Collection) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("collection must have an ID")
	}
	return s.db.WithTransaction(ctx, func(r *Repositories) error {
		return saveCollection(ctx, r, c)
	})
}

// SaveProcessed stores a processed collection together with its processing result.
// Either both are written or neither is. The bool reports whether a new snapshot
// was stored.
func (s *Service) SaveProcessed(ctx context.Context, c *prism.Collection, data *prism.ProcessedData) (bool, error) {
	if c == nil || c.ID == "" {
		return false, fmt.Errorf("collection must have an ID")
	}

	var saved bool
	err := s.db.WithTransaction(ctx, func(r *Repositories) error {
		if err := saveCollection(ctx, r, c); err != nil {
			return err
		}
		var err error
		saved, err = s.saveSnapshot(ctx, r, c.ID, data)
		return err
	})
	if err != nil {
		return false, err
	}
	return saved, nil
}

func saveCollection(ctx context.Context, r *Repositories, c *prism.Collection) error {
	if err := r.Collections.Upsert(ctx, &models.Collection{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}); err != nil {
		return err
	}

	if err := r.Decks.DeleteByCollection(ctx, c.ID); err != nil {
		return err
	}

	positions := prism.AssignPositions(c.Decks)
	for _, d := range c.Decks {
		if err := r.Decks.Create(ctx, &models.Deck{
			ID:           d.ID,
			CollectionID: c.ID,
			Position:     positions[d.ID],
			Name:         d.Name,
			Commander:    d.Commander,
			Bracket:      d.Bracket,
			Color:        d.AssignedColor,
			CreatedAt:    d.CreatedAt,
			UpdatedAt:    d.UpdatedAt,
		}); err != nil {
			return fmt.Errorf("failed to save deck %q: %w", d.Name, err)
		}

		cards := make([]*models.DeckCard, len(d.Cards))
		for j, card := range d.Cards {
			cards[j] = &models.DeckCard{Name: card.Name, Quantity: card.Quantity}
		}
		if err := r.Decks.AddCards(ctx, d.ID, cards); err != nil {
			return fmt.Errorf("failed to save cards of deck %q: %w", d.Name, err)
		}
	}

	return r.Marks.Replace(ctx, c.ID, c.MarkedCards, time.Now().UTC())
}

// GetCollection loads a collection with its decks, cards and marks.
func (s *Service) GetCollection(ctx context.Context, id string) (*prism.Collection, error) {
	row, err := s.repos.Collections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, id)
	}

	c := &prism.Collection{
		ID:        row.ID,
		Name:      row.Name,
		Decks:     []prism.Deck{},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}

	decks, err := s.repos.Decks.ListByCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, d := range decks {
		cards, err := s.repos.Decks.GetCards(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		deck := prism.Deck{
			ID:             d.ID,
			Name:           d.Name,
			Commander:      d.Commander,
			Bracket:        d.Bracket,
			Cards:          make([]prism.Card, len(cards)),
			AssignedColor:  d.Color,
			StripePosition: d.Position,
			CreatedAt:      d.CreatedAt,
			UpdatedAt:      d.UpdatedAt,
		}
		for i, card := range cards {
			deck.Cards[i] = prism.Card{Name: card.Name, Quantity: card.Quantity}
		}
		c.Decks = append(c.Decks, deck)
	}

	if c.MarkedCards, err = s.repos.Marks.List(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCollections returns every collection with its deck count.
func (s *Service) ListCollections(ctx context.Context) ([]CollectionSummary, error) {
	rows, err := s.repos.Collections.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.repos.Decks.CountByCollection(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.currentCollectionID(ctx)
	if err != nil && !errors.Is(err, ErrNoCurrentCollection) {
		return nil, err
	}

	out := make([]CollectionSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, CollectionSummary{
			ID:        r.ID,
			Name:      r.Name,
			DeckCount: counts[r.ID],
			Current:   r.ID == current,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return out, nil
}

// DeleteCollection removes a collection and everything stored for it.
func (s *Service) DeleteCollection(ctx context.Context, id string) error {
	return s.db.WithTransaction(ctx, func(r *Repositories) error {
		// Deleted explicitly, since cascades depend on the foreign_keys pragma.
		if err := r.Decks.DeleteByCollection(ctx, id); err != nil {
			return err
		}
		if err := r.Marks.Replace(ctx, id, nil, time.Now().UTC()); err != nil {
			return err
		}
		if err := r.Snapshots.DeleteByCollection(ctx, id); err != nil {
			return err
		}

		deleted, err := r.Collections.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("%w: %s", ErrCollectionNotFound, id)
		}

		var current string
		err = r.Settings.Get(ctx, currentCollectionKey, &current)
		if err == nil && current == id {
			return r.Settings.Delete(ctx, currentCollectionKey)
		}
		if err != nil && !errors.Is(err, repository.ErrSettingNotFound) {
			return err
		}
		return nil
	})
}

// SetCurrentCollection selects the collection CLI commands operate on.
func (s *Service) SetCurrentCollection(ctx context.Context, id string) error {
	row, err := s.repos.Collections.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, id)
	}
	return s.repos.Settings.Set(ctx, currentCollectionKey, id)
}

// GetCurrentCollection loads the selected collection.
func (s *Service) GetCurrentCollection(ctx context.Context) (*prism.Collection, error) {
	id, err := s.currentCollectionID(ctx)
	if err != nil {
		return nil, err
	}
	return s.GetCollection(ctx, id)
}

func (s *Service) currentCollectionID(ctx context.Context) (string, error) {
	var id string
	if err := s.repos.Settings.Get(ctx, currentCollectionKey, &id); err != nil {
		if errors.Is(err, repository.ErrSettingNotFound) {
			return "", ErrNoCurrentCollection
		}
		return "", err
	}
	return id, nil
}

// Fingerprint hashes the physical marking state of a processing result: every
// card with its stripes. Identical fingerprints need no repainting.
func Fingerprint(data *prism.ProcessedData) (string, error) {
	type slot struct {
		Position int    `json:"p"`
		Color    string `json:"c"`
	}
	type card struct {
		Key   string `json:"k"`
		Qty   int    `json:"q"`
		Slots []slot `json:"s"`
	}

	cards := make([]card, 0, len(data.Cards))
	for _, c := range data.Cards {
		entry := card{Key: c.NormalizedKey, Qty: c.TotalQuantity, Slots: make([]slot, len(c.MarkSlots))}
		for i, s := range c.MarkSlots {
			entry.Slots[i] = slot{Position: s.Position, Color: prism.ColorName(s.Color)}
		}
		cards = append(cards, entry)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Key < cards[j].Key })

	payload, err := json.Marshal(cards)
	if err != nil {
		return "", fmt.Errorf("failed to encode fingerprint payload: %w", err)
	}
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// SaveSnapshot stores a processing result for a collection. When it matches the
// latest stored snapshot nothing is written and false is returned.
func (s *Service) SaveSnapshot(ctx context.Context, collectionID string, data *prism.ProcessedData) (bool, error) {
	var saved bool
	err := s.db.WithTransaction(ctx, func(r *Repositories) error {
		var err error
		saved, err = s.saveSnapshot(ctx, r, collectionID, data)
		return err
	})
	if err != nil {
		return false, err
	}
	return saved, nil
}

func (s *Service) saveSnapshot(ctx context.Context, r *Repositories, collectionID string, data *prism.ProcessedData) (bool, error) {
	fp, err := Fingerprint(data)
	if err != nil {
		return false, err
	}

	latest, err := r.Snapshots.Latest(ctx, collectionID)
	if err != nil {
		return false, err
	}
	if latest != nil && latest.Fingerprint == fp {
		return false, nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return false, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := r.Snapshots.Create(ctx, &models.Snapshot{
		CollectionID: collectionID,
		Fingerprint:  fp,
		DeckCount:    len(data.Decks),
		CardCount:    len(data.Cards),
		Data:         string(payload),
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		return false, err
	}
	if s.snapshotRetention > 0 {
		if _, err := r.Snapshots.Prune(ctx, collectionID, s.snapshotRetention); err != nil {
			return false, err
		}
	}
	return true, nil
}

// LatestSnapshot returns the most recent processing result of a collection, or
// nil when the collection has never been processed.
func (s *Service) LatestSnapshot(ctx context.Context, collectionID string) (*prism.ProcessedData, error) {
	row, err := s.repos.Snapshots.Latest(ctx, collectionID)
	if err != nil || row == nil {
		return nil, err
	}

	var data prism.ProcessedData
	if err := json.Unmarshal([]byte(row.Data), &data); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %d: %w", row.ID, err)
	}
	return &data, nil
}

// ListSnapshots returns up to limit snapshots of a collection, newest first.
func (s *Service) ListSnapshots(ctx context.Context, collectionID string, limit int) ([]SnapshotInfo, error) {
	rows, err := s.repos.Snapshots.List(ctx, collectionID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]SnapshotInfo, len(rows))
	for i, r := range rows {
		out[i] = SnapshotInfo{
			ID:          r.ID,
			Fingerprint: r.Fingerprint,
			DeckCount:   r.DeckCount,
			CardCount:   r.CardCount,
			CreatedAt:   r.CreatedAt,
		}
	}
	return out, nil
}
