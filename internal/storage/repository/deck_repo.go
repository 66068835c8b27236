package repository

import (
	"context"
	"fmt"

	"github.com/codwats/prism/internal/storage/models"
)

// DeckRepository handles database operations for decks and their cards.
type DeckRepository interface {
	// Create inserts a new deck.
	Create(ctx context.Context, deck *models.Deck) error

	// ListByCollection retrieves the decks of a collection in stripe order.
	ListByCollection(ctx context.Context, collectionID string) ([]*models.Deck, error)

	// DeleteByCollection removes every deck of a collection along with its cards.
	DeleteByCollection(ctx context.Context, collectionID string) error

	// AddCards appends cards to a deck, numbering them from seq 1.
	AddCards(ctx context.Context, deckID string, cards []*models.DeckCard) error

	// GetCards retrieves the cards of a deck in entry order.
	GetCards(ctx context.Context, deckID string) ([]*models.DeckCard, error)

	// CountByCollection returns the number of decks in each collection.
	CountByCollection(ctx context.Context) (map[string]int, error)
}

type deckRepository struct {
	db DBTX
}

// NewDeckRepository creates a new deck repository.
func NewDeckRepository(db DBTX) DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) Create(ctx context.Context, deck *models.Deck) error {
	query := `
		INSERT INTO decks (
			id, collection_id, position, name, commander, bracket, color,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		deck.ID,
		deck.CollectionID,
		deck.Position,
		deck.Name,
		deck.Commander,
		deck.Bracket,
		deck.Color,
		deck.CreatedAt,
		deck.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}
	return nil
}

func (r *deckRepository) ListByCollection(ctx context.Context, collectionID string) ([]*models.Deck, error) {
	query := `
		SELECT id, collection_id, position, name, commander, bracket, color,
		       created_at, updated_at
		FROM decks
		WHERE collection_id = ?
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var decks []*models.Deck
	for rows.Next() {
		d := &models.Deck{}
		if err := rows.Scan(
			&d.ID,
			&d.CollectionID,
			&d.Position,
			&d.Name,
			&d.Commander,
			&d.Bracket,
			&d.Color,
			&d.CreatedAt,
			&d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decks: %w", err)
	}
	return decks, nil
}

func (r *deckRepository) DeleteByCollection(ctx context.Context, collectionID string) error {
	// Cards are removed explicitly so this also works without foreign key enforcement.
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM deck_cards WHERE deck_id IN (SELECT id FROM decks WHERE collection_id = ?)`,
		collectionID,
	); err != nil {
		return fmt.Errorf("failed to delete deck cards: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE collection_id = ?`, collectionID); err != nil {
		return fmt.Errorf("failed to delete decks: %w", err)
	}
	return nil
}

func (r *deckRepository) AddCards(ctx context.Context, deckID string, cards []*models.DeckCard) error {
	query := `INSERT INTO deck_cards (deck_id, seq, name, quantity) VALUES (?, ?, ?, ?)`
	for i, card := range cards {
		card.DeckID = deckID
		card.Seq = i + 1
		if _, err := r.db.ExecContext(ctx, query, card.DeckID, card.Seq, card.Name, card.Quantity); err != nil {
			return fmt.Errorf("failed to add card %q: %w", card.Name, err)
		}
	}
	return nil
}

func (r *deckRepository) GetCards(ctx context.Context, deckID string) ([]*models.DeckCard, error) {
	query := `SELECT deck_id, seq, name, quantity FROM deck_cards WHERE deck_id = ? ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*models.DeckCard
	for rows.Next() {
		c := &models.DeckCard{}
		if err := rows.Scan(&c.DeckID, &c.Seq, &c.Name, &c.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan deck card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deck cards: %w", err)
	}
	return cards, nil
}

func (r *deckRepository) CountByCollection(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT collection_id, COUNT(*) FROM decks GROUP BY collection_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to count decks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan deck count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
