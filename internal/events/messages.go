package events

import "github.com/codwats/prism/internal/prism"

// Event types.
const (
	TypeCollectionUpdated   = "collection.updated"
	TypeCollectionProcessed = "collection.processed"
	TypeCollectionDeleted   = "collection.deleted"
)

// CollectionUpdatedEvent is sent after a collection or one of its decks changed.
type CollectionUpdatedEvent struct {
	CollectionID string `json:"collectionId"`
	Name         string `json:"name"`
	DeckCount    int    `json:"deckCount"`
	Reason       string `json:"reason"` // e.g. "deck.added", "reorder", "import"
}

// CollectionProcessedEvent is sent after a collection has been processed.
type CollectionProcessedEvent struct {
	CollectionID string             `json:"collectionId"`
	Name         string             `json:"name"`
	Stats        prism.Statistics   `json:"stats"`
	Changes      prism.DeltaSummary `json:"changes"`
	Saved        bool               `json:"saved"`
}

// CollectionDeletedEvent is sent after a collection has been deleted.
type CollectionDeletedEvent struct {
	CollectionID string `json:"collectionId"`
	Name         string `json:"name"`
}

// CollectionOf returns the ID of the collection an event is about, or "" when the
// payload is not one of the collection events.
func CollectionOf(event Event) string {
	switch data := event.Data.(type) {
	case CollectionUpdatedEvent:
		return data.CollectionID
	case CollectionProcessedEvent:
		return data.CollectionID
	case CollectionDeletedEvent:
		return data.CollectionID
	}
	return ""
}
