package prism

import (
	"fmt"
	"sort"
	"strings"
)

// ChangeAction classifies a CardChange.
type ChangeAction string

const (
	ActionNew    ChangeAction = "NEW"
	ActionUpdate ChangeAction = "UPDATE"
	ActionRemove ChangeAction = "REMOVE"
)

// Physical instructions that do not depend on the card.
const (
	RemoveInstruction    = "card no longer in any deck — remove from collection"
	NoChangeInstruction  = "No physical changes needed"
	newSleeveInstruction = "mark new sleeve with: "
)

func (a ChangeAction) priority() int {
	switch a {
	case ActionNew:
		return 0
	case ActionUpdate:
		return 1
	default:
		return 2
	}
}

// CardChange is one card that has to be marked, re-marked or pulled.
type CardChange struct {
	CardName       string       `json:"cardName"`
	NormalizedKey  string       `json:"normalizedKey"`
	Action         ChangeAction `json:"action"`
	OldMarkSummary string       `json:"oldMarkSummary"`
	NewMarkSummary string       `json:"newMarkSummary"`
	PhysicalAction string       `json:"physicalAction"`
	OldSlots       []MarkSlot   `json:"oldSlots"`
	NewSlots       []MarkSlot   `json:"newSlots"`
}

// DeltaSummary counts changes per action.
type DeltaSummary struct {
	NewCards     int `json:"newCards"`
	UpdatedCards int `json:"updatedCards"`
	RemovedCards int `json:"removedCards"`
}

// Total returns the number of changes.
func (s DeltaSummary) Total() int {
	return s.NewCards + s.UpdatedCards + s.RemovedCards
}

// Delta is the set of changes between two processed snapshots.
type Delta struct {
	Changes []CardChange `json:"changes"`
	Summary DeltaSummary `json:"summary"`
}

// CalculateDelta compares two processing results card by card.
//
// A nil old snapshot means a first run, so every card is new. Cards present in both
// snapshots are reported only when their mark summary differs. Every card key ends up
// in exactly one of: NEW, UPDATE, REMOVE or unchanged.
func CalculateDelta(old, current *ProcessedData) *Delta {
	delta := &Delta{Changes: []CardChange{}}

	var oldCards, newCards []ProcessedCard
	if old != nil {
		oldCards = old.Cards
	}
	if current != nil {
		newCards = current.Cards
	}

	oldByKey := make(map[string]ProcessedCard, len(oldCards))
	for _, c := range oldCards {
		oldByKey[c.NormalizedKey] = c
	}
	newKeys := make(map[string]bool, len(newCards))

	for _, card := range newCards {
		newKeys[card.NormalizedKey] = true

		prev, existed := oldByKey[card.NormalizedKey]
		if !existed {
			delta.Changes = append(delta.Changes, CardChange{
				CardName:       card.CanonicalName,
				NormalizedKey:  card.NormalizedKey,
				Action:         ActionNew,
				NewMarkSummary: card.MarkSummary,
				PhysicalAction: newSleeveInstruction + card.MarkSummary,
				OldSlots:       []MarkSlot{},
				NewSlots:       card.MarkSlots,
			})
			delta.Summary.NewCards++
			continue
		}

		if prev.MarkSummary == card.MarkSummary {
			continue
		}

		delta.Changes = append(delta.Changes, CardChange{
			CardName:       card.CanonicalName,
			NormalizedKey:  card.NormalizedKey,
			Action:         ActionUpdate,
			OldMarkSummary: prev.MarkSummary,
			NewMarkSummary: card.MarkSummary,
			PhysicalAction: slotInstructions(prev.MarkSlots, card.MarkSlots),
			OldSlots:       prev.MarkSlots,
			NewSlots:       card.MarkSlots,
		})
		delta.Summary.UpdatedCards++
	}

	for _, card := range oldCards {
		if newKeys[card.NormalizedKey] {
			continue
		}
		delta.Changes = append(delta.Changes, CardChange{
			CardName:       card.CanonicalName,
			NormalizedKey:  card.NormalizedKey,
			Action:         ActionRemove,
			OldMarkSummary: card.MarkSummary,
			PhysicalAction: RemoveInstruction,
			OldSlots:       card.MarkSlots,
			NewSlots:       []MarkSlot{},
		})
		delta.Summary.RemovedCards++
	}

	names := newNameCollator()
	sort.SliceStable(delta.Changes, func(i, j int) bool {
		a, b := delta.Changes[i], delta.Changes[j]
		if a.Action != b.Action {
			return a.Action.priority() < b.Action.priority()
		}
		return names.compare(a.CardName, b.CardName) < 0
	})

	return delta
}

// slotSignature identifies a stripe physically: where it is and what colour it is.
func slotSignature(s MarkSlot) string {
	return fmt.Sprintf("%d|%s", s.Position, ColorName(s.Color))
}

type slotStep struct {
	position int
	remove   bool
	text     string
}

// slotInstructions diffs two slot sets and describes the paint work, ordered by slot
// with removals before additions on the same slot.
func slotInstructions(oldSlots, newSlots []MarkSlot) string {
	oldSet := make(map[string]bool, len(oldSlots))
	for _, s := range oldSlots {
		oldSet[slotSignature(s)] = true
	}
	newSet := make(map[string]bool, len(newSlots))
	for _, s := range newSlots {
		newSet[slotSignature(s)] = true
	}

	var steps []slotStep
	for _, s := range oldSlots {
		if !newSet[slotSignature(s)] {
			steps = append(steps, slotStep{
				position: s.Position,
				remove:   true,
				text:     fmt.Sprintf("remove %s from slot %d", ColorName(s.Color), s.Position),
			})
		}
	}
	for _, s := range newSlots {
		if !oldSet[slotSignature(s)] {
			steps = append(steps, slotStep{
				position: s.Position,
				text:     fmt.Sprintf("add %s in slot %d", ColorName(s.Color), s.Position),
			})
		}
	}

	if len(steps) == 0 {
		return NoChangeInstruction
	}

	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].position != steps[j].position {
			return steps[i].position < steps[j].position
		}
		return steps[i].remove && !steps[j].remove
	})

	parts := make([]string, len(steps))
	for i, step := range steps {
		parts[i] = step.text
	}
	return strings.Join(parts, "; ")
}
