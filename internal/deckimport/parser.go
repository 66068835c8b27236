// Package deckimport parses pasted or exported decklists into cards for the engine.
package deckimport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/codwats/prism/internal/prism"
)

// MinDeckSize is the card count below which a parsed list is flagged as probably incomplete.
const MinDeckSize = 10

// Section is the part of a decklist a line belongs to.
type Section string

const (
	SectionMain       Section = "main"
	SectionCommander  Section = "commander"
	SectionCompanion  Section = "companion"
	SectionSideboard  Section = "sideboard"
	SectionMaybeboard Section = "maybeboard"
)

// included reports whether cards of the section belong to the deck.
func (s Section) included() bool {
	return s == SectionMain || s == SectionCommander || s == SectionCompanion
}

// ParseError is a line that could not be read as a card.
type ParseError struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ParseWarning is a readable line that still deserves the user's attention.
type ParseWarning struct {
	Line    int    `json:"line"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

// ParseResult contains the result of parsing a decklist.
type ParseResult struct {
	Cards     []prism.Card   `json:"cards"`
	Commander string         `json:"commander,omitempty"`
	Errors    []ParseError   `json:"errors"`
	Warnings  []ParseWarning `json:"warnings"`
}

// OK reports whether at least one card was parsed.
func (r *ParseResult) OK() bool {
	return r != nil && len(r.Cards) > 0
}

// CardCount returns the number of physical cards parsed.
func (r *ParseResult) CardCount() int {
	total := 0
	for _, c := range r.Cards {
		total += c.Quantity
	}
	return total
}

// Parser handles decklist parsing for the MTGO, Moxfield, Archidekt and Arena text formats.
type Parser struct {
	// "4 Lightning Bolt", "4x Lightning Bolt", optionally followed by "(M21) 123" and "*F*"
	quantityFirst *regexp.Regexp
	// "Lightning Bolt x4"
	quantityLast *regexp.Regexp
	// "Commander", "Sideboard:", "Deck (99)"
	header *regexp.Regexp
}

// NewParser creates a new decklist parser.
func NewParser() *Parser {
	return &Parser{
		quantityFirst: regexp.MustCompile(`^(\d+)x?\s+(.+?)(?:\s+\(([A-Za-z0-9]+)\)(?:\s+[A-Za-z0-9-]+)?)?(?:\s+\*[A-Z]\*)?$`),
		quantityLast:  regexp.MustCompile(`^(.+?)\s+x(\d+)$`),
		header:        regexp.MustCompile(`(?i)^(deck|main|mainboard|commanders?|companion|sideboard|maybeboard|considering)\s*(?:\(\d+\))?:?$`),
	}
}

// Parse reads decklist text. It never fails: problems are reported per line in
// Errors and Warnings, and callers decide whether a result is usable with OK.
//
// Sideboard and maybeboard cards are skipped. The first card of a Commander
// section becomes the deck's commander. A card listed twice keeps its first entry,
// except basic lands whose quantities are added up.
func (p *Parser) Parse(text string) *ParseResult {
	result := &ParseResult{
		Cards:    make([]prism.Card, 0),
		Errors:   make([]ParseError, 0),
		Warnings: make([]ParseWarning, 0),
	}

	seen := make(map[string]int) // card key -> index in result.Cards
	section := SectionMain

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}

		if s, ok := p.sectionHeader(line); ok {
			section = s
			continue
		}

		// MTGO marks sideboard lines individually.
		if rest, ok := cutPrefixFold(line, "SB:"); ok {
			if strings.TrimSpace(rest) == "" {
				section = SectionSideboard
			}
			continue
		}

		if !section.included() {
			continue
		}

		quantity, name, err := p.parseLine(line)
		if err != "" {
			result.Errors = append(result.Errors, ParseError{Line: lineNo, Text: line, Reason: err})
			continue
		}

		if section == SectionCommander && result.Commander == "" {
			result.Commander = name
		}

		key := prism.CardKey(name)
		if idx, dup := seen[key]; dup {
			if prism.IsBasicLand(name) {
				result.Cards[idx].Quantity += quantity
				continue
			}
			result.Warnings = append(result.Warnings, ParseWarning{
				Line:    lineNo,
				Text:    line,
				Message: fmt.Sprintf("Duplicate card %q (Commander is singleton format)", name),
			})
			continue
		}

		seen[key] = len(result.Cards)
		result.Cards = append(result.Cards, prism.Card{Name: name, Quantity: quantity})
	}

	if total := result.CardCount(); total > 0 && total < MinDeckSize {
		result.Warnings = append(result.Warnings, ParseWarning{
			Message: fmt.Sprintf("Deck only has %d cards; is the list complete?", total),
		})
	}

	return result
}

func (p *Parser) sectionHeader(line string) (Section, bool) {
	m := p.header.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	switch strings.ToLower(m[1]) {
	case "commander", "commanders":
		return SectionCommander, true
	case "companion":
		return SectionCompanion, true
	case "sideboard":
		return SectionSideboard, true
	case "maybeboard", "considering":
		return SectionMaybeboard, true
	default:
		return SectionMain, true
	}
}

// parseLine returns the quantity and normalized name of a card line, or a reason
// the line could not be read.
func (p *Parser) parseLine(line string) (int, string, string) {
	var qty, name string
	if m := p.quantityFirst.FindStringSubmatch(line); m != nil {
		qty, name = m[1], m[2]
	} else if m := p.quantityLast.FindStringSubmatch(line); m != nil {
		qty, name = m[2], m[1]
	} else {
		return 0, "", `Invalid format: expected "quantity cardname" (e.g. "1 Sol Ring")`
	}

	quantity, err := strconv.Atoi(qty)
	if err != nil || quantity < 1 {
		return 0, "", fmt.Sprintf("Invalid quantity %q", qty)
	}

	name = prism.NormalizeName(name)
	if name == "" {
		return 0, "", "Empty card name after parsing"
	}
	return quantity, name, ""
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

// ValidateDeckSize returns a note when a Commander deck does not have 100 cards,
// or "" when it does.
func ValidateDeckSize(cards []prism.Card) string {
	total := 0
	for _, c := range cards {
		total += c.Quantity
	}

	switch {
	case total == 0:
		return "Deck is empty (0 cards)"
	case total < 50:
		return fmt.Sprintf("Deck only has %d cards (Commander decks should have 100)", total)
	case total > 150:
		return fmt.Sprintf("Deck has %d cards (Commander decks should have 100)", total)
	case total != 100:
		return fmt.Sprintf("Note: Deck has %d cards (Commander format expects 100)", total)
	}
	return ""
}
