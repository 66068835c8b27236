package export

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/codwats/prism/internal/prism"
)

type guideSlot struct {
	Position int
	Color    string
	DeckName string
	Filled   bool
}

type guideDeck struct {
	Position  int
	Name      string
	Bracket   int
	Color     string
	ColorName string
}

type guideCard struct {
	Name    string
	Copies  int
	Shared  bool
	IsBasic bool
	Marked  bool
	Slots   []guideSlot
}

type guideView struct {
	Title       string
	DeckCount   int
	CardCount   int
	Decks       []guideDeck
	Cards       []guideCard
	GeneratedAt string
}

var guideTemplate = template.Must(template.New("guide").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>PRISM Marking Guide - {{.Title}}</title>
  <style>
    * { -webkit-print-color-adjust: exact !important; print-color-adjust: exact !important; }
    body { font-family: system-ui, sans-serif; padding: 20px; max-width: 800px; margin: 0 auto; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 10px; }
    .legend { display: flex; flex-wrap: wrap; gap: 15px; padding: 15px; background: #f5f5f5; border-radius: 8px; }
    .deck { display: flex; align-items: center; gap: 8px; }
    .swatch { width: 24px; height: 24px; border-radius: 4px; border: 2px solid #333; }
    table { width: 100%; border-collapse: collapse; margin-top: 20px; }
    th, td { padding: 8px 12px; text-align: left; border-bottom: 1px solid #ddd; }
    th { background: #f0f0f0; }
    .stripes { display: inline-flex; gap: 4px; }
    .dot { width: 16px; height: 16px; border-radius: 3px; border: 2px solid #333; }
    .empty { width: 16px; height: 16px; border-radius: 3px; border: 1px dashed #999; }
    .shared { background: #fffde7; }
    .basic { font-style: italic; }
    .marked { color: #888; }
  </style>
</head>
<body>
  <h1>PRISM Marking Guide</h1>
  <p><strong>{{.Title}}</strong>: {{.DeckCount}} decks, {{.CardCount}} unique cards</p>

  <h2>Deck Legend</h2>
  <div class="legend">
  {{- range .Decks}}
    <div class="deck">
      <div class="swatch" style="background: {{.Color}}"></div>
      <span><strong>Slot {{.Position}}:</strong> {{.Name}} ({{.ColorName}}, Bracket {{.Bracket}})</span>
    </div>
  {{- end}}
  </div>

  <h2>Card Marking Guide</h2>
  <p>Cards are sorted by number of decks (most shared first), then alphabetically.</p>
  <table>
    <thead>
      <tr><th>Card Name</th><th>Copies</th><th>Stripe Positions</th></tr>
    </thead>
    <tbody>
    {{- range .Cards}}
      <tr class="{{if .Shared}}shared{{end}}{{if .Marked}} marked{{end}}">
        <td class="{{if .IsBasic}}basic{{end}}">{{.Name}}{{if .IsBasic}} (Basic){{end}}{{if .Marked}} &#10003;{{end}}</td>
        <td>{{.Copies}}</td>
        <td><div class="stripes">
        {{- range .Slots}}
          {{- if .Filled}}<div class="dot" style="background: {{.Color}}" title="Slot {{.Position}}: {{.DeckName}}"></div>
          {{- else}}<div class="empty" title="Slot {{.Position}}: Empty"></div>{{end}}
        {{- end}}
        </div></td>
      </tr>
    {{- end}}
    </tbody>
  </table>

  <p style="margin-top: 30px; color: #666; font-size: 0.9em;">Generated by PRISM on {{.GeneratedAt}}</p>
</body>
</html>
`))

// WriteGuide renders the printable marking guide. Every row shows one box per
// stripe position so empty slots stay visible.
func WriteGuide(w io.Writer, c *prism.Collection, data *prism.ProcessedData, now time.Time) error {
	view := guideView{
		Title:       c.Name,
		DeckCount:   len(data.Decks),
		CardCount:   len(data.Cards),
		GeneratedAt: now.Format("2006-01-02 15:04"),
	}

	slots := 0
	for i, d := range data.Decks {
		pos := d.StripePosition
		if pos == 0 {
			pos = i + 1
		}
		slots = max(slots, pos)
		view.Decks = append(view.Decks, guideDeck{
			Position:  pos,
			Name:      d.Name,
			Bracket:   d.Bracket,
			Color:     d.AssignedColor,
			ColorName: prism.ColorName(d.AssignedColor),
		})
	}

	for _, card := range data.Cards {
		row := guideCard{
			Name:    card.CanonicalName,
			Copies:  card.TotalQuantity,
			Shared:  card.DeckCount > 1,
			IsBasic: card.IsBasicLand,
			Marked:  c.IsMarked(card.CanonicalName),
			Slots:   make([]guideSlot, slots),
		}
		for i := range row.Slots {
			row.Slots[i] = guideSlot{Position: i + 1}
		}
		for _, s := range card.MarkSlots {
			if s.Position >= 1 && s.Position <= slots {
				row.Slots[s.Position-1] = guideSlot{Position: s.Position, Color: s.Color, DeckName: s.DeckName, Filled: true}
			}
		}
		view.Cards = append(view.Cards, row)
	}

	if err := guideTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render marking guide: %w", err)
	}
	return nil
}
