package scryfall

import "fmt"

// Card is the subset of a Scryfall card object PRISM shows to players.
type Card struct {
	ID            string     `json:"id"`
	OracleID      string     `json:"oracle_id"`
	Name          string     `json:"name"`
	ScryfallURI   string     `json:"scryfall_uri"`
	Layout        string     `json:"layout"`
	ImageURIs     *ImageURIs `json:"image_uris,omitempty"`
	ManaCost      string     `json:"mana_cost,omitempty"`
	CMC           float64    `json:"cmc"`
	TypeLine      string     `json:"type_line"`
	OracleText    string     `json:"oracle_text,omitempty"`
	ColorIdentity []string   `json:"color_identity"`
	SetCode       string     `json:"set"`
	SetName       string     `json:"set_name"`
	Rarity        string     `json:"rarity"`
	CardFaces     []CardFace `json:"card_faces,omitempty"`
	Legalities    Legalities `json:"legalities"`
	Prices        Prices     `json:"prices"`
}

// ImageURL returns the normal sized image, using the front face of double-faced cards.
func (c *Card) ImageURL() string {
	if c.ImageURIs != nil {
		return c.ImageURIs.Normal
	}
	if len(c.CardFaces) > 0 && c.CardFaces[0].ImageURIs != nil {
		return c.CardFaces[0].ImageURIs.Normal
	}
	return ""
}

// CardFace represents one face of a multi-faced card.
type CardFace struct {
	Name       string     `json:"name"`
	ManaCost   string     `json:"mana_cost,omitempty"`
	TypeLine   string     `json:"type_line"`
	OracleText string     `json:"oracle_text,omitempty"`
	ImageURIs  *ImageURIs `json:"image_uris,omitempty"`
}

// ImageURIs contains URLs for card images in various sizes.
type ImageURIs struct {
	Small  string `json:"small"`
	Normal string `json:"normal"`
	Large  string `json:"large"`
	PNG    string `json:"png"`
}

// Legalities holds the formats PRISM cares about.
type Legalities struct {
	Commander string `json:"commander"`
}

// Prices represents the prices of a card in various currencies.
type Prices struct {
	USD     *string `json:"usd,omitempty"`
	USDFoil *string `json:"usd_foil,omitempty"`
	EUR     *string `json:"eur,omitempty"`
}

// APIError represents an error response from the Scryfall API.
type APIError struct {
	Object  string `json:"object"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Details string `json:"details"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Details)
	}
	return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Code)
}

// NotFoundError represents a 404 error from the API.
type NotFoundError struct {
	URL string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}
