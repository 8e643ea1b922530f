// Package models defines the records exchanged between the feed, analysis,
// and reporting layers of nsenews.
package models

import "time"

// Article is a raw news article as handed over by a feed collaborator.
// It is treated as immutable once received.
type Article struct {
	ID          string     `json:"id,omitempty"`
	URL         string     `json:"url,omitempty"`
	Title       string     `json:"title"`
	Source      string     `json:"source"`
	SourceURL   string     `json:"source_url,omitempty"` // feed the article came from
	PublishedAt *time.Time `json:"published_date,omitempty"`
	Content     string     `json:"content,omitempty"`
	Description string     `json:"description,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Authors     []string   `json:"authors,omitempty"`
}

// Identifier returns the article URL, falling back to its ID.
func (a Article) Identifier() string {
	if a.URL != "" {
		return a.URL
	}
	return a.ID
}

// CompanyRecord is one row of the NSE equity listing.
type CompanyRecord struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"company_name"`
	Series      string `json:"series,omitempty"`
	ListingDate string `json:"listing_date,omitempty"`
	PaidUpValue string `json:"paid_up_value,omitempty"`
	MarketLot   string `json:"market_lot,omitempty"`
	ISIN        string `json:"isin,omitempty"`
	FaceValue   string `json:"face_value,omitempty"`
}

// CompanyMatch records that an article mentions a listed company.
type CompanyMatch struct {
	Symbol         string  `json:"symbol"`
	CompanyName    string  `json:"company_name"`
	MatchedVariant string  `json:"matched_variant"`
	Confidence     float64 `json:"confidence"`
}
