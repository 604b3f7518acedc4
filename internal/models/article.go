package models

import "time"

// Article is one generated news article for a mover. Created once per
// (symbol, movement classification) per pipeline run, never updated.
// The slug is unique across all articles, enforced at the store level.
type Article struct {
	ID           uint64    `badgerhold:"key" json:"id"`
	Symbol       string    `badgerholdIndex:"Symbol" json:"stock_symbol"`
	Date         time.Time `badgerholdIndex:"Date" json:"date"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	MovementType string    `json:"movement_type"`
	Slug         string    `badgerhold:"unique" json:"slug"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewsItem is one stored headline for a symbol. Uniqueness is enforced only
// by headline text within a single fetch batch; rows accumulate across days.
type NewsItem struct {
	ID        uint64    `badgerhold:"key" json:"id"`
	Symbol    string    `badgerholdIndex:"Symbol" json:"stock_symbol"`
	Date      time.Time `json:"date"`
	Headline  string    `json:"headline"`
	URL       string    `json:"url,omitempty"`
	Source    string    `json:"source,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
