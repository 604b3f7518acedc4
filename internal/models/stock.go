// Package models defines the persisted and wire types for tickerpress.
package models

import "time"

// Sentiment labels used across social feeds and snapshots.
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// Movement classifications for generated articles.
const (
	MovementWinner = "winner"
	MovementLoser  = "loser"
)

// StockQuote is the raw result of one market-data fetch, before persistence.
type StockQuote struct {
	Symbol         string    `json:"symbol"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	PriceChange    float64   `json:"price_change"`
	PriceChangePct float64   `json:"price_change_pct"`
	Volume         int64     `json:"volume"`
	Date           time.Time `json:"date"`
}

// StockSnapshot is one day's recorded price/volume/social state for one symbol.
// Rows for a date are replaced wholesale by each pipeline run and are
// read-only afterwards. PriceChangePct is always recomputed from the two
// closes, never copied from a provider field.
type StockSnapshot struct {
	ID             uint64    `badgerhold:"key" json:"id"`
	Symbol         string    `badgerholdIndex:"Symbol" json:"symbol"`
	Name           string    `json:"name"`
	Date           time.Time `badgerholdIndex:"Date" json:"date"`
	Price          float64   `json:"price"`
	PriceChange    float64   `json:"price_change"`
	PriceChangePct float64   `json:"price_change_pct"`
	Volume         int64     `json:"volume"`

	// Social-trend enrichment, set when the symbol also appears in the
	// trending feed for the run.
	WSBMentions  int    `json:"wsb_mentions"`
	WSBSentiment string `json:"wsb_sentiment"`
	WSBTrending  bool   `json:"is_wsb_trending"`

	CreatedAt time.Time `json:"created_at"`
}

// MoverSelection is the result of one movers-selection pass.
type MoverSelection struct {
	Winners          []*StockSnapshot `json:"winners"`
	Losers           []*StockSnapshot `json:"losers"`
	TickersProcessed int              `json:"tickers_processed"`
	RateLimited      int              `json:"rate_limited"`
}

// TrendingTicker is one entry from a social trending feed, in feed order.
type TrendingTicker struct {
	Ticker         string  `json:"ticker"`
	Mentions       int     `json:"mentions"`
	Sentiment      string  `json:"sentiment"`
	SentimentScore float64 `json:"sentiment_score"`
}
