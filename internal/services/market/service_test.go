package market

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bobmcallan/tickerpress/internal/clients/fmp"
	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/models"
)

var testDay = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

type fakeMarketClient struct {
	quotes       map[string]*models.StockQuote
	errs         map[string]error
	constituents []string
	consErr      error
}

func (f *fakeMarketClient) FetchQuote(_ context.Context, symbol string) (*models.StockQuote, error) {
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	if q, ok := f.quotes[symbol]; ok {
		return q, nil
	}
	return nil, fmt.Errorf("%w: %s", fmp.ErrInsufficientHistory, symbol)
}

func (f *fakeMarketClient) FetchCompanyName(_ context.Context, symbol string) string {
	return symbol + " Inc."
}

func (f *fakeMarketClient) FetchIndexConstituents(context.Context) ([]string, error) {
	return f.constituents, f.consErr
}

type fakeTrending struct {
	tickers []*models.TrendingTicker
}

func (f *fakeTrending) Resolve(context.Context, int) []*models.TrendingTicker {
	return f.tickers
}

type fakeSnapshotStore struct {
	replaced   []*models.StockSnapshot
	replaceDay time.Time
	replaceErr error
}

func (f *fakeSnapshotStore) ReplaceForDate(_ context.Context, day time.Time, rows []*models.StockSnapshot) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaceDay = day
	f.replaced = rows
	return nil
}

func (f *fakeSnapshotStore) ListByDate(context.Context, time.Time) ([]*models.StockSnapshot, error) {
	return f.replaced, nil
}

func (f *fakeSnapshotStore) GetBySymbol(context.Context, string, *time.Time) (*models.StockSnapshot, error) {
	return nil, nil
}

func (f *fakeSnapshotStore) ListTrending(context.Context, time.Time) ([]*models.StockSnapshot, error) {
	return nil, nil
}

func quote(symbol string, pct float64) *models.StockQuote {
	return &models.StockQuote{
		Symbol:         symbol,
		Price:          100 + pct,
		PriceChange:    pct,
		PriceChangePct: pct,
		Volume:         1_000_000,
		Date:           testDay,
	}
}

func quoteMap(pcts map[string]float64) map[string]*models.StockQuote {
	out := make(map[string]*models.StockQuote, len(pcts))
	for symbol, pct := range pcts {
		out[symbol] = quote(symbol, pct)
	}
	return out
}

func TestSelectMovers_WinnersAndLosersDisjointAndOrdered(t *testing.T) {
	client := &fakeMarketClient{
		quotes: quoteMap(map[string]float64{
			"AAA": 8.0, "BBB": 5.0, "CCC": 2.0, "DDD": 0.5,
			"EEE": -0.5, "FFF": -2.0, "GGG": -5.0, "HHH": -9.0,
		}),
		constituents: []string{"AAA", "BBB", "CCC", "DDD", "EEE", "FFF", "GGG", "HHH"},
	}
	store := &fakeSnapshotStore{}
	svc := NewService(store, client, &fakeTrending{}, common.NewSilentLogger())

	sel, err := svc.SelectMovers(context.Background(), 2)
	if err != nil {
		t.Fatalf("SelectMovers failed: %v", err)
	}

	if len(sel.Winners) != 2 || len(sel.Losers) != 2 {
		t.Fatalf("expected 2 winners and 2 losers, got %d/%d", len(sel.Winners), len(sel.Losers))
	}
	if sel.Winners[0].Symbol != "AAA" || sel.Winners[1].Symbol != "BBB" {
		t.Errorf("winners out of order: %s %s", sel.Winners[0].Symbol, sel.Winners[1].Symbol)
	}
	// The biggest loser comes first.
	if sel.Losers[0].Symbol != "HHH" || sel.Losers[1].Symbol != "GGG" {
		t.Errorf("losers out of order: %s %s", sel.Losers[0].Symbol, sel.Losers[1].Symbol)
	}

	seen := map[string]bool{}
	for _, w := range sel.Winners {
		seen[w.Symbol] = true
	}
	for _, l := range sel.Losers {
		if seen[l.Symbol] {
			t.Errorf("symbol %s in both winners and losers", l.Symbol)
		}
	}

	if sel.TickersProcessed != 8 {
		t.Errorf("expected 8 processed, got %d", sel.TickersProcessed)
	}
	if len(store.replaced) != 8 {
		t.Errorf("expected full pool persisted, got %d rows", len(store.replaced))
	}
	if !store.replaceDay.Equal(testDay) {
		t.Errorf("expected snapshot date %v, got %v", testDay, store.replaceDay)
	}
}

func TestSelectMovers_SkipsFailuresAndCountsRateLimits(t *testing.T) {
	client := &fakeMarketClient{
		quotes: quoteMap(map[string]float64{"AAA": 3.0, "BBB": -1.0}),
		errs: map[string]error{
			"LIM": fmt.Errorf("%w: LIM", fmp.ErrRateLimited),
			"NEW": fmt.Errorf("%w: NEW", fmp.ErrInsufficientHistory),
			"BAD": errors.New("connection reset"),
		},
		constituents: []string{"AAA", "LIM", "NEW", "BAD", "BBB"},
	}
	svc := NewService(&fakeSnapshotStore{}, client, &fakeTrending{}, common.NewSilentLogger())

	sel, err := svc.SelectMovers(context.Background(), 1)
	if err != nil {
		t.Fatalf("SelectMovers failed: %v", err)
	}
	if sel.TickersProcessed != 2 {
		t.Errorf("expected 2 processed, got %d", sel.TickersProcessed)
	}
	if sel.RateLimited != 1 {
		t.Errorf("expected 1 rate limited, got %d", sel.RateLimited)
	}
	if sel.Winners[0].Symbol != "AAA" || sel.Losers[0].Symbol != "BBB" {
		t.Errorf("unexpected movers %s/%s", sel.Winners[0].Symbol, sel.Losers[0].Symbol)
	}
}

func TestSelectMovers_EmptyPoolAborts(t *testing.T) {
	client := &fakeMarketClient{constituents: []string{"AAA", "BBB"}}
	svc := NewService(&fakeSnapshotStore{}, client, &fakeTrending{}, common.NewSilentLogger())

	if _, err := svc.SelectMovers(context.Background(), 5); err == nil {
		t.Fatal("expected error when no quotes fetched, got nil")
	}
}

func TestSelectMovers_TrendingEnrichment(t *testing.T) {
	client := &fakeMarketClient{
		quotes: quoteMap(map[string]float64{"GME": 12.0, "AAA": 1.0, "BBB": -1.0}),
		constituents: []string{"AAA", "BBB"},
	}
	trending := &fakeTrending{tickers: []*models.TrendingTicker{
		{Ticker: "GME", Mentions: 420, Sentiment: models.SentimentBullish},
	}}
	store := &fakeSnapshotStore{}
	svc := NewService(store, client, trending, common.NewSilentLogger())

	sel, err := svc.SelectMovers(context.Background(), 1)
	if err != nil {
		t.Fatalf("SelectMovers failed: %v", err)
	}

	// Trending tickers go ahead of constituents in the universe.
	top := sel.Winners[0]
	if top.Symbol != "GME" {
		t.Fatalf("expected GME as top winner, got %s", top.Symbol)
	}
	if !top.WSBTrending || top.WSBMentions != 420 || top.WSBSentiment != models.SentimentBullish {
		t.Errorf("trending enrichment not applied: %+v", top)
	}

	for _, row := range store.replaced {
		if row.Symbol != "GME" && row.WSBTrending {
			t.Errorf("non-trending symbol %s flagged", row.Symbol)
		}
	}
}

func TestSelectMovers_UniverseCapAndFallbackConstituents(t *testing.T) {
	// Constituent endpoint down: the fallback list feeds the universe.
	quotes := map[string]*models.StockQuote{}
	for i, symbol := range fallbackConstituents {
		quotes[symbol] = quote(symbol, float64(i%7)-3)
	}
	client := &fakeMarketClient{quotes: quotes, consErr: errors.New("503")}
	svc := NewService(&fakeSnapshotStore{}, client, &fakeTrending{}, common.NewSilentLogger(), WithUniverseCap(10))

	sel, err := svc.SelectMovers(context.Background(), 3)
	if err != nil {
		t.Fatalf("SelectMovers failed: %v", err)
	}
	if sel.TickersProcessed != 10 {
		t.Errorf("expected universe capped at 10, got %d processed", sel.TickersProcessed)
	}
}

func TestSelectMovers_TopNLargerThanPool(t *testing.T) {
	client := &fakeMarketClient{
		quotes:       quoteMap(map[string]float64{"AAA": 2.0, "BBB": -2.0}),
		constituents: []string{"AAA", "BBB"},
	}
	svc := NewService(&fakeSnapshotStore{}, client, &fakeTrending{}, common.NewSilentLogger())

	sel, err := svc.SelectMovers(context.Background(), 5)
	if err != nil {
		t.Fatalf("SelectMovers failed: %v", err)
	}
	// topN clamps to the pool; overlap between lists is an accepted
	// consequence of a thin pool.
	if len(sel.Winners) != 2 || len(sel.Losers) != 2 {
		t.Errorf("expected clamped lists of 2, got %d/%d", len(sel.Winners), len(sel.Losers))
	}
}
