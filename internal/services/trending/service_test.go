package trending

import (
	"context"
	"errors"
	"testing"

	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/models"
)

type stubFeed struct {
	tickers []*models.TrendingTicker
	err     error
}

func (s *stubFeed) FetchTrending(_ context.Context, limit int) ([]*models.TrendingTicker, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit > 0 && len(s.tickers) > limit {
		return s.tickers[:limit], nil
	}
	return s.tickers, nil
}

func TestResolve_FallsBackWhenFeedDown(t *testing.T) {
	svc := NewService(&stubFeed{err: errors.New("connection refused")}, common.NewSilentLogger())

	got := svc.Resolve(context.Background(), 20)
	if len(got) != 20 {
		t.Fatalf("expected 20 fallback tickers, got %d", len(got))
	}
	if got[0].Ticker != "GME" {
		t.Errorf("expected fallback list to lead with GME, got %s", got[0].Ticker)
	}

	// The fallback must be a copy; callers mutate entries during enrichment.
	got[0].Mentions = 0
	again := svc.Resolve(context.Background(), 20)
	if again[0].Mentions != 1000 {
		t.Errorf("fallback list was mutated by a previous call")
	}
}

func TestResolve_FallsBackWhenFeedEmpty(t *testing.T) {
	svc := NewService(&stubFeed{}, common.NewSilentLogger())

	got := svc.Resolve(context.Background(), 5)
	if len(got) != 5 {
		t.Fatalf("expected 5 tickers, got %d", len(got))
	}
}

func TestResolve_OrdersByMentions(t *testing.T) {
	feed := &stubFeed{tickers: []*models.TrendingTicker{
		{Ticker: "AMC", Mentions: 100, Sentiment: models.SentimentBullish},
		{Ticker: "GME", Mentions: 300, Sentiment: models.SentimentBullish},
		{Ticker: "BB", Mentions: 100, Sentiment: models.SentimentNeutral},
	}}
	svc := NewService(feed, common.NewSilentLogger())

	got := svc.Resolve(context.Background(), 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 tickers, got %d", len(got))
	}
	if got[0].Ticker != "GME" {
		t.Errorf("expected GME first, got %s", got[0].Ticker)
	}
	// Stable sort keeps feed order for equal mention counts.
	if got[1].Ticker != "AMC" || got[2].Ticker != "BB" {
		t.Errorf("expected stable tie order [AMC BB], got [%s %s]", got[1].Ticker, got[2].Ticker)
	}
}

func TestResolve_MergesSecondaryFeedMentions(t *testing.T) {
	primary := &stubFeed{tickers: []*models.TrendingTicker{
		{Ticker: "GME", Mentions: 200, Sentiment: models.SentimentBullish},
		{Ticker: "AMC", Mentions: 150, Sentiment: models.SentimentBullish},
	}}
	secondary := &stubFeed{tickers: []*models.TrendingTicker{
		{Ticker: "AMC", Mentions: 100, Sentiment: models.SentimentNeutral},
		{Ticker: "TSLA", Mentions: 80, Sentiment: models.SentimentNeutral},
	}}
	svc := NewService(primary, common.NewSilentLogger(), secondary)

	got := svc.Resolve(context.Background(), 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 tickers, got %d", len(got))
	}
	if got[0].Ticker != "AMC" || got[0].Mentions != 250 {
		t.Errorf("expected AMC with summed 250 mentions first, got %s/%d", got[0].Ticker, got[0].Mentions)
	}
	// The primary feed's sentiment wins on merge.
	if got[0].Sentiment != models.SentimentBullish {
		t.Errorf("expected primary sentiment preserved, got %s", got[0].Sentiment)
	}
	if got[2].Ticker != "TSLA" {
		t.Errorf("expected TSLA appended from secondary feed, got %s", got[2].Ticker)
	}
}

func TestResolve_SecondaryFeedFailureIsNonFatal(t *testing.T) {
	primary := &stubFeed{tickers: []*models.TrendingTicker{
		{Ticker: "GME", Mentions: 200, Sentiment: models.SentimentBullish},
	}}
	svc := NewService(primary, common.NewSilentLogger(), &stubFeed{err: errors.New("feed down")})

	got := svc.Resolve(context.Background(), 10)
	if len(got) != 1 || got[0].Ticker != "GME" {
		t.Fatalf("expected primary list to survive secondary failure, got %+v", got)
	}
}
