package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func snap(symbol string, day time.Time, pct float64) *models.StockSnapshot {
	return &models.StockSnapshot{
		Symbol:         symbol,
		Name:           symbol + " Inc.",
		Date:           day,
		Price:          100,
		PriceChange:    pct,
		PriceChangePct: pct,
		Volume:         1000,
	}
}

func TestSnapshotReplaceForDate_ReplacesWholesale(t *testing.T) {
	store := newTestStore(t)
	snaps := NewSnapshotStorage(store, common.NewSilentLogger())
	ctx := context.Background()
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	first := []*models.StockSnapshot{snap("AAPL", day, 1.2), snap("MSFT", day, -0.8)}
	if err := snaps.ReplaceForDate(ctx, day, first); err != nil {
		t.Fatalf("first replace failed: %v", err)
	}

	second := []*models.StockSnapshot{snap("NVDA", day, 6.1), snap("TSLA", day, -4.2), snap("AMD", day, 2.3)}
	if err := snaps.ReplaceForDate(ctx, day, second); err != nil {
		t.Fatalf("second replace failed: %v", err)
	}

	rows, err := snaps.ListByDate(ctx, day)
	if err != nil {
		t.Fatalf("ListByDate failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows after replace, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Symbol == "AAPL" || row.Symbol == "MSFT" {
			t.Errorf("stale row %s survived replace", row.Symbol)
		}
	}
}

func TestSnapshotReplaceForDate_LeavesOtherDaysAlone(t *testing.T) {
	store := newTestStore(t)
	snaps := NewSnapshotStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	yesterday := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	if err := snaps.ReplaceForDate(ctx, yesterday, []*models.StockSnapshot{snap("AAPL", yesterday, 0.5)}); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if err := snaps.ReplaceForDate(ctx, today, []*models.StockSnapshot{snap("NVDA", today, 3.0)}); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	rows, err := snaps.ListByDate(ctx, yesterday)
	if err != nil {
		t.Fatalf("ListByDate failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Symbol != "AAPL" {
		t.Fatalf("yesterday's rows disturbed: %+v", rows)
	}
}

func TestSnapshotListByDate_OrdersByPctDesc(t *testing.T) {
	store := newTestStore(t)
	snaps := NewSnapshotStorage(store, common.NewSilentLogger())
	ctx := context.Background()
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	rows := []*models.StockSnapshot{
		snap("MID", day, 1.0),
		snap("TOP", day, 8.5),
		snap("LOW", day, -6.2),
	}
	if err := snaps.ReplaceForDate(ctx, day, rows); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	got, err := snaps.ListByDate(ctx, day)
	if err != nil {
		t.Fatalf("ListByDate failed: %v", err)
	}
	want := []string{"TOP", "MID", "LOW"}
	for i, symbol := range want {
		if got[i].Symbol != symbol {
			t.Errorf("position %d: expected %s, got %s", i, symbol, got[i].Symbol)
		}
	}
}

func TestSnapshotGetBySymbol(t *testing.T) {
	store := newTestStore(t)
	snaps := NewSnapshotStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	day1 := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	snaps.ReplaceForDate(ctx, day1, []*models.StockSnapshot{snap("AAPL", day1, 1.0)})
	snaps.ReplaceForDate(ctx, day2, []*models.StockSnapshot{snap("AAPL", day2, 2.0)})

	latest, err := snaps.GetBySymbol(ctx, "AAPL", nil)
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}
	if !latest.Date.Equal(day2) {
		t.Errorf("expected latest snapshot from %v, got %v", day2, latest.Date)
	}

	old, err := snaps.GetBySymbol(ctx, "AAPL", &day1)
	if err != nil {
		t.Fatalf("GetBySymbol with day failed: %v", err)
	}
	if !old.Date.Equal(day1) {
		t.Errorf("expected snapshot from %v, got %v", day1, old.Date)
	}

	if _, err := snaps.GetBySymbol(ctx, "ZZZZ", nil); !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown symbol, got %v", err)
	}
}

func TestSnapshotListTrending_OrdersByMentions(t *testing.T) {
	store := newTestStore(t)
	snaps := NewSnapshotStorage(store, common.NewSilentLogger())
	ctx := context.Background()
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	gme := snap("GME", day, 4.0)
	gme.WSBTrending = true
	gme.WSBMentions = 120
	amc := snap("AMC", day, -2.0)
	amc.WSBTrending = true
	amc.WSBMentions = 300
	plain := snap("JNJ", day, 0.3)

	if err := snaps.ReplaceForDate(ctx, day, []*models.StockSnapshot{gme, amc, plain}); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	got, err := snaps.ListTrending(ctx, day)
	if err != nil {
		t.Fatalf("ListTrending failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 trending rows, got %d", len(got))
	}
	if got[0].Symbol != "AMC" || got[1].Symbol != "GME" {
		t.Errorf("expected [AMC GME], got [%s %s]", got[0].Symbol, got[1].Symbol)
	}
}

func TestArticleInsert_SlugCollision(t *testing.T) {
	store := newTestStore(t)
	articles := NewArticleStorage(store, common.NewSilentLogger())
	ctx := context.Background()
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	a := &models.Article{Symbol: "NVDA", Date: day, Title: "t", Content: "c", MovementType: models.MovementWinner, Slug: "WhyDidNVDAGoUp6PercentToday-Aug282026"}
	if err := articles.Insert(ctx, a); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if a.ID == 0 {
		t.Error("expected auto-assigned ID")
	}

	dup := &models.Article{Symbol: "NVDA", Date: day, Title: "t2", Content: "c2", MovementType: models.MovementWinner, Slug: a.Slug}
	if err := articles.Insert(ctx, dup); !errors.Is(err, interfaces.ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got %v", err)
	}
}

func TestAutoIDsStartAtOne(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	// A zero ID means "not persisted", so the very first row of every
	// numeric-keyed type must come back with a positive ID.
	articles := NewArticleStorage(store, common.NewSilentLogger())
	first := &models.Article{Symbol: "AAPL", Date: day, Title: "t", Content: "c", MovementType: models.MovementWinner, Slug: "WhyDidAAPLGoUp2PercentToday-Aug282026"}
	if err := articles.Insert(ctx, first); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if first.ID != 1 {
		t.Errorf("expected first article ID 1, got %d", first.ID)
	}

	second := &models.Article{Symbol: "MSFT", Date: day, Title: "t", Content: "c", MovementType: models.MovementLoser, Slug: "WhyDidMSFTGoDown2PercentToday-Aug282026"}
	if err := articles.Insert(ctx, second); err != nil {
		t.Fatalf("second insert failed: %v", err)
	}
	if second.ID <= first.ID {
		t.Errorf("expected increasing IDs, got %d then %d", first.ID, second.ID)
	}

	news := NewNewsStorage(store, common.NewSilentLogger())
	item := &models.NewsItem{Symbol: "AAPL", Date: day, Headline: "h"}
	if err := news.InsertBatch(ctx, []*models.NewsItem{item}); err != nil {
		t.Fatalf("news insert failed: %v", err)
	}
	if item.ID == 0 {
		t.Error("expected nonzero news ID")
	}

	snaps := NewSnapshotStorage(store, common.NewSilentLogger())
	row := snap("AAPL", day, 2.0)
	if err := snaps.ReplaceForDate(ctx, day, []*models.StockSnapshot{row}); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if row.ID == 0 {
		t.Error("expected nonzero snapshot ID")
	}
}

func TestArticleLookups(t *testing.T) {
	store := newTestStore(t)
	articles := NewArticleStorage(store, common.NewSilentLogger())
	ctx := context.Background()
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	a := &models.Article{Symbol: "TSLA", Date: day, Title: "Tesla falls", Content: "body", MovementType: models.MovementLoser, Slug: "WhyDidTSLAGoDown4PercentToday-Aug282026"}
	if err := articles.Insert(ctx, a); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	byID, err := articles.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID.Slug != a.Slug {
		t.Errorf("GetByID returned wrong article: %s", byID.Slug)
	}

	bySlug, err := articles.GetBySlug(ctx, a.Slug)
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if bySlug.ID != a.ID {
		t.Errorf("GetBySlug returned wrong article: %d", bySlug.ID)
	}

	if _, err := articles.GetBySlug(ctx, "missing-slug"); !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := articles.GetByID(ctx, 99999); !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	list, err := articles.ListByDate(ctx, day)
	if err != nil {
		t.Fatalf("ListByDate failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 article for day, got %d", len(list))
	}
}

func TestNewsInsertAndList_Limit(t *testing.T) {
	store := newTestStore(t)
	news := NewNewsStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	var items []*models.NewsItem
	for i := 0; i < 7; i++ {
		items = append(items, &models.NewsItem{
			Symbol:   "NVDA",
			Date:     base.Add(time.Duration(i) * time.Hour),
			Headline: "headline " + string(rune('A'+i)),
		})
	}
	if err := news.InsertBatch(ctx, items); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	got, err := news.ListBySymbol(ctx, "NVDA", 5)
	if err != nil {
		t.Fatalf("ListBySymbol failed: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	if got[0].Headline != "headline G" {
		t.Errorf("expected newest first, got %q", got[0].Headline)
	}
}

func TestJobQueue_Lifecycle(t *testing.T) {
	store := newTestStore(t)
	jobs := NewJobStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	if _, err := jobs.Dequeue(ctx); !errors.Is(err, interfaces.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty queue, got %v", err)
	}

	first := &models.PipelineJob{ID: "job-1", JobType: models.JobTypeDailyPipeline, TopN: 5, CreatedAt: time.Now().Add(-time.Minute)}
	second := &models.PipelineJob{ID: "job-2", JobType: models.JobTypeDailyPipeline, TopN: 5, CreatedAt: time.Now()}
	if err := jobs.Enqueue(ctx, first); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := jobs.Enqueue(ctx, second); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	claimed, err := jobs.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue failed: %v", err)
	}
	if claimed.ID != "job-1" {
		t.Errorf("expected oldest job first, got %s", claimed.ID)
	}
	if claimed.Status != models.JobStatusRunning {
		t.Errorf("expected running status, got %s", claimed.Status)
	}

	report := &models.RunReport{TickersProcessed: 40, RateLimited: 2, Winners: 5, Losers: 5, ArticlesCreated: 10}
	if err := jobs.Complete(ctx, claimed.ID, nil, 90*time.Second, report); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	last, err := jobs.LastFinished(ctx)
	if err != nil {
		t.Fatalf("LastFinished failed: %v", err)
	}
	if last.ID != "job-1" || last.Status != models.JobStatusCompleted {
		t.Errorf("unexpected last finished job: %+v", last)
	}
	if last.ArticlesCreated != 10 || last.RateLimited != 2 {
		t.Errorf("run report not recorded: %+v", last)
	}
	if last.DurationMS != 90000 {
		t.Errorf("expected duration 90000ms, got %d", last.DurationMS)
	}
}

func TestJobQueue_FailureAndReset(t *testing.T) {
	store := newTestStore(t)
	jobs := NewJobStorage(store, common.NewSilentLogger())
	ctx := context.Background()

	job := &models.PipelineJob{ID: "job-x", JobType: models.JobTypeDailyPipeline, TopN: 5}
	if err := jobs.Enqueue(ctx, job); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if _, err := jobs.Dequeue(ctx); err != nil {
		t.Fatalf("dequeue failed: %v", err)
	}

	// Simulate an unclean shutdown while running.
	count, err := jobs.ResetRunning(ctx)
	if err != nil {
		t.Fatalf("ResetRunning failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reset job, got %d", count)
	}

	claimed, err := jobs.Dequeue(ctx)
	if err != nil {
		t.Fatalf("re-dequeue failed: %v", err)
	}
	if err := jobs.Complete(ctx, claimed.ID, errors.New("provider unavailable"), time.Second, nil); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	last, err := jobs.LastFinished(ctx)
	if err != nil {
		t.Fatalf("LastFinished failed: %v", err)
	}
	if last.Status != models.JobStatusFailed {
		t.Errorf("expected failed status, got %s", last.Status)
	}
	if last.Error != "provider unavailable" {
		t.Errorf("expected recorded error, got %q", last.Error)
	}
}
