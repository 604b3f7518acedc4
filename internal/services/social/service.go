// Package social aggregates forum and microblog signals for one symbol.
//
// The samples are fabricated from static templates, standing in for the
// Reddit and X integrations that need paid API access. The shapes and the
// aggregation rules match what a live integration would produce, so the
// rest of the pipeline is insulated from the swap.
package social

import (
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/models"
)

// Service implements the SocialService interface.
type Service struct {
	logger *common.Logger
	now    func() time.Time
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a social aggregator.
func NewService(logger *common.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Aggregate returns the social context for symbol. priceChangePct biases the
// sampled posts toward the day's direction so loser articles are not
// narrated with moon emoji enthusiasm.
func (s *Service) Aggregate(symbol string, priceChangePct float64) *models.SocialContext {
	forum := s.forumSample(symbol, priceChangePct)
	microblog := s.microblogSample(symbol, priceChangePct)

	ctx := &models.SocialContext{
		Symbol:           symbol,
		TotalMentions:    len(forum) + len(microblog),
		OverallSentiment: forumMajority(forum),
		ForumPosts:       forum,
		MicroblogPosts:   microblog,
	}
	for _, p := range forum {
		ctx.Engagement.ForumUpvotes += p.Upvotes
	}
	for _, p := range microblog {
		ctx.Engagement.MicroblogLikes += p.Likes
		ctx.Engagement.MicroblogShares += p.Reposts
	}

	s.logger.Debug().Str("symbol", symbol).Int("mentions", ctx.TotalMentions).
		Str("sentiment", ctx.OverallSentiment).Msg("Aggregated social context")
	return ctx
}

// forumMajority labels the context bullish only when more than half of the
// forum sample is bullish, and neutral otherwise. A bearish-heavy sample
// still reads neutral, and the microblog sample never influences the label.
func forumMajority(posts []models.ForumPost) string {
	if len(posts) == 0 {
		return models.SentimentNeutral
	}
	bullish := 0
	for _, p := range posts {
		if p.Sentiment == models.SentimentBullish {
			bullish++
		}
	}
	if bullish > len(posts)/2 {
		return models.SentimentBullish
	}
	return models.SentimentNeutral
}

func (s *Service) forumSample(symbol string, pct float64) []models.ForumPost {
	now := s.now()
	if pct >= 0 {
		return []models.ForumPost{
			{Author: "WSB User", Body: fmt.Sprintf("%s to the moon! Market undervalued this gem", symbol), Upvotes: 450, Sentiment: models.SentimentBullish, PostedAt: now},
			{Author: "Diamond Hands", Body: fmt.Sprintf("Been holding %s for months. Finally paying off!", symbol), Upvotes: 320, Sentiment: models.SentimentBullish, PostedAt: now},
			{Author: "Technical Trader", Body: fmt.Sprintf("%s breaking key resistance levels. Watch for continuation", symbol), Upvotes: 280, Sentiment: models.SentimentNeutral, PostedAt: now},
		}
	}
	return []models.ForumPost{
		{Author: "Bag Holder", Body: fmt.Sprintf("%s bleeding again. Averaging down or cutting losses?", symbol), Upvotes: 380, Sentiment: models.SentimentBearish, PostedAt: now},
		{Author: "Puts Printer", Body: fmt.Sprintf("Called the %s drop yesterday. Puts printing", symbol), Upvotes: 290, Sentiment: models.SentimentBearish, PostedAt: now},
		{Author: "Technical Trader", Body: fmt.Sprintf("%s testing major support. Bounce or breakdown from here", symbol), Upvotes: 240, Sentiment: models.SentimentNeutral, PostedAt: now},
	}
}

func (s *Service) microblogSample(symbol string, pct float64) []models.MicroblogPost {
	now := s.now()
	if pct >= 0 {
		return []models.MicroblogPost{
			{Author: "@MarketAnalyst", Followers: 125000, Body: fmt.Sprintf("Significant volume surge in $%s. Institutional interest appears strong", symbol), Likes: 1200, Reposts: 450, Verified: true, PostedAt: now},
			{Author: "@StockInsights", Followers: 89000, Body: fmt.Sprintf("$%s breaking out on technical charts. Key support at current levels", symbol), Likes: 890, Reposts: 320, Verified: true, PostedAt: now},
			{Author: "@FinanceNews", Followers: 250000, Body: fmt.Sprintf("$%s sees major price movement today. Analysts watching closely", symbol), Likes: 2100, Reposts: 780, Verified: true, PostedAt: now},
		}
	}
	return []models.MicroblogPost{
		{Author: "@MarketAnalyst", Followers: 125000, Body: fmt.Sprintf("Heavy distribution in $%s today. Watching whether selling pressure persists", symbol), Likes: 980, Reposts: 360, Verified: true, PostedAt: now},
		{Author: "@StockInsights", Followers: 89000, Body: fmt.Sprintf("$%s breaking below its recent range. Next support level in focus", symbol), Likes: 760, Reposts: 280, Verified: true, PostedAt: now},
		{Author: "@FinanceNews", Followers: 250000, Body: fmt.Sprintf("$%s sees major price movement today. Analysts watching closely", symbol), Likes: 1900, Reposts: 700, Verified: true, PostedAt: now},
	}
}

// FormatForPrompt renders the context as a plain-text block for the article
// prompt.
func (s *Service) FormatForPrompt(sc *models.SocialContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SOCIAL MEDIA SENTIMENT (%d total mentions)\n", sc.TotalMentions)
	fmt.Fprintf(&b, "Overall Sentiment: %s\n", strings.ToUpper(sc.OverallSentiment))

	b.WriteString("\nWALLSTREETBETS DISCUSSION:\n")
	for i, post := range capForum(sc.ForumPosts, 3) {
		fmt.Fprintf(&b, "%d. [%d upvotes] %s\n", i+1, post.Upvotes, post.Body)
	}

	b.WriteString("\nTWITTER/X MENTIONS (From Verified/Trusted Accounts):\n")
	for i, post := range capMicroblog(sc.MicroblogPosts, 3) {
		fmt.Fprintf(&b, "%d. %s (%d followers):\n", i+1, post.Author, post.Followers)
		fmt.Fprintf(&b, "   %q\n", post.Body)
		fmt.Fprintf(&b, "   [%d likes, %d reposts]\n", post.Likes, post.Reposts)
	}

	return b.String()
}

func capForum(posts []models.ForumPost, n int) []models.ForumPost {
	if len(posts) > n {
		return posts[:n]
	}
	return posts
}

func capMicroblog(posts []models.MicroblogPost, n int) []models.MicroblogPost {
	if len(posts) > n {
		return posts[:n]
	}
	return posts
}

// Ensure Service implements SocialService
var _ interfaces.SocialService = (*Service)(nil)
