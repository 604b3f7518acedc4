// Package article synthesizes one news article per daily mover.
package article

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/models"
)

// maxSlugAttempts bounds the numeric-suffix retry on slug collisions.
const maxSlugAttempts = 5

var slugCleaner = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// Service implements the ArticleService interface.
type Service struct {
	articles  interfaces.ArticleStore
	news      interfaces.NewsService
	social    interfaces.SocialService
	generator interfaces.GenerativeClient
	logger    *common.Logger
}

// NewService creates an article service. generator may be nil, in which
// case every article uses the deterministic fallback template.
func NewService(
	articles interfaces.ArticleStore,
	news interfaces.NewsService,
	social interfaces.SocialService,
	generator interfaces.GenerativeClient,
	logger *common.Logger,
) *Service {
	return &Service{
		articles:  articles,
		news:      news,
		social:    social,
		generator: generator,
		logger:    logger,
	}
}

// CreateForMover gathers news and social context for the snapshot,
// synthesizes an article, and persists it under a unique slug.
func (s *Service) CreateForMover(ctx context.Context, snap *models.StockSnapshot, movementType string) (*models.Article, error) {
	s.logger.Info().Str("symbol", snap.Symbol).Str("movement", movementType).Msg("Generating article")

	if _, err := s.news.FetchAndStore(ctx, snap.Symbol, snap.Name); err != nil {
		s.logger.Warn().Err(err).Str("symbol", snap.Symbol).Msg("News fetch failed, continuing with stored items")
	}
	newsSummary, err := s.news.SummaryText(ctx, snap.Symbol)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", snap.Symbol).Msg("News summary unavailable")
		newsSummary = "No recent news available."
	}

	socialCtx := s.social.Aggregate(snap.Symbol, snap.PriceChangePct)
	socialText := s.social.FormatForPrompt(socialCtx)

	title, content := s.synthesize(ctx, snap, newsSummary, socialText, movementType)

	article := &models.Article{
		Symbol:       snap.Symbol,
		Date:         snap.Date,
		Title:        title,
		Content:      content,
		MovementType: movementType,
	}

	base := GenerateSlug(snap.Symbol, snap.PriceChangePct, snap.Date)
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		article.Slug = base
		if attempt > 1 {
			article.Slug = fmt.Sprintf("%s-%d", base, attempt)
		}
		err := s.articles.Insert(ctx, article)
		if err == nil {
			s.logger.Info().Str("symbol", snap.Symbol).Str("slug", article.Slug).Msg("Article saved")
			return article, nil
		}
		if !errors.Is(err, interfaces.ErrSlugExists) {
			return nil, err
		}
		s.logger.Warn().Str("slug", article.Slug).Msg("Slug collision, retrying with suffix")
	}
	return nil, fmt.Errorf("could not find a free slug for '%s' after %d attempts", base, maxSlugAttempts)
}

// synthesize produces the title and body. It never fails: a missing client
// or a model error degrades to the templated fallback.
func (s *Service) synthesize(ctx context.Context, snap *models.StockSnapshot, newsSummary, socialText, movementType string) (string, string) {
	if s.generator == nil {
		s.logger.Warn().Str("symbol", snap.Symbol).Msg("No generative client configured, using fallback article")
		return fallbackArticle(snap, newsSummary, movementType)
	}

	prompt := buildPrompt(snap, newsSummary, socialText)
	response, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.Error().Err(err).Str("symbol", snap.Symbol).Msg("Article generation failed, using fallback")
		return fallbackArticle(snap, newsSummary, movementType)
	}
	return parseResponse(response)
}

func buildPrompt(snap *models.StockSnapshot, newsSummary, socialText string) string {
	direction := "up"
	if snap.PriceChangePct < 0 {
		direction = "down"
	}
	absChange := snap.PriceChangePct
	if absChange < 0 {
		absChange = -absChange
	}

	return fmt.Sprintf(`You are a financial journalist. Write a comprehensive, engaging article (400-500 words) explaining why %s (%s) stock moved %s by %.2f%% today.

CURRENT STOCK DATA:
- Symbol: %s
- Company: %s
- Price Change: %+.2f%%
- Current Price: $%.2f
- Trading Volume: %d

RECENT NEWS ARTICLES:
%s

%s

YOUR TASK:
Synthesize ALL of the above sources (news articles, WSB comments, Twitter mentions) into ONE comprehensive, insightful article that explains:

1. WHY the stock moved today (cite specific news/events)
2. WHAT traders/investors are saying about it (reference WSB & Twitter sentiment)
3. KEY FACTORS driving the movement
4. CONTEXT that helps investors understand the bigger picture
5. Any notable technical or fundamental developments

WRITING STYLE:
- Professional yet accessible
- Reference the social sentiment naturally ("Retail traders on WallStreetBets are...")
- Cite specific posts from trusted accounts when relevant
- Make it engaging and informative
- Write like a Bloomberg or MarketWatch article

Format your response as:
HEADLINE: [Compelling, clickable headline]

ARTICLE:
[Your comprehensive article synthesizing all sources]`,
		snap.Name, snap.Symbol, direction, absChange,
		snap.Symbol, snap.Name, snap.PriceChangePct, snap.Price, snap.Volume,
		newsSummary, socialText)
}

// parseResponse splits the model output on the ARTICLE: marker. Without the
// marker, the first line becomes the title and the rest the body.
func parseResponse(response string) (string, string) {
	if before, after, found := strings.Cut(response, "ARTICLE:"); found {
		title := strings.TrimSpace(strings.ReplaceAll(before, "HEADLINE:", ""))
		return title, strings.TrimSpace(after)
	}

	trimmed := strings.TrimSpace(response)
	if line, rest, found := strings.Cut(trimmed, "\n"); found {
		return strings.TrimSpace(strings.TrimPrefix(line, "HEADLINE:")), strings.TrimSpace(rest)
	}
	return trimmed, trimmed
}

// fallbackArticle builds a deterministic article from the facts on hand.
func fallbackArticle(snap *models.StockSnapshot, newsSummary, movementType string) (string, string) {
	pct := snap.PriceChangePct
	var direction string
	switch {
	case pct > 5:
		direction = "soars"
	case pct > 0:
		direction = "rises"
	case pct < -5:
		direction = "plunges"
	default:
		direction = "falls"
	}

	absChange := pct
	if absChange < 0 {
		absChange = -absChange
	}

	title := fmt.Sprintf("%s (%s) %s %.2f%% in Today's Trading", snap.Name, snap.Symbol, direction, absChange)

	gainLoss := "losing"
	pressure := "heavy selling pressure"
	outlook := "Market concerns have weighed on the stock's performance"
	if pct > 0 {
		gainLoss = "gaining"
		pressure = "strong buying interest"
		outlook = "Investors appear to be responding positively to recent developments"
	}

	// The standing phrase follows the classification, not the sign: a winner
	// slot is "top performers" even if the recomputed change reads negative.
	standing := "biggest decliners"
	if movementType == models.MovementWinner {
		standing = "top performers"
	}

	content := fmt.Sprintf(`%s (%s) experienced significant movement in today's trading session, with shares %s %.2f%% to close at $%.2f.

The stock saw notable trading volume of %d shares, indicating %s from investors.

Recent News Context:
%s

This price movement places %s among the %s in the S&P 500 index for the day. %s.

Traders and investors should monitor upcoming earnings reports, industry trends, and broader market conditions that may continue to influence %s's stock performance in the coming sessions.`,
		snap.Name, snap.Symbol, gainLoss, absChange, snap.Price,
		snap.Volume, pressure,
		newsSummary,
		snap.Symbol, standing, outlook,
		snap.Name)

	return title, content
}

// GenerateSlug builds the canonical article slug, for example
// WhyDidGMEGoUp15PercentToday-Jan082026.
func GenerateSlug(symbol string, priceChangePct float64, date time.Time) string {
	direction := "GoUp"
	if priceChangePct <= 0 {
		direction = "GoDown"
	}
	absChange := int(priceChangePct)
	if absChange < 0 {
		absChange = -absChange
	}

	slug := fmt.Sprintf("WhyDid%s%s%dPercentToday-%s", symbol, direction, absChange, date.Format("Jan022006"))
	return slugCleaner.ReplaceAllString(slug, "")
}

// Ensure Service implements ArticleService
var _ interfaces.ArticleService = (*Service)(nil)
