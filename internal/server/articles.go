package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/models"
)

// defaultArticleLimit bounds per-symbol article listings when no limit is given.
const defaultArticleLimit = 20

// defaultNewsLimit bounds per-symbol news listings.
const defaultNewsLimit = 50

// enrichArticle attaches the stock snapshot recorded for the article's
// symbol and date. Missing snapshots leave the article bare.
func (s *Server) enrichArticle(r *http.Request, a *models.Article) *ArticleResponse {
	resp := &ArticleResponse{Article: *a}

	day := a.Date
	snap, err := s.app.Storage.Snapshots().GetBySymbol(r.Context(), a.Symbol, &day)
	if err != nil {
		return resp
	}
	resp.Stock = &ArticleStock{
		Symbol:         snap.Symbol,
		Name:           snap.Name,
		Price:          snap.Price,
		PriceChangePct: snap.PriceChangePct,
	}
	return resp
}

func (s *Server) enrichArticles(r *http.Request, articles []*models.Article) []*ArticleResponse {
	out := make([]*ArticleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, s.enrichArticle(r, a))
	}
	return out
}

// handleArticlesDaily handles GET /api/articles/daily?date=.
func (s *Server) handleArticlesDaily(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	requested, ok := DateQuery(w, r, "date")
	if !ok {
		return
	}
	day := snapshotDay(requested)

	articles, err := s.app.Storage.Articles().ListByDate(r.Context(), day)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load articles: "+err.Error())
		return
	}
	if len(articles) == 0 {
		WriteError(w, http.StatusNotFound, "No articles found for "+day.Format(dateLayout))
		return
	}

	enriched := s.enrichArticles(r, articles)
	WriteJSON(w, http.StatusOK, ArticleListResponse{
		Count:    len(enriched),
		Articles: enriched,
	})
}

// handleArticlesHistory handles GET /api/articles/history?date=. Unlike the
// daily route the list comes back bare, newest first, and an empty day is a
// valid empty list rather than a 404.
func (s *Server) handleArticlesHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	requested, ok := DateQuery(w, r, "date")
	if !ok {
		return
	}
	day := snapshotDay(requested)

	articles, err := s.app.Storage.Articles().ListByDate(r.Context(), day)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load articles: "+err.Error())
		return
	}
	if articles == nil {
		articles = []*models.Article{}
	}

	WriteJSON(w, http.StatusOK, ArticleHistoryResponse{
		Date:     day.Format(dateLayout),
		Count:    len(articles),
		Articles: articles,
	})
}

// handleArticleBySlug handles GET /api/articles/slug/{slug}.
func (s *Server) handleArticleBySlug(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	slug := strings.TrimPrefix(r.URL.Path, "/api/articles/slug/")
	if slug == "" {
		WriteError(w, http.StatusBadRequest, "Slug is required in path")
		return
	}

	article, err := s.app.Storage.Articles().GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Article not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to load article: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, s.enrichArticle(r, article))
}

// handleArticleByID handles GET /api/articles/{id}.
func (s *Server) handleArticleByID(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	raw := PathParam(r, "/api/articles/", "")
	if raw == "" {
		WriteError(w, http.StatusBadRequest, "Article id is required in path")
		return
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Article id must be numeric")
		return
	}

	article, err := s.app.Storage.Articles().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Article not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to load article: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, s.enrichArticle(r, article))
}

// handleArticlesBySymbol handles GET /api/articles/stock/{symbol}?limit=.
func (s *Server) handleArticlesBySymbol(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := IntQuery(r, "limit", defaultArticleLimit)
	articles, err := s.app.Storage.Articles().ListBySymbol(r.Context(), symbol, limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load articles: "+err.Error())
		return
	}
	if len(articles) == 0 {
		WriteError(w, http.StatusNotFound, "No articles for "+symbol)
		return
	}

	enriched := s.enrichArticles(r, articles)
	WriteJSON(w, http.StatusOK, ArticleListResponse{
		Count:    len(enriched),
		Articles: enriched,
	})
}

// handleNewsBySymbol handles GET /api/articles/stock/{symbol}/news.
func (s *Server) handleNewsBySymbol(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	items, err := s.app.Storage.News().ListBySymbol(r.Context(), symbol, defaultNewsLimit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load news: "+err.Error())
		return
	}
	if len(items) == 0 {
		WriteError(w, http.StatusNotFound, "No news for "+symbol)
		return
	}

	WriteJSON(w, http.StatusOK, NewsListResponse{
		Symbol: symbol,
		Count:  len(items),
		News:   items,
	})
}
