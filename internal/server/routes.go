package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Stocks
	mux.HandleFunc("/api/stocks/daily", s.handleStocksDaily)
	mux.HandleFunc("/api/stocks/history", s.handleStocksHistory)
	mux.HandleFunc("/api/stocks/trending", s.handleStocksTrending)
	mux.HandleFunc("/api/stocks/fetch", s.handleStocksFetch)
	mux.HandleFunc("/api/stocks/", s.handleStockBySymbol)

	// Articles
	mux.HandleFunc("/api/articles/daily", s.handleArticlesDaily)
	mux.HandleFunc("/api/articles/history", s.handleArticlesHistory)
	mux.HandleFunc("/api/articles/slug/", s.handleArticleBySlug)
	mux.HandleFunc("/api/articles/stock/", s.routeArticleStock)
	mux.HandleFunc("/api/articles/", s.handleArticleByID)

	// Jobs
	mux.HandleFunc("/api/jobs/status", s.handleJobStatus)
}

// routeArticleStock dispatches /api/articles/stock/{symbol} and
// /api/articles/stock/{symbol}/news.
func (s *Server) routeArticleStock(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/articles/stock/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required in path")
		return
	}

	parts := strings.SplitN(path, "/", 2)
	symbol := strings.ToUpper(parts[0])
	if len(parts) == 1 {
		s.handleArticlesBySymbol(w, r, symbol)
		return
	}

	switch parts[1] {
	case "news":
		s.handleNewsBySymbol(w, r, symbol)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, VersionResponse{
		Version: common.GetVersion(),
		Build:   common.GetBuild(),
		Commit:  common.GetGitCommit(),
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	run, err := s.app.Pipeline.LastRun(r.Context())
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "No pipeline runs recorded")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to load job status: "+err.Error())
		return
	}

	resp := JobStatusResponse{
		SchedulerEnabled: s.app.Config.Scheduler.Enabled,
		LastRun:          run,
	}
	if s.app.Config.Scheduler.Enabled {
		if next := s.app.Scheduler.NextRun(); !next.IsZero() {
			resp.NextRun = &next
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// snapshotDay resolves the day a snapshot query targets: the date parameter
// when present, otherwise today.
func snapshotDay(requested *time.Time) time.Time {
	if requested != nil {
		return *requested
	}
	return time.Now()
}
