package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/models"
)

// handleStocksDaily handles GET /api/stocks/daily?date=&top=.
// Winners and losers are recomputed from the stored ranked rows.
func (s *Server) handleStocksDaily(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	requested, ok := DateQuery(w, r, "date")
	if !ok {
		return
	}
	day := snapshotDay(requested)
	topN := IntQuery(r, "top", s.app.Config.Pipeline.GetTopN())

	rows, err := s.app.Storage.Snapshots().ListByDate(r.Context(), day)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load snapshots: "+err.Error())
		return
	}
	if len(rows) == 0 {
		WriteError(w, http.StatusNotFound, "No snapshot data for "+day.Format(dateLayout))
		return
	}

	if topN > len(rows) {
		topN = len(rows)
	}

	// Rows arrive ranked by percent change descending.
	winners := rows[:topN]
	losers := make([]*models.StockSnapshot, 0, topN)
	for i := len(rows) - 1; i >= len(rows)-topN; i-- {
		losers = append(losers, rows[i])
	}

	WriteJSON(w, http.StatusOK, DailyMoversResponse{
		Date:    day.Format(dateLayout),
		Winners: winners,
		Losers:  losers,
	})
}

// handleStocksHistory handles GET /api/stocks/history?date=.
func (s *Server) handleStocksHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	requested, ok := DateQuery(w, r, "date")
	if !ok {
		return
	}
	day := snapshotDay(requested)

	rows, err := s.app.Storage.Snapshots().ListByDate(r.Context(), day)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load snapshots: "+err.Error())
		return
	}
	if len(rows) == 0 {
		WriteError(w, http.StatusNotFound, "No stock data found for "+day.Format(dateLayout))
		return
	}

	WriteJSON(w, http.StatusOK, SnapshotListResponse{
		Date:   day.Format(dateLayout),
		Count:  len(rows),
		Stocks: rows,
	})
}

// handleStocksTrending handles GET /api/stocks/trending?date=.
func (s *Server) handleStocksTrending(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	requested, ok := DateQuery(w, r, "date")
	if !ok {
		return
	}
	day := snapshotDay(requested)

	rows, err := s.app.Storage.Snapshots().ListTrending(r.Context(), day)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load trending stocks: "+err.Error())
		return
	}
	if len(rows) == 0 {
		WriteError(w, http.StatusNotFound, "No trending stocks for "+day.Format(dateLayout))
		return
	}

	WriteJSON(w, http.StatusOK, SnapshotListResponse{
		Date:   day.Format(dateLayout),
		Count:  len(rows),
		Stocks: rows,
	})
}

// handleStocksFetch handles POST /api/stocks/fetch?top=. The pipeline runs in
// the background; the response carries the queued job's id for polling.
func (s *Server) handleStocksFetch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	topN := IntQuery(r, "top", 0)
	job, err := s.app.Pipeline.Enqueue(r.Context(), topN)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to enqueue pipeline run: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusAccepted, FetchAcceptedResponse{
		JobID:  job.ID,
		Status: job.Status,
		TopN:   job.TopN,
	})
}

// handleStockBySymbol handles GET /api/stocks/{symbol}?date=.
func (s *Server) handleStockBySymbol(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := strings.ToUpper(PathParam(r, "/api/stocks/", ""))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required in path")
		return
	}

	requested, ok := DateQuery(w, r, "date")
	if !ok {
		return
	}

	snap, err := s.app.Storage.Snapshots().GetBySymbol(r.Context(), symbol, requested)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "No snapshot for "+symbol)
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to load snapshot: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, snap)
}
