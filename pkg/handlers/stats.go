package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// statsUnavailable is shown when a count query fails; the sidebar stays
// up even when the mart is briefly unreachable.
const statsUnavailable = "N/A"

// RowCounter counts rows in a mart table.
type RowCounter interface {
	CountRows(ctx context.Context, tableName string) (int64, error)
}

// StatsResponse is the reply to GET /api/stats. Values are strings so a
// failed count can be reported as "N/A" without changing the shape.
type StatsResponse struct {
	TotalPostings string `json:"total_postings"`
	Companies     string `json:"companies"`
	Skills        string `json:"skills"`
}

// StatsHandler serves the sidebar summary stats.
type StatsHandler struct {
	counter RowCounter
	logger  *zap.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(counter RowCounter, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{counter: counter, logger: logger.Named("stats")}
}

// RegisterRoutes registers the stats handler's routes on the given mux.
func (h *StatsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/stats", h.Stats)
}

// Stats handles GET /api/stats requests.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	response := StatsResponse{
		TotalPostings: h.count(r.Context(), "dbo.Job_Fact_Table"),
		Companies:     h.count(r.Context(), "dbo.Company_Dimension_Table"),
		Skills:        h.count(r.Context(), "dbo.Skill_Dimension_Table"),
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("failed to encode stats response", zap.Error(err))
	}
}

func (h *StatsHandler) count(ctx context.Context, table string) string {
	n, err := h.counter.CountRows(ctx, table)
	if err != nil {
		h.logger.Warn("count failed",
			zap.String("table", table),
			zap.Error(err))
		return statsUnavailable
	}
	return strconv.FormatInt(n, 10)
}
