package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/tradefolio/backend/src/logger"
	"github.com/username/tradefolio/backend/src/models"
	"github.com/username/tradefolio/backend/src/processors"
	"github.com/username/tradefolio/backend/src/services"
	"github.com/username/tradefolio/backend/src/utils"
)

type AnalyticsHandler struct {
	importService services.ImportService
}

func NewAnalyticsHandler(service services.ImportService) *AnalyticsHandler {
	return &AnalyticsHandler{
		importService: service,
	}
}

func (h *AnalyticsHandler) HandleGetPnlWindows(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	windows, err := h.importService.GetPnlWindows(userID)
	if err != nil {
		logger.L.Error("Error computing pnl windows", "userID", userID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error computing pnl windows for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	if windows == nil {
		windows = []models.PnlWindow{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(windows); err != nil {
		logger.L.Error("Error generating JSON response for pnl windows", "userID", userID, "error", err)
	}
}

func (h *AnalyticsHandler) HandleGetWinLossRatio(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	ratio, err := h.importService.GetWinLossRatio(userID)
	if err != nil {
		logger.L.Error("Error computing win/loss ratio", "userID", userID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error computing win/loss ratio for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"winLossRatio": ratio})
}

func (h *AnalyticsHandler) HandleGetPnlSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	group := r.URL.Query().Get("group")
	if group == "" {
		group = processors.GroupDay
	}
	if !processors.ValidSummaryGroup(group) {
		utils.SendJSONError(w, fmt.Sprintf("invalid group %q, expected one of day, week, month, year", group), http.StatusBadRequest)
		return
	}

	summary, err := h.importService.GetPnlSummary(userID, group)
	if err != nil {
		logger.L.Error("Error computing pnl summary", "userID", userID, "group", group, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error computing pnl summary for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	if summary == nil {
		summary = []models.PnlSummaryEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		logger.L.Error("Error generating JSON response for pnl summary", "userID", userID, "error", err)
	}
}

func (h *AnalyticsHandler) HandleGetTotalPnl(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	total, byType, err := h.importService.GetTotalPnl(userID)
	if err != nil {
		logger.L.Error("Error computing total pnl", "userID", userID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error computing total pnl for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	if byType == nil {
		byType = map[string]float64{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"totalPnl":       total,
		"pnlByTradeType": byType,
	})
}
