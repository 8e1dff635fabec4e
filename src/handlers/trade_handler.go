package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/tradefolio/backend/src/logger"
	"github.com/username/tradefolio/backend/src/models"
	"github.com/username/tradefolio/backend/src/services"
	"github.com/username/tradefolio/backend/src/utils"
)

type TradeHandler struct {
	importService services.ImportService
}

func NewTradeHandler(service services.ImportService) *TradeHandler {
	return &TradeHandler{
		importService: service,
	}
}

// HandleGetTrades returns the user's consolidated trades in entry order,
// with ETag support so unchanged lists answer 304.
func (h *TradeHandler) HandleGetTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	trades, err := h.importService.GetTrades(userID)
	if err != nil {
		logger.L.Error("Error retrieving trades from service", "userID", userID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving trades for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	if trades == nil {
		trades = []models.Trade{}
	}

	w.Header().Set("Cache-Control", "no-cache, private")
	currentETag, etagErr := utils.GenerateETag(trades)
	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("%q", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, cETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	} else {
		logger.L.Warn("Proceeding without ETag check due to ETag generation error", "userID", userID)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(trades); err != nil {
		logger.L.Error("Error generating JSON response for trades", "userID", userID, "error", err)
	}
}

func (h *TradeHandler) HandleGetTradeByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	tradeID := r.PathValue("id")
	if tradeID == "" {
		utils.SendJSONError(w, "trade id is required", http.StatusBadRequest)
		return
	}

	trade, err := h.importService.GetTradeByID(userID, tradeID)
	if err != nil {
		if errors.Is(err, services.ErrTradeNotFound) {
			utils.SendJSONError(w, fmt.Sprintf("trade %s not found", tradeID), http.StatusNotFound)
			return
		}
		logger.L.Error("Error retrieving trade", "userID", userID, "tradeID", tradeID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving trade %s: %v", tradeID, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(trade); err != nil {
		logger.L.Error("Error generating JSON response for trade", "userID", userID, "tradeID", tradeID, "error", err)
	}
}

func (h *TradeHandler) HandleDeleteAllTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := h.importService.DeleteAllTrades(userID); err != nil {
		logger.L.Error("Error deleting trades", "userID", userID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error deleting trades for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}

	logger.L.Info("Deleted all trades for user", "userID", userID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "all trades deleted"})
}
