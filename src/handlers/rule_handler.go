package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/tradefolio/backend/src/logger"
	"github.com/username/tradefolio/backend/src/models"
	"github.com/username/tradefolio/backend/src/services"
	"github.com/username/tradefolio/backend/src/utils"
)

type RuleHandler struct {
	ruleService services.RuleService
}

func NewRuleHandler(service services.RuleService) *RuleHandler {
	return &RuleHandler{
		ruleService: service,
	}
}

// decodeRuleItems reads the request body as a JSON array of checklist
// entries. Each entry needs its text; selected defaults to false.
func decodeRuleItems(r *http.Request) ([]models.RuleItem, error) {
	var items []models.RuleItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("invalid rule list body: %w", err)
	}
	for i, item := range items {
		if item.Text == "" {
			return nil, fmt.Errorf("rule %d is missing its text", i)
		}
	}
	return items, nil
}

func ruleListIDFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func (h *RuleHandler) HandleCreateRuleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	items, err := decodeRuleItems(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ruleList, err := h.ruleService.CreateRuleList(userID, items)
	if err != nil {
		logger.L.Error("Error creating rule list", "userID", userID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error creating rule list for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ruleList); err != nil {
		logger.L.Error("Error encoding JSON response for rule list", "userID", userID, "error", err)
	}
}

func (h *RuleHandler) HandleGetRuleLists(w http.ResponseWriter, r *http.Request) {
	h.sendRuleLists(w, r, false)
}

func (h *RuleHandler) HandleGetDisabledRuleLists(w http.ResponseWriter, r *http.Request) {
	h.sendRuleLists(w, r, true)
}

func (h *RuleHandler) sendRuleLists(w http.ResponseWriter, r *http.Request, disabled bool) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var ruleLists []models.RuleList
	var err error
	if disabled {
		ruleLists, err = h.ruleService.GetDisabledRuleLists(userID)
	} else {
		ruleLists, err = h.ruleService.GetEnabledRuleLists(userID)
	}
	if err != nil {
		logger.L.Error("Error retrieving rule lists", "userID", userID, "disabled", disabled, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error retrieving rule lists for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"rules": ruleLists,
		"count": len(ruleLists),
	}); err != nil {
		logger.L.Error("Error encoding JSON response for rule lists", "userID", userID, "error", err)
	}
}

func (h *RuleHandler) HandleGetRuleListByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	id, err := ruleListIDFromPath(r)
	if err != nil {
		utils.SendJSONError(w, "rule list id must be numeric", http.StatusBadRequest)
		return
	}

	ruleList, err := h.ruleService.GetRuleListByID(userID, id)
	if err != nil {
		h.sendRuleListError(w, userID, id, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ruleList)
}

func (h *RuleHandler) HandleUpdateRuleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	id, err := ruleListIDFromPath(r)
	if err != nil {
		utils.SendJSONError(w, "rule list id must be numeric", http.StatusBadRequest)
		return
	}

	items, err := decodeRuleItems(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ruleList, err := h.ruleService.UpdateRuleList(userID, id, items)
	if err != nil {
		h.sendRuleListError(w, userID, id, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ruleList)
}

func (h *RuleHandler) HandleDisableRuleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	id, err := ruleListIDFromPath(r)
	if err != nil {
		utils.SendJSONError(w, "rule list id must be numeric", http.StatusBadRequest)
		return
	}

	ruleList, err := h.ruleService.DisableRuleList(userID, id)
	if err != nil {
		h.sendRuleListError(w, userID, id, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ruleList)
}

func (h *RuleHandler) sendRuleListError(w http.ResponseWriter, userID, id int64, err error) {
	if errors.Is(err, services.ErrRuleListNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("rule list %d not found", id), http.StatusNotFound)
		return
	}
	logger.L.Error("Error accessing rule list", "userID", userID, "ruleListID", id, "error", err)
	utils.SendJSONError(w, fmt.Sprintf("Error accessing rule list %d: %v", id, err), http.StatusInternalServerError)
}
