package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/username/tradefolio/backend/src/database"
	"github.com/username/tradefolio/backend/src/logger"
	"github.com/username/tradefolio/backend/src/models"
)

type ruleServiceImpl struct{}

func NewRuleService() RuleService {
	return &ruleServiceImpl{}
}

func (s *ruleServiceImpl) CreateRuleList(userID int64, items []models.RuleItem) (*models.RuleList, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}
	if items == nil {
		items = []models.RuleItem{}
	}

	rulesJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("error serializing rule list: %w", err)
	}

	res, err := database.DB.Exec(`INSERT INTO trade_rules (user_id, rule_list, created_at) VALUES (?, ?, ?)`,
		userID, string(rulesJSON), time.Now().UTC().Format(entryTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("error inserting rule list for userID %d: %w", userID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error reading rule list id: %w", err)
	}

	logger.L.Info("Rule list created", "userID", userID, "ruleListID", id)
	return s.fetchRuleList(userID, id)
}

func (s *ruleServiceImpl) GetEnabledRuleLists(userID int64) ([]models.RuleList, error) {
	return fetchRuleLists(userID, false)
}

func (s *ruleServiceImpl) GetDisabledRuleLists(userID int64) ([]models.RuleList, error) {
	return fetchRuleLists(userID, true)
}

// GetRuleListByID resolves an enabled rule list; disabled lists are only
// reachable through the disabled listing.
func (s *ruleServiceImpl) GetRuleListByID(userID int64, id int64) (*models.RuleList, error) {
	ruleList, err := s.fetchRuleList(userID, id)
	if err != nil {
		return nil, err
	}
	if ruleList.Disabled {
		return nil, ErrRuleListNotFound
	}
	return ruleList, nil
}

func (s *ruleServiceImpl) UpdateRuleList(userID int64, id int64, items []models.RuleItem) (*models.RuleList, error) {
	if items == nil {
		items = []models.RuleItem{}
	}
	rulesJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("error serializing rule list: %w", err)
	}

	res, err := database.DB.Exec(`UPDATE trade_rules SET rule_list = ? WHERE user_id = ? AND id = ? AND disabled = FALSE`, string(rulesJSON), userID, id)
	if err != nil {
		return nil, fmt.Errorf("error updating rule list %d for userID %d: %w", id, userID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrRuleListNotFound
	}
	return s.fetchRuleList(userID, id)
}

func (s *ruleServiceImpl) DisableRuleList(userID int64, id int64) (*models.RuleList, error) {
	res, err := database.DB.Exec(`UPDATE trade_rules SET disabled = TRUE WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return nil, fmt.Errorf("error disabling rule list %d for userID %d: %w", id, userID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrRuleListNotFound
	}

	logger.L.Info("Rule list disabled", "userID", userID, "ruleListID", id)
	return s.fetchRuleList(userID, id)
}

func (s *ruleServiceImpl) fetchRuleList(userID int64, id int64) (*models.RuleList, error) {
	row := database.DB.QueryRow(`SELECT id, user_id, rule_list, disabled, created_at FROM trade_rules WHERE user_id = ? AND id = ?`, userID, id)

	ruleList, err := scanRuleList(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrRuleListNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching rule list %d for userID %d: %w", id, userID, err)
	}
	return ruleList, nil
}

func fetchRuleLists(userID int64, disabled bool) ([]models.RuleList, error) {
	rows, err := database.DB.Query(`SELECT id, user_id, rule_list, disabled, created_at FROM trade_rules WHERE user_id = ? AND disabled = ? ORDER BY id DESC`, userID, disabled)
	if err != nil {
		return nil, fmt.Errorf("error querying rule lists for userID %d: %w", userID, err)
	}
	defer rows.Close()

	ruleLists := []models.RuleList{}
	for rows.Next() {
		ruleList, err := scanRuleList(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("error scanning rule list for userID %d: %w", userID, err)
		}
		ruleLists = append(ruleLists, *ruleList)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rule lists for userID %d: %w", userID, err)
	}
	return ruleLists, nil
}

func scanRuleList(scan func(dest ...interface{}) error) (*models.RuleList, error) {
	var ruleList models.RuleList
	var rulesJSON, createdAt string

	if err := scan(&ruleList.ID, &ruleList.UserID, &rulesJSON, &ruleList.Disabled, &createdAt); err != nil {
		return nil, err
	}
	if parsed, err := time.Parse(entryTimeLayout, createdAt); err == nil {
		ruleList.CreatedAt = parsed
	}
	if err := json.Unmarshal([]byte(rulesJSON), &ruleList.Rules); err != nil {
		return nil, fmt.Errorf("error deserializing rule list %d: %w", ruleList.ID, err)
	}
	return &ruleList, nil
}
