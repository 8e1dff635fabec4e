package models

import "time"

// RuleItem is one entry of a user's trading checklist.
type RuleItem struct {
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

// RuleList is a versioned checklist of trading rules. Lists are never
// deleted, only disabled, so past checklists stay auditable.
type RuleList struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"profileId"`
	Rules     []RuleItem `json:"ruleList"`
	Disabled  bool       `json:"disabled"`
	CreatedAt time.Time  `json:"createdAt"`
}
