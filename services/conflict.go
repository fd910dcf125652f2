package services

import (
	"fmt"
	"strings"

	"kanzlei_app_go/models"

	"gorm.io/gorm"
)

// ConflictRuleClientIsOpenOpponent names the conflict-of-interest rule: a
// client must not simultaneously be the opponent of another open case.
const ConflictRuleClientIsOpenOpponent = "client_is_open_opponent"

// NormalizePartyName is the correlating key of the conflict rule. Clients
// and opponents are independently keyed records, so the rule correlates them
// by trimmed, case-folded name.
func NormalizePartyName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ClientIsOpenOpponent reports whether the candidate client is currently the
// opponent of any open case. Must be evaluated inside the transaction that
// creates the new case, so the check and the insert cannot be interleaved by
// a concurrent close or create.
func ClientIsOpenOpponent(tx *gorm.DB, client *models.Client) (bool, error) {
	var count int64
	err := tx.Model(&models.Case{}).
		Joins("JOIN opponents ON opponents.id = cases.opponent_id").
		Where("cases.status = ?", models.CaseStatusOpen).
		Where("LOWER(TRIM(opponents.name)) = ?", NormalizePartyName(client.Name)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("conflict check failed: %w", err)
	}
	return count > 0, nil
}
