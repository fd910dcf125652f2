package services

import (
	"encoding/json"
	"fmt"

	"kanzlei_app_go/models"

	"gorm.io/gorm"
)

// ContactSnapshot is the flattened form of a client or opponent record
// frozen on a case at closure
type ContactSnapshot struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	BankDetails string `json:"bank_details"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Type        string `json:"type"`
}

// ThirdPartySnapshot is one frozen third-party entry including its role in
// the case. The snapshot list preserves link creation order.
type ThirdPartySnapshot struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Type    string `json:"type"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Notes   string `json:"notes"`
}

// FreezeMasterData copies the live client, opponent and third-party master
// data into the case's snapshot fields. The caller persists the case inside
// the same transaction; the snapshots are written exactly once per case and
// never refreshed afterwards.
func FreezeMasterData(tx *gorm.DB, kase *models.Case) error {
	var client models.Client
	if err := tx.First(&client, "id = ?", kase.ClientID).Error; err != nil {
		return fmt.Errorf("failed to load client for freeze: %w", err)
	}

	clientJSON, err := json.Marshal(ContactSnapshot{
		Name:        client.Name,
		Address:     client.Address,
		BankDetails: client.BankDetails,
		Phone:       client.Phone,
		Email:       client.Email,
		Type:        client.Type,
	})
	if err != nil {
		return fmt.Errorf("failed to encode client snapshot: %w", err)
	}
	kase.ClientSnapshot = string(clientJSON)

	// A case without an opponent freezes an empty snapshot rather than fail
	kase.OpponentSnapshot = "{}"
	if kase.OpponentID != nil {
		var opponent models.Opponent
		if err := tx.First(&opponent, "id = ?", *kase.OpponentID).Error; err != nil {
			return fmt.Errorf("failed to load opponent for freeze: %w", err)
		}
		opponentJSON, err := json.Marshal(ContactSnapshot{
			Name:        opponent.Name,
			Address:     opponent.Address,
			BankDetails: opponent.BankDetails,
			Phone:       opponent.Phone,
			Email:       opponent.Email,
			Type:        opponent.Type,
		})
		if err != nil {
			return fmt.Errorf("failed to encode opponent snapshot: %w", err)
		}
		kase.OpponentSnapshot = string(opponentJSON)
	}

	var links []models.CaseThirdParty
	if err := tx.Where("case_id = ?", kase.ID).
		Preload("ThirdParty").
		Order("created_at ASC").
		Find(&links).Error; err != nil {
		return fmt.Errorf("failed to load third parties for freeze: %w", err)
	}

	thirdParties := make([]ThirdPartySnapshot, 0, len(links))
	for _, link := range links {
		thirdParties = append(thirdParties, ThirdPartySnapshot{
			Name:    link.ThirdParty.Name,
			Role:    link.Role,
			Type:    link.ThirdParty.Type,
			Address: link.ThirdParty.Address,
			Phone:   link.ThirdParty.Phone,
			Email:   link.ThirdParty.Email,
			Notes:   link.ThirdParty.Notes,
		})
	}

	thirdPartyJSON, err := json.Marshal(thirdParties)
	if err != nil {
		return fmt.Errorf("failed to encode third-party snapshot: %w", err)
	}
	kase.ThirdPartySnapshot = string(thirdPartyJSON)

	return nil
}
