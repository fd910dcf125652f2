package services

import (
	"errors"
	"sort"
	"strings"

	"kanzlei_app_go/models"

	"gorm.io/gorm"
)

// Contacts are never deleted while a case still references them; the
// referencing cases would lose their party data before it was frozen.

// DeleteClient removes a client unless a case references it
func DeleteClient(db *gorm.DB, id string) error {
	var client models.Client
	if err := db.First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "client", ID: id}
		}
		return &WriteError{Op: "failed to load client", Err: err}
	}

	var count int64
	if err := db.Model(&models.Case{}).Where("client_id = ?", id).Count(&count).Error; err != nil {
		return &WriteError{Op: "failed to check client references", Err: err}
	}
	if count > 0 {
		return &ValidationError{Msg: "client is referenced by existing cases"}
	}

	if err := db.Delete(&client).Error; err != nil {
		return &WriteError{Op: "failed to delete client", Err: err}
	}
	return nil
}

// DeleteOpponent removes an opponent unless a case references it
func DeleteOpponent(db *gorm.DB, id string) error {
	var opponent models.Opponent
	if err := db.First(&opponent, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "opponent", ID: id}
		}
		return &WriteError{Op: "failed to load opponent", Err: err}
	}

	var count int64
	if err := db.Model(&models.Case{}).Where("opponent_id = ?", id).Count(&count).Error; err != nil {
		return &WriteError{Op: "failed to check opponent references", Err: err}
	}
	if count > 0 {
		return &ValidationError{Msg: "opponent is referenced by existing cases"}
	}

	if err := db.Delete(&opponent).Error; err != nil {
		return &WriteError{Op: "failed to delete opponent", Err: err}
	}
	return nil
}

// DeleteThirdParty removes a third party unless a case links it
func DeleteThirdParty(db *gorm.DB, id string) error {
	var thirdParty models.ThirdParty
	if err := db.First(&thirdParty, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "third party", ID: id}
		}
		return &WriteError{Op: "failed to load third party", Err: err}
	}

	var count int64
	if err := db.Model(&models.CaseThirdParty{}).Where("third_party_id = ?", id).Count(&count).Error; err != nil {
		return &WriteError{Op: "failed to check third-party references", Err: err}
	}
	if count > 0 {
		return &ValidationError{Msg: "third party is linked to existing cases"}
	}

	if err := db.Delete(&thirdParty).Error; err != nil {
		return &WriteError{Op: "failed to delete third party", Err: err}
	}
	return nil
}

// AddressBookEntry is one search hit across clients and opponents
type AddressBookEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Type      string `json:"type"`
	ModelType string `json:"model_type"` // "client" or "opponent"
}

// SearchAddressBook searches clients and opponents by name, email or phone
// and returns the combined result sorted by name. An empty query lists
// everything.
func SearchAddressBook(db *gorm.DB, query string) ([]AddressBookEntry, error) {
	query = strings.TrimSpace(query)
	pattern := "%" + query + "%"

	clientQuery := db.Model(&models.Client{})
	opponentQuery := db.Model(&models.Opponent{})
	if query != "" {
		clientQuery = clientQuery.Where(
			"name LIKE ? OR email LIKE ? OR phone LIKE ?", pattern, pattern, pattern)
		opponentQuery = opponentQuery.Where(
			"name LIKE ? OR email LIKE ? OR phone LIKE ?", pattern, pattern, pattern)
	}

	var clients []models.Client
	if err := clientQuery.Find(&clients).Error; err != nil {
		return nil, &WriteError{Op: "failed to search clients", Err: err}
	}
	var opponents []models.Opponent
	if err := opponentQuery.Find(&opponents).Error; err != nil {
		return nil, &WriteError{Op: "failed to search opponents", Err: err}
	}

	results := make([]AddressBookEntry, 0, len(clients)+len(opponents))
	for _, c := range clients {
		results = append(results, AddressBookEntry{
			ID: c.ID, Name: c.Name, Address: c.Address,
			Phone: c.Phone, Email: c.Email, Type: c.Type,
			ModelType: "client",
		})
	}
	for _, o := range opponents {
		results = append(results, AddressBookEntry{
			ID: o.ID, Name: o.Name, Address: o.Address,
			Phone: o.Phone, Email: o.Email, Type: o.Type,
			ModelType: "opponent",
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})
	return results, nil
}
