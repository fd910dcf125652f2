package handlers

import (
	"net/http"

	"kanzlei_app_go/db"
	"kanzlei_app_go/models"
	"kanzlei_app_go/services"

	"github.com/labstack/echo/v4"
)

// ContactRequest is the shared payload for client, opponent and third-party
// create/update operations
type ContactRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	BankDetails string `json:"bank_details"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Type        string `json:"type"`
	Notes       string `json:"notes"`
}

func (r *ContactRequest) validate() *errorResponse {
	if r.Name == "" {
		return &errorResponse{Kind: "validation", Detail: "name is required"}
	}
	if r.Type != "" && !models.IsValidContactType(r.Type) {
		return &errorResponse{Kind: "validation", Detail: "invalid contact type"}
	}
	return nil
}

func contactType(requested string) string {
	if requested == "" {
		return models.ContactTypePerson
	}
	return requested
}

// CreateClientHandler creates a client record
func CreateClientHandler(c echo.Context) error {
	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Detail: "invalid request body"})
	}
	if resp := req.validate(); resp != nil {
		return c.JSON(http.StatusBadRequest, resp)
	}

	client := models.Client{
		Name:        req.Name,
		Address:     req.Address,
		BankDetails: req.BankDetails,
		Phone:       req.Phone,
		Email:       req.Email,
		Type:        contactType(req.Type),
	}
	if err := db.DB.Create(&client).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Kind: "write", Detail: "failed to create client"})
	}
	return c.JSON(http.StatusCreated, client)
}

// UpdateClientHandler updates a client record. Live contact edits never
// touch the snapshots frozen on closed cases.
func UpdateClientHandler(c echo.Context) error {
	var client models.Client
	if err := db.DB.First(&client, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, errorResponse{Kind: "not_found", Detail: "client not found"})
	}

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Detail: "invalid request body"})
	}
	if resp := req.validate(); resp != nil {
		return c.JSON(http.StatusBadRequest, resp)
	}

	client.Name = req.Name
	client.Address = req.Address
	client.BankDetails = req.BankDetails
	client.Phone = req.Phone
	client.Email = req.Email
	client.Type = contactType(req.Type)
	if err := db.DB.Save(&client).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Kind: "write", Detail: "failed to update client"})
	}
	return c.JSON(http.StatusOK, client)
}

// DeleteClientHandler deletes a client unless cases reference it
func DeleteClientHandler(c echo.Context) error {
	if err := services.DeleteClient(db.DB, c.Param("id")); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateOpponentHandler creates an opponent record
func CreateOpponentHandler(c echo.Context) error {
	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Detail: "invalid request body"})
	}
	if resp := req.validate(); resp != nil {
		return c.JSON(http.StatusBadRequest, resp)
	}

	opponent := models.Opponent{
		Name:        req.Name,
		Address:     req.Address,
		BankDetails: req.BankDetails,
		Phone:       req.Phone,
		Email:       req.Email,
		Type:        contactType(req.Type),
	}
	if err := db.DB.Create(&opponent).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Kind: "write", Detail: "failed to create opponent"})
	}
	return c.JSON(http.StatusCreated, opponent)
}

// UpdateOpponentHandler updates an opponent record
func UpdateOpponentHandler(c echo.Context) error {
	var opponent models.Opponent
	if err := db.DB.First(&opponent, "id = ?", c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, errorResponse{Kind: "not_found", Detail: "opponent not found"})
	}

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Detail: "invalid request body"})
	}
	if resp := req.validate(); resp != nil {
		return c.JSON(http.StatusBadRequest, resp)
	}

	opponent.Name = req.Name
	opponent.Address = req.Address
	opponent.BankDetails = req.BankDetails
	opponent.Phone = req.Phone
	opponent.Email = req.Email
	opponent.Type = contactType(req.Type)
	if err := db.DB.Save(&opponent).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Kind: "write", Detail: "failed to update opponent"})
	}
	return c.JSON(http.StatusOK, opponent)
}

// DeleteOpponentHandler deletes an opponent unless cases reference it
func DeleteOpponentHandler(c echo.Context) error {
	if err := services.DeleteOpponent(db.DB, c.Param("id")); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateThirdPartyHandler creates a third-party record
func CreateThirdPartyHandler(c echo.Context) error {
	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Detail: "invalid request body"})
	}
	if resp := req.validate(); resp != nil {
		return c.JSON(http.StatusBadRequest, resp)
	}

	thirdParty := models.ThirdParty{
		Name:        req.Name,
		Address:     req.Address,
		BankDetails: req.BankDetails,
		Phone:       req.Phone,
		Email:       req.Email,
		Type:        contactType(req.Type),
		Notes:       req.Notes,
	}
	if err := db.DB.Create(&thirdParty).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Kind: "write", Detail: "failed to create third party"})
	}
	return c.JSON(http.StatusCreated, thirdParty)
}

// DeleteThirdPartyHandler deletes a third party unless cases link it
func DeleteThirdPartyHandler(c echo.Context) error {
	if err := services.DeleteThirdParty(db.DB, c.Param("id")); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddressBookSearchHandler searches clients and opponents by name, email or
// phone for the take-over function in the UI
func AddressBookSearchHandler(c echo.Context) error {
	results, err := services.SearchAddressBook(db.DB, c.QueryParam("q"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, results)
}
