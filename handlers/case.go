package handlers

import (
	"net/http"

	"kanzlei_app_go/db"
	"kanzlei_app_go/middleware"
	"kanzlei_app_go/models"
	"kanzlei_app_go/services"

	"github.com/labstack/echo/v4"
)

// CreateCaseRequest is the payload for creating a case
type CreateCaseRequest struct {
	FileNumber string                 `json:"file_number"` // empty = allocate automatically
	ClientID   string                 `json:"client_id"`
	OpponentID string                 `json:"opponent_id"`
	ExtraData  map[string]interface{} `json:"extra_data"`
}

// CreateCaseHandler creates a new case after the conflict check
func CreateCaseHandler(c echo.Context) error {
	var req CreateCaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Detail: "invalid request body"})
	}

	kase, err := services.CreateCase(db.DB, services.Store, services.CreateCaseInput{
		FileNumber: req.FileNumber,
		ClientID:   req.ClientID,
		OpponentID: req.OpponentID,
		ExtraData:  req.ExtraData,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.AuditContextFrom(c),
		models.AuditActionCreate, "Case", kase.ID, kase.FileNumber,
		"Case created", nil, kase)

	return c.JSON(http.StatusCreated, kase)
}

// GetCasesHandler lists cases, optionally filtered by status
func GetCasesHandler(c echo.Context) error {
	cases, err := services.ListCases(db.DB, c.QueryParam("status"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, cases)
}

// GetCaseHandler returns a single case with its relationships
func GetCaseHandler(c echo.Context) error {
	kase, err := services.GetCase(db.DB, c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, kase)
}

// CloseCaseHandler closes a case and freezes its master data
func CloseCaseHandler(c echo.Context) error {
	kase, err := services.CloseCase(db.DB, services.Exporter, c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.AuditContextFrom(c),
		models.AuditActionClose, "Case", kase.ID, kase.FileNumber,
		"Case closed and master data frozen", nil, nil)

	return c.JSON(http.StatusOK, kase)
}

// ArchiveCaseHandler archives a closed case
func ArchiveCaseHandler(c echo.Context) error {
	kase, err := services.ArchiveCase(db.DB, c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.AuditContextFrom(c),
		models.AuditActionArchive, "Case", kase.ID, kase.FileNumber,
		"Case archived", nil, nil)

	return c.JSON(http.StatusOK, kase)
}

// RenameCaseRequest is the payload for changing a file number
type RenameCaseRequest struct {
	FileNumber string `json:"file_number"`
}

// RenameCaseHandler changes the file number and moves the case directory
func RenameCaseHandler(c echo.Context) error {
	var req RenameCaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Detail: "invalid request body"})
	}

	kase, err := services.RenameCase(db.DB, services.Store, c.Param("id"), req.FileNumber)
	if err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.AuditContextFrom(c),
		models.AuditActionRename, "Case", kase.ID, kase.FileNumber,
		"File number changed", nil, map[string]string{"file_number": kase.FileNumber})

	return c.JSON(http.StatusOK, kase)
}

// UpdateExtraDataRequest is the payload for replacing the extra-data blob
type UpdateExtraDataRequest struct {
	Data map[string]interface{} `json:"data"`
}

// UpdateExtraDataHandler atomically replaces the flexible extra data
func UpdateExtraDataHandler(c echo.Context) error {
	var req UpdateExtraDataRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Detail: "data must be a JSON object"})
	}

	kase, err := services.UpdateExtraData(db.DB, c.Param("id"), req.Data)
	if err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.AuditContextFrom(c),
		models.AuditActionUpdate, "Case", kase.ID, kase.FileNumber,
		"Extra data replaced", nil, req.Data)

	return c.JSON(http.StatusOK, kase)
}

// DeleteCaseHandler deletes a case record
func DeleteCaseHandler(c echo.Context) error {
	id := c.Param("id")
	if err := services.DeleteCase(db.DB, id); err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.AuditContextFrom(c),
		models.AuditActionDelete, "Case", id, "",
		"Case deleted", nil, nil)

	return c.NoContent(http.StatusNoContent)
}

// LinkThirdPartyRequest is the payload for linking a third party to a case
type LinkThirdPartyRequest struct {
	ThirdPartyID string `json:"third_party_id"`
	Role         string `json:"role"`
}

// LinkThirdPartyHandler attaches a third party with a role to a case
func LinkThirdPartyHandler(c echo.Context) error {
	var req LinkThirdPartyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Detail: "invalid request body"})
	}

	link, err := services.LinkThirdParty(db.DB, c.Param("id"), req.ThirdPartyID, req.Role)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, link)
}

// NextFileNumberHandler returns the next file number for the current period
// without consuming it
func NextFileNumberHandler(c echo.Context) error {
	period := c.QueryParam("period")
	if period == "" {
		period = services.CurrentPeriod()
	}

	next, err := services.PeekNextFileNumber(db.DB, period)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"next_file_number": next})
}

// CaseRegisterExportHandler streams the case register as an XLSX workbook
func CaseRegisterExportHandler(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="aktenregister.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	return services.ExportCaseRegister(db.DB, c.Response().Writer)
}
