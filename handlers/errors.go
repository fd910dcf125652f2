package handlers

import (
	"errors"
	"net/http"

	"kanzlei_app_go/services"

	"github.com/labstack/echo/v4"
)

// errorResponse is the JSON error body shared by all handlers
type errorResponse struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
	Rule   string `json:"rule,omitempty"`
}

// respondServiceError maps the service error taxonomy to HTTP statuses.
// Every kind keeps its identity on the wire; nothing collapses into a
// generic unexpected response.
func respondServiceError(c echo.Context, err error) error {
	var validationErr *services.ValidationError
	var conflictErr *services.ConflictError
	var notFoundErr *services.NotFoundError
	var writeErr *services.WriteError
	var storageErr *services.StorageError
	var pathErr *services.PathValidationError

	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, errorResponse{Kind: "validation", Detail: validationErr.Msg})
	case errors.As(err, &conflictErr):
		return c.JSON(http.StatusConflict, errorResponse{Kind: "conflict", Detail: conflictErr.Msg, Rule: conflictErr.Rule})
	case errors.As(err, &notFoundErr):
		return c.JSON(http.StatusNotFound, errorResponse{Kind: "not_found", Detail: notFoundErr.Error()})
	case errors.As(err, &pathErr):
		return c.JSON(http.StatusBadRequest, errorResponse{Kind: "path_validation", Detail: "invalid document path"})
	case errors.As(err, &storageErr):
		return c.JSON(http.StatusInternalServerError, errorResponse{Kind: "storage", Detail: storageErr.Error()})
	case errors.As(err, &writeErr):
		return c.JSON(http.StatusInternalServerError, errorResponse{Kind: "write", Detail: writeErr.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Kind: "write", Detail: err.Error()})
	}
}
