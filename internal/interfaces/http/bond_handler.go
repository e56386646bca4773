package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmanzanog/bond-tracker/internal/domain"
)

type RegistryMatchResponse struct {
	CVal     string `json:"cval"`
	Matching bool   `json:"matching"`
}

// bindFields decodes a JSON object body into the writable bond fields.
// Numbers are kept as written so decimals do not pass through float64.
func bindFields(c *gin.Context) (domain.FieldSet, bool) {
	var payload map[string]any
	decoder := json.NewDecoder(c.Request.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil || payload == nil {
		slog.ErrorContext(c.Request.Context(), "Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Request body must be a JSON object.",
			Kind:  string(domain.KindInvalidValue),
		})
		return nil, false
	}
	fields, err := domain.SubmittedFields(payload)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return fields, true
}

func (h *Handler) CreateBond(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}

	bond, err := h.bondService.CreateBond(c.Request.Context(), currentUserID(c), fields)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "Failed to create bond", "cval", fields[domain.FieldCVal], "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bond)
}

func (h *Handler) ListBonds(c *gin.Context) {
	bonds, err := h.bondService.ListBonds(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, bonds)
}

func (h *Handler) GetBond(c *gin.Context) {
	bond, err := h.bondService.GetBond(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, bond)
}

func (h *Handler) ReplaceBond(c *gin.Context) {
	h.updateBond(c, false)
}

func (h *Handler) PatchBond(c *gin.Context) {
	h.updateBond(c, true)
}

func (h *Handler) updateBond(c *gin.Context, partial bool) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}

	bondID := c.Param("id")
	bond, err := h.bondService.UpdateBond(c.Request.Context(), currentUserID(c), bondID, fields, partial)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "Failed to update bond", "bond_id", bondID, "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, bond)
}

func (h *Handler) DeleteBond(c *gin.Context) {
	if err := h.bondService.DeleteBond(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) AnalyzePortfolio(c *gin.Context) {
	analysis, err := h.bondService.AnalyzePortfolio(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// VerifyIdentifier answers whether the registry knows the identifier.
// Registry outages are reported as 502 here, not as validation errors.
func (h *Handler) VerifyIdentifier(c *gin.Context) {
	cval := c.Param("cval")

	matching, err := h.bondService.VerifyIdentifier(c.Request.Context(), cval)
	if err != nil {
		if domain.IsValidationKind(err, domain.KindRegistryUnavailable) {
			slog.ErrorContext(c.Request.Context(), "Registry unavailable", "cval", cval, "error", err)
			c.JSON(http.StatusBadGateway, ErrorResponse{
				Error: "Error occurred while validating ISIN.",
				Kind:  string(domain.KindRegistryUnavailable),
			})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, RegistryMatchResponse{CVal: cval, Matching: matching})
}
