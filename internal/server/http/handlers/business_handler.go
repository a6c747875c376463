package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
	"github.com/polkiloo/qrloyalty/internal/server/http/dto"
	"github.com/polkiloo/qrloyalty/internal/usecase"
	"github.com/polkiloo/qrloyalty/internal/workflow"
)

// BusinessHandler manages operator owned businesses.
type BusinessHandler struct {
	facade BusinessFacade
}

// NewBusinessHandler constructs BusinessHandler.
func NewBusinessHandler(facade BusinessFacade) *BusinessHandler {
	return &BusinessHandler{facade: facade}
}

// Create handles POST /api/operator/businesses.
func (h *BusinessHandler) Create(c *gin.Context) {
	var req dto.CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	business, err := h.facade.CreateBusiness(c.Request.Context(), CurrentOperatorID(c), req.Name, req.ConversionRate)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidBusinessName), errors.Is(err, domainErrors.ErrInvalidConversionRate):
			c.Status(http.StatusUnprocessableEntity)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, toBusinessResponse(*business))
}

// List handles GET /api/operator/businesses.
func (h *BusinessHandler) List(c *gin.Context) {
	businesses, err := h.facade.Businesses(c.Request.Context(), CurrentOperatorID(c))
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(businesses) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	resp := make([]dto.BusinessResponse, 0, len(businesses))
	for _, b := range businesses {
		resp = append(resp, toBusinessResponse(b))
	}
	c.JSON(http.StatusOK, resp)
}

// Tiers handles GET /api/operator/businesses/:businessID/tiers.
func (h *BusinessHandler) Tiers(c *gin.Context) {
	businessID, ok := idParam(c, "businessID")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	tiers, err := h.facade.Tiers(c.Request.Context(), businessID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrBusinessNotFound):
			c.Status(http.StatusNotFound)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusOK, toTierResponses(tiers))
}

// ReplaceTiers handles PUT /api/operator/businesses/:businessID/tiers.
func (h *BusinessHandler) ReplaceTiers(c *gin.Context) {
	businessID, ok := idParam(c, "businessID")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}
	var req []dto.TierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	tiers := make([]model.RewardTier, 0, len(req))
	for _, t := range req {
		tiers = append(tiers, model.RewardTier{Name: t.Name, MinThreshold: t.MinThreshold, CashbackPercent: t.CashbackPercent})
	}

	stored, err := h.facade.ReplaceTiers(c.Request.Context(), CurrentOperatorID(c), businessID, tiers)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidTiers):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrBusinessNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrForbidden):
			c.Status(http.StatusForbidden)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusOK, toTierResponses(stored))
}

func toBusinessResponse(b model.Business) dto.BusinessResponse {
	return dto.BusinessResponse{
		ID:             b.ID,
		Name:           b.Name,
		ConversionRate: b.ConversionRate,
		ScanPayload:    workflow.ScanPayload(b.ID),
	}
}

func toTierResponses(tiers []model.RewardTier) []dto.TierResponse {
	resp := make([]dto.TierResponse, 0, len(tiers))
	for _, t := range tiers {
		resp = append(resp, dto.TierResponse{Name: t.Name, MinThreshold: t.MinThreshold, CashbackPercent: t.CashbackPercent})
	}
	return resp
}
