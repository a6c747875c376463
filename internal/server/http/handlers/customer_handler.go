package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
	"github.com/polkiloo/qrloyalty/internal/server/http/dto"
)

// CustomerHandler serves customer balance, history and statistics.
type CustomerHandler struct {
	facade CustomerFacade
}

// NewCustomerHandler constructs CustomerHandler.
func NewCustomerHandler(facade CustomerFacade) *CustomerHandler {
	return &CustomerHandler{facade: facade}
}

// Profile handles GET /api/customers/:customerID/profile.
func (h *CustomerHandler) Profile(c *gin.Context) {
	profile, err := h.facade.Profile(c.Request.Context(), customerParam(c))
	if err != nil {
		writeReadError(c, err)
		return
	}

	resp := dto.ProfileResponse{
		CustomerID: profile.Customer.ID,
		Name:       profile.Customer.Name(),
		Balances:   make([]dto.BalanceResponse, 0, len(profile.Balances)),
	}
	for _, b := range profile.Balances {
		resp.Balances = append(resp.Balances, toBalanceResponse(b))
	}
	c.JSON(http.StatusOK, resp)
}

// Balance handles GET /api/customers/:customerID/businesses/:businessID/balance.
func (h *CustomerHandler) Balance(c *gin.Context) {
	businessID, ok := idParam(c, "businessID")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}
	balance, err := h.facade.Balance(c.Request.Context(), customerParam(c), businessID)
	if err != nil {
		writeReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBalanceResponse(*balance))
}

// Transactions handles GET /api/customers/:customerID/businesses/:businessID/transactions.
func (h *CustomerHandler) Transactions(c *gin.Context) {
	businessID, ok := idParam(c, "businessID")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.Status(http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	txs, err := h.facade.Transactions(c.Request.Context(), customerParam(c), businessID, limit)
	if err != nil {
		writeReadError(c, err)
		return
	}
	if len(txs) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	resp := make([]dto.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp = append(resp, dto.TransactionResponse{
			ID:             tx.ID,
			Amount:         tx.Amount,
			PointsRedeemed: tx.PointsRedeemed,
			PointsAccrued:  tx.PointsAccrued,
			CreatedAt:      tx.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Stats handles GET /api/customers/:customerID/businesses/:businessID/stats.
func (h *CustomerHandler) Stats(c *gin.Context) {
	businessID, ok := idParam(c, "businessID")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}
	stats, err := h.facade.Stats(c.Request.Context(), customerParam(c), businessID)
	if err != nil {
		writeReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatsResponse{
		TotalVisits:        stats.TotalVisits,
		CurrentMonthVisits: stats.CurrentMonthVisits,
		TotalSpent:         stats.TotalSpent,
		ByHour:             stats.ByHour,
		ByWeekday:          stats.ByWeekday,
		MostFrequentHour:   stats.MostFrequentHour,
	})
}

func customerParam(c *gin.Context) string {
	return strings.TrimSpace(c.Param("customerID"))
}

func writeReadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrCustomerNotFound), errors.Is(err, domainErrors.ErrBusinessNotFound):
		c.Status(http.StatusNotFound)
	default:
		c.Status(http.StatusInternalServerError)
	}
}

func toBalanceResponse(b model.Balance) dto.BalanceResponse {
	tier := dto.TierProgressResponse{
		Current:         b.Tier.Current.Name,
		CashbackPercent: b.Tier.Current.CashbackPercent,
		Value:           b.Tier.Value,
		ProgressPercent: b.Tier.ProgressPercent,
	}
	if next := b.Tier.Next; next != nil {
		threshold := next.MinThreshold
		tier.Next = next.Name
		tier.NextThreshold = &threshold
	}
	return dto.BalanceResponse{
		BusinessID:   b.Business.ID,
		BusinessName: b.Business.Name,
		Points:       b.Points,
		Tier:         tier,
	}
}
