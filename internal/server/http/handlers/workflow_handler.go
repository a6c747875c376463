package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
	"github.com/polkiloo/qrloyalty/internal/server/http/dto"
	"github.com/polkiloo/qrloyalty/internal/workflow"
)

// WorkflowHandler exposes scans and the operator side of the purchase conversation.
type WorkflowHandler struct {
	facade WorkflowFacade
}

// NewWorkflowHandler constructs WorkflowHandler.
func NewWorkflowHandler(facade WorkflowFacade) *WorkflowHandler {
	return &WorkflowHandler{facade: facade}
}

// Scan handles POST /api/scan.
func (h *WorkflowHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if req.BusinessID <= 0 && req.Payload == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	res, err := h.facade.Scan(c.Request.Context(), workflow.ScanRequest{
		CustomerID:  req.CustomerID,
		DisplayName: req.DisplayName,
		Handle:      req.Handle,
		BusinessID:  req.BusinessID,
	}, req.Payload)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidScanPayload), errors.Is(err, domainErrors.ErrCustomerNotFound):
			c.Status(http.StatusBadRequest)
		case errors.Is(err, domainErrors.ErrBusinessNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrOperatorBusy):
			c.Status(http.StatusConflict)
		case errors.Is(err, workflow.ErrRateLimited):
			c.Status(http.StatusTooManyRequests)
		case errors.Is(err, workflow.ErrEngineClosed):
			c.Status(http.StatusServiceUnavailable)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusAccepted, dto.ScanResponse{
		SessionID:    res.SessionID,
		BusinessID:   res.Business.ID,
		BusinessName: res.Business.Name,
		Balance:      res.Balance,
	})
}

// Current handles GET /api/operator/workflow.
func (h *WorkflowHandler) Current(c *gin.Context) {
	s, ok := h.facade.ActiveWorkflow(CurrentOperatorID(c))
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.SessionResponse{
		SessionID:    s.ID,
		State:        string(s.State),
		CustomerID:   s.CustomerID,
		CustomerName: s.CustomerName,
		BusinessID:   s.BusinessID,
		BusinessName: s.BusinessName,
		Amount:       s.Amount,
		StartedAt:    s.StartedAt,
	})
}

// Input handles POST /api/operator/workflow/input.
func (h *WorkflowHandler) Input(c *gin.Context) {
	var req dto.WorkflowInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	reply, err := h.facade.AdvanceWorkflow(c.Request.Context(), CurrentOperatorID(c), req.Input)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReplyResponse(reply))
}

// Cancel handles POST /api/operator/workflow/cancel.
func (h *WorkflowHandler) Cancel(c *gin.Context) {
	if err := h.facade.CancelWorkflow(c.Request.Context(), CurrentOperatorID(c)); err != nil {
		writeWorkflowError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeWorkflowError(c *gin.Context, err error) {
	var (
		capErr     domainErrors.RedemptionCapError
		balanceErr domainErrors.InsufficientBalanceError
	)
	switch {
	case errors.Is(err, domainErrors.ErrNoActiveSession):
		c.Status(http.StatusNotFound)
	case errors.As(err, &capErr):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error(), Cap: &capErr.Cap})
	case errors.As(err, &balanceErr):
		c.JSON(http.StatusPaymentRequired, dto.ErrorResponse{Error: err.Error(), Balance: &balanceErr.Balance})
	case errors.Is(err, domainErrors.ErrInsufficientBalance):
		c.JSON(http.StatusPaymentRequired, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrInvalidAmount), errors.Is(err, domainErrors.ErrInvalidPoints),
		errors.Is(err, domainErrors.ErrRedemptionCapExceeded):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrConcurrentModification):
		// Retries are exhausted and the session has already ended as FAILED.
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "purchase not applied, session ended: " + err.Error()})
	default:
		c.Status(http.StatusInternalServerError)
	}
}

func toReplyResponse(reply *model.WorkflowReply) dto.WorkflowReplyResponse {
	resp := dto.WorkflowReplyResponse{
		SessionID: reply.SessionID,
		State:     string(reply.State),
		Prompt:    reply.Prompt,
	}
	if res := reply.Result; res != nil {
		resp.Result = &dto.CommitResultResponse{
			TransactionID:  res.Transaction.ID,
			Amount:         res.Transaction.Amount,
			PointsRedeemed: res.Transaction.PointsRedeemed,
			PointsAccrued:  res.Transaction.PointsAccrued,
			NewBalance:     res.NewBalance,
			Tier:           res.Tier.Current.Name,
			TierChanged:    res.TierChanged,
		}
	}
	return resp
}
