package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
	"github.com/polkiloo/qrloyalty/internal/server/http/dto"
	"github.com/polkiloo/qrloyalty/internal/server/http/middleware"
	"github.com/polkiloo/qrloyalty/internal/test/facadestub"
	"github.com/polkiloo/qrloyalty/internal/usecase"
)

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func asOperator(id int64) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set(middleware.OperatorIDContextKey, id)
	}
}

func TestBusinessHandlerCreate(t *testing.T) {
	var gotOperator int64
	var gotRate *decimal.Decimal
	facade := facadestub.BusinessFacadeStub{CreateFn: func(ctx context.Context, operatorID int64, name string, rate *decimal.Decimal) (*model.Business, error) {
		gotOperator, gotRate = operatorID, rate
		return &model.Business{ID: 42, Name: name, ConversionRate: *rate, OperatorID: operatorID}, nil
	}}

	body := []byte(`{"name":"Coffee","conversion_rate":"7.5"}`)
	resp := performRequest(t, http.MethodPost, "/businesses", NewBusinessHandler(facade).Create, asOperator(9), body, jsonHeaders)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if gotOperator != 9 || gotRate == nil || !gotRate.Equal(decimal.RequireFromString("7.5")) {
		t.Fatalf("unexpected facade call operator=%d rate=%v", gotOperator, gotRate)
	}

	var out dto.BusinessResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.ID != 42 || out.ScanPayload != "business_42" {
		t.Fatalf("unexpected response %+v", out)
	}
}

func TestBusinessHandlerCreateFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   []byte
		err    error
		status int
	}{
		{name: "bad json", body: []byte("{"), status: http.StatusBadRequest},
		{name: "bad name", body: []byte(`{"name":""}`), err: usecase.ErrInvalidBusinessName, status: http.StatusUnprocessableEntity},
		{name: "bad rate", body: []byte(`{"name":"a","conversion_rate":0}`), err: domainErrors.ErrInvalidConversionRate, status: http.StatusUnprocessableEntity},
		{name: "internal", body: []byte(`{"name":"a"}`), err: errors.New("boom"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facade := facadestub.BusinessFacadeStub{CreateFn: func(context.Context, int64, string, *decimal.Decimal) (*model.Business, error) {
				return nil, tt.err
			}}
			resp := performRequest(t, http.MethodPost, "/businesses", NewBusinessHandler(facade).Create, asOperator(1), tt.body, jsonHeaders)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestBusinessHandlerList(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/businesses", NewBusinessHandler(facadestub.BusinessFacadeStub{}).List, asOperator(1), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	empty := facadestub.BusinessFacadeStub{BusinessesFn: func(context.Context, int64) ([]model.Business, error) { return nil, nil }}
	resp = performRequest(t, http.MethodGet, "/businesses", NewBusinessHandler(empty).List, asOperator(1), nil, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	failing := facadestub.BusinessFacadeStub{BusinessesFn: func(context.Context, int64) ([]model.Business, error) { return nil, errors.New("boom") }}
	resp = performRequest(t, http.MethodGet, "/businesses", NewBusinessHandler(failing).List, asOperator(1), nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestBusinessHandlerTiers(t *testing.T) {
	const route = "/businesses/:businessID/tiers"
	handler := NewBusinessHandler(facadestub.BusinessFacadeStub{TiersFn: func(ctx context.Context, id int64) ([]model.RewardTier, error) {
		if id == 404 {
			return nil, domainErrors.ErrBusinessNotFound
		}
		return []model.RewardTier{{Name: "Bronze"}, {Name: "Silver", MinThreshold: decimal.NewFromInt(500)}}, nil
	}})

	resp := performRoute(t, http.MethodGet, route, "/businesses/1/tiers", handler.Tiers, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var out []dto.TierResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil || len(out) != 2 {
		t.Fatalf("unexpected tiers %s (%v)", resp.Body.String(), err)
	}

	if resp := performRoute(t, http.MethodGet, route, "/businesses/404/tiers", handler.Tiers, nil, nil, nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if resp := performRoute(t, http.MethodGet, route, "/businesses/abc/tiers", handler.Tiers, nil, nil, nil); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestBusinessHandlerReplaceTiers(t *testing.T) {
	const route = "/businesses/:businessID/tiers"
	body := []byte(`[{"name":"Bronze","min_threshold":0,"cashback_percent":5},{"name":"Gold","min_threshold":"1000","cashback_percent":"15"}]`)

	var got []model.RewardTier
	ok := facadestub.BusinessFacadeStub{ReplaceTiersFn: func(ctx context.Context, operatorID, businessID int64, tiers []model.RewardTier) ([]model.RewardTier, error) {
		if operatorID != 9 || businessID != 3 {
			t.Errorf("unexpected ids operator=%d business=%d", operatorID, businessID)
		}
		got = tiers
		return tiers, nil
	}}
	resp := performRoute(t, http.MethodPut, route, "/businesses/3/tiers", NewBusinessHandler(ok).ReplaceTiers, asOperator(9), body, jsonHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(got) != 2 || !got[1].MinThreshold.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("unexpected tiers passed to facade %+v", got)
	}

	tests := []struct {
		name   string
		target string
		body   []byte
		err    error
		status int
	}{
		{name: "bad id", target: "/businesses/0/tiers", body: body, status: http.StatusBadRequest},
		{name: "bad json", target: "/businesses/3/tiers", body: []byte(`{}`), status: http.StatusBadRequest},
		{name: "invalid", target: "/businesses/3/tiers", body: body, err: domainErrors.ErrInvalidTiers, status: http.StatusUnprocessableEntity},
		{name: "missing", target: "/businesses/3/tiers", body: body, err: domainErrors.ErrBusinessNotFound, status: http.StatusNotFound},
		{name: "foreign", target: "/businesses/3/tiers", body: body, err: domainErrors.ErrForbidden, status: http.StatusForbidden},
		{name: "internal", target: "/businesses/3/tiers", body: body, err: errors.New("boom"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facade := facadestub.BusinessFacadeStub{ReplaceTiersFn: func(context.Context, int64, int64, []model.RewardTier) ([]model.RewardTier, error) {
				return nil, tt.err
			}}
			resp := performRoute(t, http.MethodPut, route, tt.target, NewBusinessHandler(facade).ReplaceTiers, asOperator(9), tt.body, jsonHeaders)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}
