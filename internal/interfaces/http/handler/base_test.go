package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/interfaces/http/dto"
	"github.com/dropship/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func handleErrorResponse(t *testing.T, err error) (int, dto.ErrorInfo) {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	h := &BaseHandler{}
	h.HandleError(c, err)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return rec.Code, *resp.Error
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantReason string
	}{
		{"not found kind", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound, ""},
		{"duplicate rule", shared.NewDomainErrorOfKind(shared.ErrAlreadyExists, "DUPLICATE_BRAND_RULE", "brand exists"),
			http.StatusConflict, dto.ErrCodeAlreadyExists, "DUPLICATE_BRAND_RULE"},
		{"wrapped sale price", fmt.Errorf("%w: got 0.00", eligibility.ErrInvalidSalePrice),
			http.StatusBadRequest, dto.ErrCodeInvalidInput, "INVALID_SALE_PRICE"},
		{"unknown marketplace", fmt.Errorf("%w: %q", eligibility.ErrUnknownMarketplace, "amazon"),
			http.StatusUnprocessableEntity, dto.ErrCodeUnknownConfiguration, "UNKNOWN_MARKETPLACE"},
		{"no rate", eligibility.ErrNoRateDefined, http.StatusUnprocessableEntity, dto.ErrCodeUnknownConfiguration, "NO_RATE_DEFINED"},
		{"unexpected eof", io.ErrUnexpectedEOF, http.StatusBadRequest, dto.ErrCodeInvalidJSON, ""},
		{"body too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, dto.ErrCodeBodyTooLarge, ""},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, info := handleErrorResponse(t, tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.Equal(t, tt.wantReason, info.Reason)
		})
	}
}

func TestHandleErrorHidesInternalMessage(t *testing.T) {
	_, info := handleErrorResponse(t, errors.New("pq: connection refused"))
	assert.NotContains(t, info.Message, "pq")
}

func TestHandleErrorValidation(t *testing.T) {
	type body struct {
		Token string `json:"token" binding:"required"`
	}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h := &BaseHandler{}
	var b body
	assert.False(t, h.BindJSON(c, &b))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "token", resp.Error.Details[0].Field)
	assert.Equal(t, "required", resp.Error.Details[0].Tag)
}

func TestParamID(t *testing.T) {
	h := &BaseHandler{}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := h.ParamID(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "6f1c1b52-4a5e-4d9b-9c49-2a7a7a0e0c11"}}
	id, ok := h.ParamID(c)
	assert.True(t, ok)
	assert.Equal(t, "6f1c1b52-4a5e-4d9b-9c49-2a7a7a0e0c11", id.String())
}
