package dto

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/dropship/backend/internal/domain/eligibility"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeUnknownConfiguration, http.StatusUnprocessableEntity},
		{ErrCodeTokenRevoked, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeBodyTooLarge, http.StatusRequestEntityTooLarge},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		ok   bool
	}{
		{"unknown bracket", eligibility.ErrUnknownBracket, ErrCodeInvalidInput, true},
		{"no rate", eligibility.ErrNoRateDefined, ErrCodeUnknownConfiguration, true},
		{"wrapped marketplace", fmt.Errorf("evaluate: %w", eligibility.ErrUnknownMarketplace), ErrCodeUnknownConfiguration, true},
		{"bare kind", shared.ErrNotFound, ErrCodeNotFound, true},
		{"plain error", fmt.Errorf("boom"), "", false},
		{"uncategorised domain error", shared.NewDomainError("ODD", "odd"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := CodeForError(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)
	require.NotNil(t, resp.Meta)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	resp = NewSuccessResponseWithMeta(nil, 0, 1, 0)
	assert.Equal(t, 0, resp.Meta.TotalPages)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "sale_price", Message: "sale_price is required", Tag: "required"},
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")

	errBody := decoded["error"].(map[string]any)
	assert.Equal(t, ErrCodeValidation, errBody["code"])
	assert.Equal(t, "req-1", errBody["request_id"])
	assert.NotContains(t, errBody, "reason")
	assert.Len(t, errBody["details"], 1)
}
