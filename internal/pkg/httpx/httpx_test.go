package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobackoffice/internal/domain"
	apperror "gobackoffice/internal/errors"
	"gobackoffice/internal/pkg/httpx"
	"gobackoffice/internal/pkg/logger"
)

func TestDecodeJSONBody_ValidatesTags(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"invalido","password":"123"}`))
	var dest domain.UserRegistration

	err := httpx.DecodeJSONBody(req, &dest)

	assert.ElementsMatch(t, []string{
		"email deve ser um email válido",
		"password deve ter no mínimo 8",
	}, apperror.Violations(err))
}

func TestDecodeJSONBody_NestedPathsAndUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"lines":[{"quantity":"1"}]}`))
	var dest domain.CreateReturnInput
	err := httpx.DecodeJSONBody(req, &dest)
	assert.Equal(t, []string{"lines[0].product_id é obrigatório"}, apperror.Violations(err))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"x","extra":1}`))
	var reject domain.RejectReturnInput
	err = httpx.DecodeJSONBody(req, &reject)
	var validation *apperror.ValidationError
	assert.ErrorAs(t, err, &validation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"lines":[{"product_id":"p1","quantity":2.5}]}`))
	require.NoError(t, httpx.DecodeJSONBody(req, &dest))
	assert.Equal(t, "2.5", dest.Lines[0].Quantity.String())
}

func TestWriteError_IncludesViolations(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/returns", nil)

	httpx.WriteError(rec, req, logger.NewNop(), apperror.NewViolationsError([]string{"Product p9 not found", "Only 1 units available"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Category)
	assert.Equal(t, []string{"Product p9 not found", "Only 1 units available"}, body.Details)
}

func TestRespond_Success(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	httpx.Respond(rec, req, logger.NewNop(), map[string]string{"status": "ok"}, nil, http.StatusCreated)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
