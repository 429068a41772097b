package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/sovran/internal/common"
	"github.com/ternarybob/sovran/internal/models"
)

func TestWriteServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"country not found", models.ErrCountryNotFound, http.StatusNotFound},
		{"memory not found", models.ErrMemoryNotFound, http.StatusNotFound},
		{"wrapped not found", errors.Join(errors.New("ctx"), models.ErrCountryNotFound), http.StatusNotFound},
		{"validation", &models.ValidationError{Field: "rating", Reason: "bad"}, http.StatusBadRequest},
		{"invalid judgment", models.ErrInvalidJudgment, http.StatusInternalServerError},
		{"wrapped invalid judgment", fmt.Errorf("judgment failed: %w", models.ErrInvalidJudgment), http.StatusInternalServerError},
		{"provider disabled", models.ErrProviderDisabled, http.StatusServiceUnavailable},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteServiceError(rec, tt.err)
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), `"status":"error"`)
		})
	}
}

func TestGetLimitParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 20},
		{"limit=5", 5},
		{"limit=0", 20},
		{"limit=-3", 20},
		{"limit=abc", 20},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/?"+tt.query, nil)
		assert.Equal(t, tt.want, GetLimitParam(r, 20), "query %q", tt.query)
	}
}

// fakeEngine serves the handler tests.
type fakeEngine struct {
	outcome  *models.RatingOutcome
	override *models.OverrideOutcome
	err      error
}

func (f *fakeEngine) RunRating(ctx context.Context, iso2 string) (*models.RatingOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

func (f *fakeEngine) ApplyOverride(ctx context.Context, iso2 string, req *models.OverrideRequest) (*models.OverrideOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.override, nil
}

func TestRunHandler_Success(t *testing.T) {
	engine := &fakeEngine{
		outcome: &models.RatingOutcome{
			Country: &models.Country{ISO2: "BR", Name: "Brazil"},
			Rating:  &models.Rating{Grade: "BBB", Outlook: "Stable", Source: models.SourceAI},
		},
	}
	h := NewRatingHandler(engine, nil, common.GetLogger())

	rec := httptest.NewRecorder()
	h.RunHandler(rec, httptest.NewRequest("POST", "/api/countries/BR/rate", nil), "BR")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rating":"BBB"`)
}

func TestRunHandler_MethodNotAllowed(t *testing.T) {
	h := NewRatingHandler(&fakeEngine{}, nil, common.GetLogger())

	rec := httptest.NewRecorder()
	h.RunHandler(rec, httptest.NewRequest("GET", "/api/countries/BR/rate", nil), "BR")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRunHandler_ErrorsMapped(t *testing.T) {
	h := NewRatingHandler(&fakeEngine{err: models.ErrProviderDisabled}, nil, common.GetLogger())

	rec := httptest.NewRecorder()
	h.RunHandler(rec, httptest.NewRequest("POST", "/api/countries/BR/rate", nil), "BR")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestOverrideHandler_DecodesRequest(t *testing.T) {
	engine := &fakeEngine{
		override: &models.OverrideOutcome{
			Rating: &models.Rating{Grade: "BB+", Outlook: "Negative", Source: models.SourceOverride},
			Memory: &models.MemoryNote{Title: "Override: Mexico BB+ (Negative)"},
		},
	}
	h := NewRatingHandler(engine, nil, common.GetLogger())

	body := `{"rating":"BB+","outlook":"Negative","rationale":"Contingent liabilities."}`
	rec := httptest.NewRecorder()
	h.OverrideHandler(rec, httptest.NewRequest("POST", "/api/countries/MX/override", strings.NewReader(body)), "MX")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rating":"BB+"`)
}

func TestOverrideHandler_RejectsUnknownFields(t *testing.T) {
	h := NewRatingHandler(&fakeEngine{}, nil, common.GetLogger())

	body := `{"rating":"BB+","grade_notches":3}`
	rec := httptest.NewRecorder()
	h.OverrideHandler(rec, httptest.NewRequest("POST", "/api/countries/MX/override", strings.NewReader(body)), "MX")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOverrideHandler_ValidationErrorMapped(t *testing.T) {
	h := NewRatingHandler(&fakeEngine{err: &models.ValidationError{Field: "rating", Reason: "not on scale"}}, nil, common.GetLogger())

	body := `{"rating":"ZZZ","outlook":"Stable","rationale":"x"}`
	rec := httptest.NewRecorder()
	h.OverrideHandler(rec, httptest.NewRequest("POST", "/api/countries/MX/override", strings.NewReader(body)), "MX")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
