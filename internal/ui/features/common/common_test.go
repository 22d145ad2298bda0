package common

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pdmwatch/internal/testutil"
	"github.com/leapstack-labs/pdmwatch/internal/ui/features"
	"github.com/leapstack-labs/pdmwatch/pkg/core"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", fmt.Errorf("machine 7: %w", core.ErrNotFound), http.StatusNotFound},
		{"invalid status", &core.StatusError{Value: "broken"}, http.StatusBadRequest},
		{"invalid input", fmt.Errorf("%w: missing name", core.ErrInvalidInput), http.StatusBadRequest},
		{"validation", &ValidationError{Errors: []string{"x"}}, http.StatusUnprocessableEntity},
		{"other", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFor(tt.err))
		})
	}
}

func TestError_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/machines", nil)

	Error(rec, req, nil, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, rec.Body.String())
}

func TestError_LogsInternalErrors(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/maintenance", nil)

	Error(rec, req, logger, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, logs.Contains("request failed"), logs.String())
	assert.True(t, logs.Contains("path=/api/maintenance"), logs.String())

	logger, logs = testutil.NewCaptureLogger()
	Error(httptest.NewRecorder(), req, logger, fmt.Errorf("machine 3: %w", core.ErrNotFound))
	assert.Empty(t, logs.String())
}

func TestError_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/machines/7", nil)

	Error(rec, req, nil, fmt.Errorf("machine 7: %w", core.ErrNotFound))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"detail":"machine 7: not found"}`, rec.Body.String())
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		doc    string
		valid  bool
	}{
		{"machine ok", SchemaMachineCreate, `{"name":"a","type":"b","location":"c"}`, true},
		{"machine missing location", SchemaMachineCreate, `{"name":"a","type":"b"}`, false},
		{"machine empty name", SchemaMachineCreate, `{"name":"","type":"b","location":"c"}`, false},
		{"machine bad date", SchemaMachineCreate, `{"name":"a","type":"b","location":"c","installation_date":"yesterday"}`, false},
		{"machine date without zone", SchemaMachineCreate, `{"name":"a","type":"b","location":"c","installation_date":"2024-01-01T08:00:00"}`, true},
		{"machine clear last maintenance", SchemaMachineUpdate, `{"last_maintenance":null}`, true},
		{"machine null name", SchemaMachineUpdate, `{"name":null}`, false},
		{"maintenance ok", SchemaMaintenanceCreate, `{"machine_id":1,"type":"preventive","description":"oil","cost":10.5}`, true},
		{"maintenance negative cost", SchemaMaintenanceCreate, `{"machine_id":1,"type":"preventive","description":"oil","cost":-1}`, false},
		{"maintenance string id", SchemaMaintenanceCreate, `{"machine_id":"1","type":"preventive","description":"oil"}`, false},
		{"status missing", SchemaMachineStatus, `{}`, false},
		{"not json", SchemaMachineStatus, `{`, false},
		{"update empty object", SchemaMaintenanceUpdate, `{}`, true},
		{"update clears details", SchemaMaintenanceUpdate, `{"technician":null,"parts_replaced":null,"cost":null,"duration_hours":null}`, true},
		{"update null type", SchemaMaintenanceUpdate, `{"type":null}`, false},
		{"update negative duration", SchemaMaintenanceUpdate, `{"duration_hours":-1}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(tt.schema, []byte(tt.doc))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Errors)
		})
	}
}

func TestValidateJSON_UnknownSchema(t *testing.T) {
	err := ValidateJSON("nope", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown schema")
}

func TestDecodeJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Lathe","type":"cnc","location":"Hall 1"}`))

	var in core.MachineCreate
	require.NoError(t, DecodeJSON(req, SchemaMachineCreate, &in))
	assert.Equal(t, "Lathe", in.Name)

	empty := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	err := DecodeJSON(empty, SchemaMachineCreate, &in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"body is required"}, verr.Errors)
}

func TestPathID(t *testing.T) {
	req := features.RequestWithPathParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "42")
	id, err := PathID(req, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"abc", "0", "-3", ""} {
		req := features.RequestWithPathParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", raw)
		_, err := PathID(req, "id")
		assert.ErrorIs(t, err, core.ErrInvalidInput, raw)
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		query     string
		skip      int
		limit     int
		expectErr bool
	}{
		{"", 0, 100, false},
		{"skip=5&limit=10", 5, 10, false},
		{"limit=0", 0, 100, false},
		{"limit=5000", 0, 1000, false},
		{"skip=-1", 0, 0, true},
		{"limit=ten", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			skip, limit, err := Pagination(req)
			if tt.expectErr {
				assert.ErrorIs(t, err, core.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.skip, skip)
			assert.Equal(t, tt.limit, limit)
		})
	}
}
