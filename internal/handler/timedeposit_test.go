package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atmcore/ledger/internal/testutil"
)

func TestCreateTimeDepositEndpoint(t *testing.T) {
	mux, s := newTestMux(t)
	testutil.SeedAccount(t, s, "123456", 100_000)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			body:       `{"account_number": "123456", "amount": 200.00, "duration_months": 12}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unsupported duration",
			body:       `{"account_number": "123456", "amount": 200.00, "duration_months": 7}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "UNSUPPORTED_DURATION",
		},
		{
			name:       "below principal floor",
			body:       `{"account_number": "123456", "amount": 50.00, "duration_months": 12}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_AMOUNT",
		},
		{
			name:       "bad account number",
			body:       `{"account_number": "12", "amount": 200.00, "duration_months": 12}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "non positive duration",
			body:       `{"account_number": "123456", "amount": 200.00, "duration_months": 0}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "unknown account",
			body:       `{"account_number": "999999", "amount": 200.00, "duration_months": 12}`,
			wantStatus: http.StatusNotFound,
			wantCode:   "ACCOUNT_NOT_FOUND",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, env := doRequest(t, mux, http.MethodPost, "/api/v1/time-deposits", tc.body)
			require.Equal(t, tc.wantStatus, status)
			if tc.wantCode == "" {
				require.True(t, env.Success)
				assert.Contains(t, string(env.Data), `"status":"active"`)
				return
			}
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.wantCode, env.Error.Code)
		})
	}
}

func TestMatureTimeDepositEndpoint(t *testing.T) {
	mux, s := newTestMux(t)
	testutil.SeedAccount(t, s, "123456", 100_000)

	status, env := doRequest(t, mux, http.MethodPost, "/api/v1/time-deposits",
		`{"account_number": "123456", "amount": 200.00, "duration_months": 12}`)
	require.Equal(t, http.StatusCreated, status)

	var created struct {
		DepositID string `json:"deposit_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.DepositID)

	status, env = doRequest(t, mux, http.MethodPost,
		"/api/v1/time-deposits/"+created.DepositID+"/mature", "")
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"status":"matured"`)
	assert.Contains(t, string(env.Data), `"final_amount":205.00`)

	status, env = doRequest(t, mux, http.MethodPost,
		"/api/v1/time-deposits/deadbeef/mature", "")
	require.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DEPOSIT_NOT_FOUND", env.Error.Code)
}

func TestListTimeDepositsEndpoint(t *testing.T) {
	mux, s := newTestMux(t)
	testutil.SeedAccount(t, s, "123456", 100_000)

	status, env := doRequest(t, mux, http.MethodGet, "/api/v1/time-deposits/123456", "")
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)
	assert.Equal(t, "[]", string(env.Data))

	_, _ = doRequest(t, mux, http.MethodPost, "/api/v1/time-deposits",
		`{"account_number": "123456", "amount": 200.00, "duration_months": 12}`)

	status, env = doRequest(t, mux, http.MethodGet, "/api/v1/time-deposits/123456", "")
	require.Equal(t, http.StatusOK, status)
	var deposits []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &deposits))
	assert.Len(t, deposits, 1)

	status, env = doRequest(t, mux, http.MethodGet, "/api/v1/time-deposits/999999", "")
	require.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ACCOUNT_NOT_FOUND", env.Error.Code)
}
