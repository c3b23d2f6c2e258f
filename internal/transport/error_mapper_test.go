package transport

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reltio-open/reltio-mcp-server/pkg/errors"
)

func TestToJSONRPCError_CodeMapping(t *testing.T) {
	tests := []struct {
		code errors.ErrorCode
		want int
	}{
		{errors.ErrCodeTransportMethodNotFound, -32601},
		{errors.ErrCodeTransportInvalidParams, -32602},
		{errors.ErrCodeTransportInvalidJSON, -32700},
		{errors.ErrCodeValidation, -32602},
		{errors.ErrCodeInvalidRequest, -32602},
		{errors.ErrCodeInternal, -32603},
		{errors.ErrCodeTimeout, -32603},
		{errors.ErrCodeNotFound, -32001},
		{errors.ErrCodeConflict, -32003},
		{errors.ErrCodeAuthentication, -32004},
		{errors.ErrCodeAuthorization, -32005},
		{errors.ErrCodeSecurity, -32005},
		{errors.ErrCodeAPIRequest, -32000},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			mapped := ToJSONRPCError(errors.New(tt.code, "boom"))
			assert.Equal(t, tt.want, mapped.Code)
			assert.Equal(t, "boom", mapped.Message)

			data, ok := mapped.Data.(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, string(tt.code), data["error_code"])
		})
	}
}

func TestToJSONRPCResponse(t *testing.T) {
	resp := ToJSONRPCResponse(7, errors.New(errors.ErrCodeNotFound, "missing"))
	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.Equal(t, 7, resp.ID)
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32001, resp.Error.Code)

	resp = ToJSONRPCResponse(7, nil)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]interface{}{"success": true}, resp.Result)
}

func TestToHTTPStatusCode(t *testing.T) {
	// Application errors ride inside a 200 JSON-RPC body.
	assert.Equal(t, http.StatusOK, ToHTTPStatusCode(nil))
	assert.Equal(t, http.StatusOK, ToHTTPStatusCode(errors.New(errors.ErrCodeNotFound, "x")))

	assert.Equal(t, http.StatusBadRequest, ToHTTPStatusCode(errors.New(errors.ErrCodeTransportInvalidJSON, "x")))
	assert.Equal(t, http.StatusRequestTimeout, ToHTTPStatusCode(errors.New(errors.ErrCodeTimeout, "x")))
	assert.Equal(t, http.StatusServiceUnavailable, ToHTTPStatusCode(errors.New(errors.ErrCodeUnavailable, "x")))
	assert.Equal(t, http.StatusTooManyRequests, ToHTTPStatusCode(errors.New(errors.ErrCodeRateLimit, "x")))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatusCode(errors.New(errors.ErrCodePanic, "x")))
}

func TestSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "", SafeErrorMessage(nil))
	assert.Equal(t, "missing", SafeErrorMessage(errors.New(errors.ErrCodeNotFound, "missing")))
	// Raw errors never leak their text.
	assert.Equal(t, "An internal error occurred", SafeErrorMessage(stderrors.New("pq: connection refused")))
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	require.NoError(t, err)
	assert.Equal(t, "ping", req.Method)
	assert.Equal(t, float64(1), req.ID)

	_, err = ParseRequest([]byte(`{not json`))
	assert.Error(t, err)
}
