package stellar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rpcServer(t *testing.T, handler func(method string, params map[string]string) (any, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JSONRPC string            `json:"jsonrpc"`
			ID      int64             `json:"id"`
			Method  string            `json:"method"`
			Params  map[string]string `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)

		result, rpcErr := handler(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestRPCClientSubmit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := rpcServer(t, func(method string, params map[string]string) (any, *rpcError) {
			assert.Equal(t, "sendTransaction", method)
			assert.Equal(t, "signed-envelope", params["transaction"])
			return map[string]string{"hash": "abc123", "status": "PENDING"}, nil
		})
		defer srv.Close()

		hash, err := NewRPCClient(srv.URL).Submit(context.Background(), "signed-envelope")

		require.NoError(t, err)
		assert.Equal(t, "abc123", hash)
	})

	t.Run("Chain Rejection", func(t *testing.T) {
		srv := rpcServer(t, func(string, map[string]string) (any, *rpcError) {
			return map[string]string{"status": "ERROR", "errorResultXdr": "tx_bad_seq"}, nil
		})
		defer srv.Close()

		_, err := NewRPCClient(srv.URL).Submit(context.Background(), "signed-envelope")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "tx_bad_seq")
	})

	t.Run("RPC Error", func(t *testing.T) {
		srv := rpcServer(t, func(string, map[string]string) (any, *rpcError) {
			return nil, &rpcError{Code: -32600, Message: "invalid request"}
		})
		defer srv.Close()

		_, err := NewRPCClient(srv.URL).Submit(context.Background(), "signed-envelope")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid request")
	})
}

func TestRPCClientGetStatus(t *testing.T) {
	statusServer := func(status string) *httptest.Server {
		return rpcServer(t, func(method string, params map[string]string) (any, *rpcError) {
			assert.Equal(t, "getTransaction", method)
			assert.Equal(t, "abc123", params["hash"])
			return map[string]string{"status": status}, nil
		})
	}

	cases := map[string]TxStatus{
		"SUCCESS":   StatusSuccess,
		"FAILED":    StatusFailure,
		"NOT_FOUND": StatusPending,
		"PENDING":   StatusPending,
	}
	for chainStatus, want := range cases {
		t.Run(chainStatus, func(t *testing.T) {
			srv := statusServer(chainStatus)
			defer srv.Close()

			got, err := NewRPCClient(srv.URL).GetStatus(context.Background(), "abc123")

			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	t.Run("Unknown Status", func(t *testing.T) {
		srv := statusServer("EXPLODED")
		defer srv.Close()

		_, err := NewRPCClient(srv.URL).GetStatus(context.Background(), "abc123")

		assert.Error(t, err)
	})
}

func TestRPCClientRequestIDs(t *testing.T) {
	var seen []int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID int64 `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		seen = append(seen, req.ID)
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":{"status":"PENDING"}}`, req.ID)
	}))
	defer srv.Close()

	client := NewRPCClient(srv.URL)
	for i := 0; i < 3; i++ {
		_, err := client.GetStatus(context.Background(), "abc123")
		require.NoError(t, err)
	}

	assert.Equal(t, []int64{1, 2, 3}, seen)
}
