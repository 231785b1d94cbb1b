package stellar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// RPCClient talks to a Soroban RPC endpoint over JSON-RPC. It implements
// both the Submitter and StatusChecker capabilities.
type RPCClient struct {
	httpClient *http.Client
	rpcURL     string
	requestID  atomic.Int64
}

// NewRPCClient creates a client for the given RPC endpoint.
func NewRPCClient(rpcURL string) *RPCClient {
	return &RPCClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		rpcURL:     rpcURL,
	}
}

// Make sure we conform to the interfaces
var (
	_ Submitter     = (*RPCClient)(nil)
	_ StatusChecker = (*RPCClient)(nil)
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *RPCClient) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, string(respBody))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	return rpcResp.Result, nil
}

type sendTransactionResult struct {
	Hash         string `json:"hash"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorResultXdr,omitempty"`
}

// Submit sends a signed envelope via sendTransaction and returns the tx hash.
func (c *RPCClient) Submit(ctx context.Context, signedEnvelope string) (string, error) {
	result, err := c.call(ctx, "sendTransaction", map[string]string{"transaction": signedEnvelope})
	if err != nil {
		return "", err
	}

	var out sendTransactionResult
	if err := json.Unmarshal(result, &out); err != nil {
		return "", fmt.Errorf("unmarshal sendTransaction result: %w", err)
	}
	if out.Status == "ERROR" {
		return "", fmt.Errorf("chain rejected transaction: %s", out.ErrorMessage)
	}
	return out.Hash, nil
}

type getTransactionResult struct {
	Status string `json:"status"`
}

// GetStatus polls getTransaction and maps the chain's answer onto the
// pipeline's three-way status. NOT_FOUND means the transaction has not been
// included yet and counts as pending.
func (c *RPCClient) GetStatus(ctx context.Context, txHash string) (TxStatus, error) {
	result, err := c.call(ctx, "getTransaction", map[string]string{"hash": txHash})
	if err != nil {
		return "", err
	}

	var out getTransactionResult
	if err := json.Unmarshal(result, &out); err != nil {
		return "", fmt.Errorf("unmarshal getTransaction result: %w", err)
	}

	switch out.Status {
	case "SUCCESS":
		return StatusSuccess, nil
	case "FAILED":
		return StatusFailure, nil
	case "NOT_FOUND", "PENDING":
		return StatusPending, nil
	default:
		return "", fmt.Errorf("unknown transaction status %q", out.Status)
	}
}
