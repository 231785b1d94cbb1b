package stellar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPSigner asks an external signer service to sign an unsigned envelope.
// The hot key never enters this process.
type HTTPSigner struct {
	httpClient *http.Client
	signerURL  string
}

// NewHTTPSigner creates a signer client for the given service URL.
func NewHTTPSigner(signerURL string) *HTTPSigner {
	return &HTTPSigner{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		signerURL:  signerURL,
	}
}

// Make sure we conform to the interface
var _ Signer = (*HTTPSigner)(nil)

type signRequest struct {
	UnsignedEnvelope string `json:"unsigned_envelope"`
}

type signResponse struct {
	SignedEnvelope string `json:"signed_envelope"`
}

// Sign posts the unsigned envelope and returns the signed one.
func (s *HTTPSigner) Sign(ctx context.Context, unsignedEnvelope string) (string, error) {
	body, err := json.Marshal(signRequest{UnsignedEnvelope: unsignedEnvelope})
	if err != nil {
		return "", fmt.Errorf("marshal sign request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.signerURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create sign request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("signer request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read signer response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("signer status %d: %s", resp.StatusCode, string(respBody))
	}

	var out signResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("unmarshal signer response: %w", err)
	}
	if out.SignedEnvelope == "" {
		return "", fmt.Errorf("signer returned an empty envelope")
	}
	return out.SignedEnvelope, nil
}
