package stellar

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// PayoutEnvelope is the canonical unsigned payload for one payout: a
// contract invocation of the payout method, sequenced by the source
// account's nonce. The base64 JSON form is what gets persisted, handed to
// the signer, and submitted.
type PayoutEnvelope struct {
	SourceAccount      string `json:"source_account"`
	DestinationAccount string `json:"destination_account"`
	AmountStroops      string `json:"amount_stroops"`
	Asset              string `json:"asset"`
	Nonce              int64  `json:"nonce"`
	ContractID         string `json:"contract_id"`
	Method             string `json:"method"`
	MaxGasStroops      int64  `json:"max_gas_stroops"`
	NetworkPassphrase  string `json:"network_passphrase"`
	Memo               string `json:"memo"`
}

// Encode returns the envelope in its canonical base64 wire form.
func (e PayoutEnvelope) Encode() (string, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payout envelope: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeEnvelope parses the base64 wire form back into an envelope.
func DecodeEnvelope(encoded string) (*PayoutEnvelope, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payout envelope: %w", err)
	}
	var env PayoutEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payout envelope: %w", err)
	}
	return &env, nil
}
