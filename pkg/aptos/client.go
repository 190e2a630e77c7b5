// Package aptos is a thin client for the Aptos fullnode REST API. Only the
// background reconciler talks to the chain; user-facing operations never
// block on it.
package aptos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TxStatus is the resolved state of a transaction hash on chain.
type TxStatus string

const (
	// TxPending means the fullnode knows the transaction but it is not yet
	// committed.
	TxPending TxStatus = "pending"
	// TxSuccess means the transaction committed and executed successfully.
	TxSuccess TxStatus = "success"
	// TxFailure means the transaction committed but aborted.
	TxFailure TxStatus = "failure"
	// TxNotFound means the fullnode has no record of the hash. Uncommitted
	// transactions are garbage collected after their expiration, so an old
	// hash that is still unknown has expired.
	TxNotFound TxStatus = "not_found"
)

// Client looks up transactions on the Aptos fullnode.
type Client interface {
	TransactionByHash(ctx context.Context, hash string) (TxStatus, error)
}

type httpClient struct {
	nodeURL string
	client  *http.Client
}

// NewClient creates an Aptos fullnode client. nodeURL is the API root,
// e.g. https://fullnode.mainnet.aptoslabs.com/v1.
func NewClient(nodeURL string, timeout time.Duration) Client {
	return &httpClient{
		nodeURL: strings.TrimRight(nodeURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// transactionResponse is the subset of the fullnode response the reconciler
// needs.
type transactionResponse struct {
	Type     string `json:"type"`
	Success  *bool  `json:"success,omitempty"`
	VMStatus string `json:"vm_status,omitempty"`
}

func (c *httpClient) TransactionByHash(ctx context.Context, hash string) (TxStatus, error) {
	url := fmt.Sprintf("%s/transactions/by_hash/%s", c.nodeURL, hash)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fullnode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return TxNotFound, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return "", fmt.Errorf("fullnode returned status %d: %s", resp.StatusCode, body)
	}

	var tx transactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&tx); err != nil {
		return "", fmt.Errorf("failed to decode fullnode response: %w", err)
	}

	if tx.Type == "pending_transaction" || tx.Success == nil {
		return TxPending, nil
	}
	if *tx.Success {
		return TxSuccess, nil
	}
	return TxFailure, nil
}
