// Package user defines the domain model for registered wallet users.
package user

import (
	"encoding/json"
	"time"
)

// User represents a registered wallet. Users are created at registration and
// never deleted; the only mutation after creation is the appended reward
// history.
type User struct {
	ID int64
	// WalletAddress is the lowercase-normalized unique key.
	WalletAddress string
	// Name is the unique letters-only username used for pay-by-username.
	Name string
	// PhotonUserID links the wallet to the external attribution identity.
	// Empty until the wallet is linked; reward notifications for unlinked
	// wallets are soft no-ops.
	PhotonUserID string
	Rewards      []RewardEntry
	CreatedAt    time.Time
}

// RewardEntry is one locally recorded attribution event. The Reward payload
// is the upstream response stored verbatim; local recording does not imply
// durable crediting upstream.
type RewardEntry struct {
	EventType string          `json:"eventType"`
	Timestamp time.Time       `json:"timestamp"`
	Reward    json.RawMessage `json:"reward,omitempty"`
}

// RegisterRequest carries the fields needed to register a user.
type RegisterRequest struct {
	WalletAddress string `json:"walletAddress" validate:"required"`
	Name          string `json:"name" validate:"required,alpha"`
}
