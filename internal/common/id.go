package common

import (
	"github.com/google/uuid"
)

// DefaultUserID is the account everything belongs to when no X-User-ID
// header is sent. The dashboard runs single-user by default.
const DefaultUserID = "local"

// Entity IDs are prefixed UUIDs so a bare ID is self-describing in logs
// and API payloads. Format: <prefix>_<uuid>

// NewLayoutID generates a unique dashboard layout ID
func NewLayoutID() string {
	return "lay_" + uuid.New().String()
}

// NewWidgetID generates a unique widget ID
func NewWidgetID() string {
	return "wgt_" + uuid.New().String()
}

// NewWalletID generates a unique wallet ID
func NewWalletID() string {
	return "wal_" + uuid.New().String()
}

// NewTransactionID generates a unique transaction ID
func NewTransactionID() string {
	return "txn_" + uuid.New().String()
}

// NewAlertID generates a unique alert ID
func NewAlertID() string {
	return "alr_" + uuid.New().String()
}

// NewGoalID generates a unique goal ID
func NewGoalID() string {
	return "goal_" + uuid.New().String()
}

// NewCredentialID generates a unique exchange credential ID
func NewCredentialID() string {
	return "cred_" + uuid.New().String()
}
