// Package history keeps the per-account ledger of past redemption outcomes
// used by the batch client. The file layout matches the single JSON blob the
// original web client kept in browser storage, so ledgers can be carried
// over.
package history

// Entry statuses mirror the progress states of the batch driver.
const (
	StatusPending = "pending"
	StatusLoading = "loading"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Entry is one recorded redemption outcome for a coupon code.
type Entry struct {
	Code        string `json:"code"`
	Status      string `json:"status"`
	ErrorCode   int    `json:"errorCode,omitempty"`
	OriginalMsg string `json:"originalMsg,omitempty"`
	Reward      string `json:"reward,omitempty"`
	Timestamp   int64  `json:"timestamp,omitempty"` // Unix milliseconds, set on completion.
}

// Repository stores per-account redemption history. Implementations must
// treat each account's entry list as an ordered collection with at most one
// entry per code; the batch driver preserves that invariant on writes.
type Repository interface {
	// Get returns the stored entries for an account; empty when none exist.
	Get(accountID string) ([]Entry, error)
	// Put replaces the stored entries for an account.
	Put(accountID string, entries []Entry) error
	// Delete removes the account's whole history bucket.
	Delete(accountID string) error
	// DeleteEntry removes one code's entry from an account's history.
	DeleteEntry(accountID, code string) error
	// LastAccountID returns the most recently used account id, if any.
	LastAccountID() (string, bool)
	// SetLastAccountID remembers the most recently used account id.
	SetLastAccountID(accountID string) error
}
