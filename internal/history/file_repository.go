package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// accountBucket is one account's slot in the ledger file.
type accountBucket struct {
	UID     string  `json:"uid"`
	Coupons []Entry `json:"coupons"`
}

// ledgerFile is the on-disk document: account buckets plus the last-used
// account id.
type ledgerFile struct {
	LastUID  string                   `json:"lastUid,omitempty"`
	Accounts map[string]accountBucket `json:"accounts"`
}

// FileRepository persists the ledger as a single JSON file, written
// atomically via a temp file and rename.
type FileRepository struct {
	mu   sync.Mutex
	path string
}

// NewFileRepository constructs a file-backed history repository at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Get returns the stored entries for an account.
func (r *FileRepository) Get(accountID string) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ledger, errLoad := r.load()
	if errLoad != nil {
		return nil, errLoad
	}
	bucket, ok := ledger.Accounts[accountID]
	if !ok {
		return nil, nil
	}
	entries := make([]Entry, len(bucket.Coupons))
	copy(entries, bucket.Coupons)
	return entries, nil
}

// Put replaces the stored entries for an account.
func (r *FileRepository) Put(accountID string, entries []Entry) error {
	if strings.TrimSpace(accountID) == "" {
		return fmt.Errorf("history: empty account id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ledger, errLoad := r.load()
	if errLoad != nil {
		return errLoad
	}
	copied := make([]Entry, len(entries))
	copy(copied, entries)
	ledger.Accounts[accountID] = accountBucket{UID: accountID, Coupons: copied}
	return r.save(ledger)
}

// Delete removes the account's history bucket.
func (r *FileRepository) Delete(accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ledger, errLoad := r.load()
	if errLoad != nil {
		return errLoad
	}
	if _, ok := ledger.Accounts[accountID]; !ok {
		return nil
	}
	delete(ledger.Accounts, accountID)
	return r.save(ledger)
}

// DeleteEntry removes one code's entry from an account's history. A code
// that was never recorded is not an error.
func (r *FileRepository) DeleteEntry(accountID, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ledger, errLoad := r.load()
	if errLoad != nil {
		return errLoad
	}
	bucket, ok := ledger.Accounts[accountID]
	if !ok {
		return nil
	}

	kept := bucket.Coupons[:0]
	for _, entry := range bucket.Coupons {
		if entry.Code != code {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(bucket.Coupons) {
		return nil
	}
	bucket.Coupons = kept
	ledger.Accounts[accountID] = bucket
	return r.save(ledger)
}

// LastAccountID returns the most recently used account id.
func (r *FileRepository) LastAccountID() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ledger, errLoad := r.load()
	if errLoad != nil {
		return "", false
	}
	if ledger.LastUID == "" {
		return "", false
	}
	return ledger.LastUID, true
}

// SetLastAccountID remembers the most recently used account id.
func (r *FileRepository) SetLastAccountID(accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ledger, errLoad := r.load()
	if errLoad != nil {
		return errLoad
	}
	ledger.LastUID = strings.TrimSpace(accountID)
	return r.save(ledger)
}

func (r *FileRepository) load() (*ledgerFile, error) {
	ledger := &ledgerFile{Accounts: map[string]accountBucket{}}

	data, errRead := os.ReadFile(r.path)
	if os.IsNotExist(errRead) {
		return ledger, nil
	}
	if errRead != nil {
		return nil, fmt.Errorf("history: read ledger: %w", errRead)
	}
	if len(data) == 0 {
		return ledger, nil
	}
	if errUnmarshal := json.Unmarshal(data, ledger); errUnmarshal != nil {
		return nil, fmt.Errorf("history: parse ledger: %w", errUnmarshal)
	}
	if ledger.Accounts == nil {
		ledger.Accounts = map[string]accountBucket{}
	}
	return ledger, nil
}

func (r *FileRepository) save(ledger *ledgerFile) error {
	data, errMarshal := json.MarshalIndent(ledger, "", "  ")
	if errMarshal != nil {
		return fmt.Errorf("history: encode ledger: %w", errMarshal)
	}

	dir := filepath.Dir(r.path)
	if dir != "." && dir != "" {
		if errMkdir := os.MkdirAll(dir, 0o755); errMkdir != nil {
			return fmt.Errorf("history: create ledger dir: %w", errMkdir)
		}
	}

	tmp, errTmp := os.CreateTemp(dir, ".ledger-*")
	if errTmp != nil {
		return fmt.Errorf("history: temp file: %w", errTmp)
	}
	tmpName := tmp.Name()
	if _, errWrite := tmp.Write(data); errWrite != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("history: write ledger: %w", errWrite)
	}
	if errClose := tmp.Close(); errClose != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("history: close ledger: %w", errClose)
	}
	if errRename := os.Rename(tmpName, r.path); errRename != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("history: replace ledger: %w", errRename)
	}
	return nil
}
