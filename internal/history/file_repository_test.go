package history

import (
	"path/filepath"
	"testing"
)

func newTestRepo(t *testing.T) *FileRepository {
	t.Helper()
	return NewFileRepository(filepath.Join(t.TempDir(), "ledger.json"))
}

func TestGetMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	entries, err := repo.Get("12345")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %v, want empty", entries)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	stored := []Entry{
		{Code: "OBLIVION", Status: StatusSuccess, Reward: "Ruby x100", Timestamp: 1700000000000},
		{Code: "BADCODE", Status: StatusError, ErrorCode: 24002, OriginalMsg: "Invalid coupon code"},
	}
	if err := repo.Put("12345", stored); err != nil {
		t.Fatalf("put: %v", err)
	}

	loaded, err := repo.Get("12345")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d entries, want 2", len(loaded))
	}
	if loaded[0] != stored[0] || loaded[1] != stored[1] {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}

	// other accounts stay isolated
	other, err := repo.Get("99999")
	if err != nil {
		t.Fatalf("get other: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("other account entries = %v", other)
	}
}

func TestPutReplacesBucket(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	if err := repo.Put("12345", []Entry{{Code: "A", Status: StatusSuccess}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := repo.Put("12345", []Entry{{Code: "A", Status: StatusError, OriginalMsg: "Network error"}}); err != nil {
		t.Fatalf("second put: %v", err)
	}

	loaded, err := repo.Get("12345")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("entries = %d, want 1 (no duplicate codes)", len(loaded))
	}
	if loaded[0].Status != StatusError {
		t.Fatalf("status = %q, want overwritten error entry", loaded[0].Status)
	}
}

func TestDeleteRemovesBucket(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	if err := repo.Put("12345", []Entry{{Code: "A", Status: StatusSuccess}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := repo.Put("67890", []Entry{{Code: "B", Status: StatusSuccess}}); err != nil {
		t.Fatalf("put: %v", err)
	}

	if err := repo.Delete("12345"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	gone, _ := repo.Get("12345")
	if len(gone) != 0 {
		t.Fatalf("deleted account still has entries: %v", gone)
	}
	kept, _ := repo.Get("67890")
	if len(kept) != 1 {
		t.Fatalf("unrelated account lost entries")
	}

	if err := repo.Delete("12345"); err != nil {
		t.Fatalf("delete of absent bucket: %v", err)
	}
}

func TestDeleteEntryRemovesOneKeepsRest(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	stored := []Entry{
		{Code: "KEEP1", Status: StatusSuccess},
		{Code: "DROP", Status: StatusError, OriginalMsg: "Invalid coupon code"},
		{Code: "KEEP2", Status: StatusSuccess},
	}
	if err := repo.Put("12345", stored); err != nil {
		t.Fatalf("put: %v", err)
	}

	if err := repo.DeleteEntry("12345", "DROP"); err != nil {
		t.Fatalf("delete entry: %v", err)
	}

	loaded, err := repo.Get("12345")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("entries = %d, want 2", len(loaded))
	}
	if loaded[0].Code != "KEEP1" || loaded[1].Code != "KEEP2" {
		t.Fatalf("remaining order = %+v", loaded)
	}

	// absent code and absent account are both no-ops
	if err := repo.DeleteEntry("12345", "DROP"); err != nil {
		t.Fatalf("delete of absent code: %v", err)
	}
	if err := repo.DeleteEntry("99999", "DROP"); err != nil {
		t.Fatalf("delete for absent account: %v", err)
	}
}

func TestLastAccountID(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	if _, ok := repo.LastAccountID(); ok {
		t.Fatalf("expected no last account id on fresh ledger")
	}
	if err := repo.SetLastAccountID("424242"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok := repo.LastAccountID()
	if !ok || got != "424242" {
		t.Fatalf("last account = %q ok=%v", got, ok)
	}
}
