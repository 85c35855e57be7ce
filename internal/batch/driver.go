// Package batch drives sequential redemption of an ordered list of coupon
// codes for one account, with a fixed pause between requests to stay under
// the publisher's rate limit.
package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sena-tools/coupon-relay/internal/history"
	"github.com/sena-tools/coupon-relay/internal/relayclient"
	"github.com/sena-tools/coupon-relay/internal/settings"
	log "github.com/sirupsen/logrus"
)

// Redeemer submits one redemption to the relay.
type Redeemer interface {
	Redeem(ctx context.Context, accountID, code string) (relayclient.Result, error)
}

// Reporter receives live per-item progress. index counts all batch items,
// skipped entries included.
type Reporter interface {
	Update(index, total int, entry history.Entry)
}

// nopReporter discards progress updates.
type nopReporter struct{}

func (nopReporter) Update(int, int, history.Entry) {}

// Summary describes one finished batch run.
type Summary struct {
	Skipped   int
	Processed int
	Succeeded int
	Failed    int
	Entries   []history.Entry // final state of every batch item, input order
}

// Driver runs redemption batches. One request is in flight at a time; each
// completed item is written to history immediately so an interrupted batch
// keeps its partial progress.
type Driver struct {
	client   Redeemer
	history  history.Repository
	reporter Reporter

	delay time.Duration // 0 means read the settings snapshot per run
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewDriver constructs a batch driver. A nil reporter discards progress.
func NewDriver(client Redeemer, repo history.Repository, reporter Reporter) *Driver {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Driver{
		client:   client,
		history:  repo,
		reporter: reporter,
		sleep:    sleepContext,
		now:      time.Now,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run redeems the given codes for the account. Codes already present in the
// account's history are skipped without any network call. Per-item failures
// never abort the rest of the batch; only a cancelled context stops it.
func (d *Driver) Run(ctx context.Context, accountID string, codes []string) (*Summary, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, fmt.Errorf("batch: account id is required")
	}
	if len(codes) == 0 {
		return &Summary{}, nil
	}

	if errRemember := d.history.SetLastAccountID(accountID); errRemember != nil {
		log.WithError(errRemember).Warn("batch: could not remember account id")
	}

	stored, errGet := d.history.Get(accountID)
	if errGet != nil {
		return nil, fmt.Errorf("batch: load history: %w", errGet)
	}
	storedByCode := make(map[string]history.Entry, len(stored))
	for _, entry := range stored {
		storedByCode[entry.Code] = entry
	}

	var skipped []history.Entry
	var toProcess []string
	for _, code := range codes {
		prior, seen := storedByCode[code]
		if !seen {
			toProcess = append(toProcess, code)
			continue
		}
		status := history.StatusError
		if prior.Status == history.StatusSuccess {
			status = history.StatusSuccess
		}
		message := prior.OriginalMsg
		if message == "" {
			message = "Already processed"
		}
		skipped = append(skipped, history.Entry{
			Code:        code,
			Status:      status,
			OriginalMsg: "Skipped: " + message,
		})
	}

	total := len(skipped) + len(toProcess)
	summary := &Summary{Skipped: len(skipped)}
	for i, entry := range skipped {
		d.reporter.Update(i, total, entry)
		summary.Entries = append(summary.Entries, entry)
	}
	if len(toProcess) == 0 {
		return summary, nil
	}

	// everything queued shows as pending before the first request goes out
	for i, code := range toProcess {
		d.reporter.Update(len(skipped)+i, total, history.Entry{Code: code, Status: history.StatusPending})
	}

	delay := d.delay
	if delay == 0 {
		delay = settings.RedeemDelay()
	}

	updated := append([]history.Entry(nil), stored...)
	for i, code := range toProcess {
		index := len(skipped) + i
		d.reporter.Update(index, total, history.Entry{Code: code, Status: history.StatusLoading})

		if i > 0 {
			if errSleep := d.sleep(ctx, delay); errSleep != nil {
				return summary, errSleep
			}
		}

		entry := d.redeemOne(ctx, accountID, code)
		updated = upsertEntry(updated, entry)
		if errPut := d.history.Put(accountID, updated); errPut != nil {
			log.WithError(errPut).WithField("code", code).Warn("batch: history write failed")
		}

		d.reporter.Update(index, total, entry)
		summary.Entries = append(summary.Entries, entry)
		summary.Processed++
		if entry.Status == history.StatusSuccess {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	return summary, nil
}

// ClearHistory drops the account's whole history bucket.
func (d *Driver) ClearHistory(accountID string) error {
	return d.history.Delete(accountID)
}

// DeleteEntry removes one code from the account's history so a later run
// will attempt it again.
func (d *Driver) DeleteEntry(accountID, code string) error {
	return d.history.DeleteEntry(accountID, code)
}

func (d *Driver) redeemOne(ctx context.Context, accountID, code string) history.Entry {
	result, errRedeem := d.client.Redeem(ctx, accountID, code)
	if errRedeem != nil {
		log.WithError(errRedeem).WithField("code", code).Warn("batch: redemption call failed")
		return history.Entry{
			Code:        code,
			Status:      history.StatusError,
			OriginalMsg: "Network error",
			Timestamp:   d.now().UnixMilli(),
		}
	}

	status := history.StatusError
	if result.Success {
		status = history.StatusSuccess
	}
	return history.Entry{
		Code:        code,
		Status:      status,
		ErrorCode:   result.ErrorCode,
		OriginalMsg: result.Message,
		Reward:      result.Reward,
		Timestamp:   d.now().UnixMilli(),
	}
}

// upsertEntry replaces the entry with the same code in place, else appends.
func upsertEntry(entries []history.Entry, entry history.Entry) []history.Entry {
	for i := range entries {
		if entries[i].Code == entry.Code {
			entries[i] = entry
			return entries
		}
	}
	return append(entries, entry)
}
