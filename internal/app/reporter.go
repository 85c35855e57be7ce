package app

import (
	"fmt"

	"github.com/sena-tools/coupon-relay/internal/history"
)

// consoleReporter prints batch progress for the CLI client.
type consoleReporter struct{}

func (consoleReporter) Update(index, total int, entry history.Entry) {
	position := fmt.Sprintf("[%d/%d]", index+1, total)
	switch entry.Status {
	case history.StatusPending:
		fmt.Printf("%s %s queued\n", position, entry.Code)
	case history.StatusLoading:
		fmt.Printf("%s %s ...\n", position, entry.Code)
	case history.StatusSuccess:
		if entry.Reward != "" {
			fmt.Printf("%s %s OK - %s\n", position, entry.Code, entry.Reward)
			return
		}
		fmt.Printf("%s %s OK\n", position, entry.Code)
	default:
		if entry.ErrorCode != 0 {
			fmt.Printf("%s %s FAILED (%d) - %s\n", position, entry.Code, entry.ErrorCode, entry.OriginalMsg)
			return
		}
		fmt.Printf("%s %s FAILED - %s\n", position, entry.Code, entry.OriginalMsg)
	}
}
