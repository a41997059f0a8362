// retry.go retries store writes that fail on transient SQLite errors.
//
// WAL mode lets a reader and a writer proceed together, but two processes
// saving a rebase into the same database at once can still see SQLITE_BUSY,
// SQLITE_LOCKED or IOERR_SHORT_READ (522) past the busy_timeout. Commit and
// branch writes are idempotent, so replaying them is always safe.
package store

import (
	"math/rand"
	"strings"
	"time"

	"github.com/golang/glog"
)

type retryConfig struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

var defaultRetryConfig = retryConfig{
	maxRetries: 3,
	baseDelay:  50 * time.Millisecond,
	maxDelay:   500 * time.Millisecond,
}

// transientMarkers are substrings modernc.org/sqlite puts in errors worth
// retrying, either by name or by numeric code.
var transientMarkers = []string{
	"SQLITE_BUSY",
	"SQLITE_LOCKED",
	"IOERR_SHORT_READ",
	"database is locked",
	"database table is locked",
	"(5)",
	"(6)",
	"(522)",
}

func isTransientSQLiteErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// retryOp runs fn until it succeeds, fails permanently, or cfg.maxRetries
// retries have been spent. The last error is returned.
func retryOp(cfg retryConfig, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !isTransientSQLiteErr(err) || attempt >= cfg.maxRetries {
			return err
		}
		delay := backoffDelay(cfg, attempt)
		glog.V(1).Infof("[store] transient error (attempt %d, retrying in %s): %v\n", attempt+1, delay, err)
		time.Sleep(delay)
	}
}

// backoffDelay is min(baseDelay*2^attempt, maxDelay) plus up to baseDelay of
// jitter.
func backoffDelay(cfg retryConfig, attempt int) time.Duration {
	delay := cfg.baseDelay << uint(attempt)
	if delay > cfg.maxDelay || delay <= 0 {
		delay = cfg.maxDelay
	}
	return delay + time.Duration(rand.Int63n(int64(cfg.baseDelay)))
}
