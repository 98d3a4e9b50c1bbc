// Package worker holds background jobs that are not needed for correctness.
package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// OTPPruner deletes one-time codes that expired before cutoff.
type OTPPruner interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenPruner deletes refresh tokens that expired or were revoked before cutoff.
type TokenPruner interface {
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// Janitor periodically removes stale OTP and refresh-token rows.  Expiry is
// enforced at read time, so a stopped janitor only costs storage.
type Janitor struct {
	OTPs      OTPPruner
	Tokens    TokenPruner
	Interval  time.Duration
	Retention time.Duration
	Now       func() time.Time
	Log       logrus.FieldLogger
}

func NewJanitor(otps OTPPruner, tokens TokenPruner, interval, retention time.Duration, log logrus.FieldLogger) *Janitor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Janitor{
		OTPs:      otps,
		Tokens:    tokens,
		Interval:  interval,
		Retention: retention,
		Log:       log.WithField("component", "janitor"),
	}
}

// Run prunes once immediately and then on every tick until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	if j.Interval <= 0 {
		return
	}
	t := time.NewTicker(j.Interval)
	defer t.Stop()
	for {
		if _, _, err := j.RunOnce(ctx); err != nil && ctx.Err() == nil {
			j.Log.WithError(err).Warn("cleanup pass failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// RunOnce performs a single pruning pass and reports how many OTP and
// refresh-token rows were deleted.
func (j *Janitor) RunOnce(ctx context.Context) (otps, tokens int64, err error) {
	now := time.Now().UTC()
	if j.Now != nil {
		now = j.Now()
	}
	cutoff := now.Add(-j.Retention)

	otps, err = j.OTPs.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, 0, err
	}
	tokens, err = j.Tokens.DeleteStale(ctx, cutoff)
	if err != nil {
		return otps, 0, err
	}
	if otps > 0 || tokens > 0 {
		j.Log.WithFields(logrus.Fields{"otps": otps, "refresh_tokens": tokens}).Info("pruned stale rows")
	}
	return otps, tokens, nil
}
