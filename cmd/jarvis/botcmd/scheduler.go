package botcmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/ivansanturion-collab/jarvis/internal/retryutil"
)

// digestSchedule fires once per week, on the configured weekday and hour.
type digestSchedule struct {
	weekday  time.Weekday
	hour     int
	lastSent time.Time
}

// due reports whether the digest should fire at now. It stays true for the
// whole hour, so lastSent keeps a once-per-day guard.
func (s *digestSchedule) due(now time.Time) bool {
	if now.Weekday() != s.weekday || now.Hour() != s.hour {
		return false
	}
	if s.lastSent.IsZero() {
		return true
	}
	y1, m1, d1 := now.Date()
	y2, m2, d2 := s.lastSent.Date()
	return y1 != y2 || m1 != m2 || d1 != d2
}

func (s *digestSchedule) markSent(now time.Time) {
	s.lastSent = now
}

// runDigestScheduler ticks every minute until ctx is done, invoking send
// when the schedule is due. A failed send gets one deferred background
// retry; the day guard is marked either way so the digest is not spammed.
func runDigestScheduler(ctx context.Context, schedule *digestSchedule, send func(context.Context) error, logger *slog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !schedule.due(now) {
				continue
			}
			schedule.markSent(now)
			if err := send(ctx); err != nil {
				logger.Error("digest_send_error", "error", err)
				retryutil.AsyncRetry(logger, "digest_send", 30*time.Second, 2*time.Minute, send)
				continue
			}
			logger.Info("digest_sent", "weekday", schedule.weekday.String(), "hour", schedule.hour)
		}
	}
}
