package refresh

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	ouidb "github.com/pre-history/mac-oui"
)

type Fetcher interface {
	Fetch(ctx context.Context) (*ouidb.DB, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) (*ouidb.DB, error)

func (f FetcherFunc) Fetch(ctx context.Context) (*ouidb.DB, error) { return f(ctx) }

type Config struct {
	Interval       time.Duration // base update interval
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Timeout        time.Duration // per fetch
	Source         string
	Logger         *log.Logger
}

// Start replaces the holder's database every Interval until ctx is done. A
// failed fetch keeps the current database and retries with backoff.
func Start(ctx context.Context, cfg Config, src Fetcher, holder *Holder) error {
	if cfg.Interval <= 0 {
		return nil
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 30 * time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	logger := cfg.Logger.With("source", cfg.Source)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	var consecutiveFailures int

	for {
		select {
		case <-ctx.Done():
			logger.Debug("updater stopped", "reason", ctx.Err())
			return nil

		case <-ticker.C:
			if err := updateOnce(ctx, cfg, src, holder); err != nil {
				consecutiveFailures++
				backoff := calcBackoff(cfg.InitialBackoff, cfg.MaxBackoff, consecutiveFailures)
				logger.Warn("oui refresh failed", "attempt", consecutiveFailures, "backoff", backoff, "error", err)

				timer := time.NewTimer(backoff)
				select {
				case <-ctx.Done():
					timer.Stop()
					return nil
				case <-timer.C:
				}
				continue
			}

			if consecutiveFailures > 0 {
				logger.Info("oui refresh recovered", "failures", consecutiveFailures)
			}
			consecutiveFailures = 0
			logger.Info("oui database refreshed", "records", holder.DB().Len())
		}
	}
}

func calcBackoff(initial, max time.Duration, failures int) time.Duration {
	pow := math.Pow(2, float64(failures-1))
	backoff := time.Duration(float64(initial) * pow)
	if backoff > max {
		backoff = max
	}

	jitterFrac := 0.2
	jitter := time.Duration(rand.Float64()*2*jitterFrac*float64(backoff)) -
		time.Duration(jitterFrac*float64(backoff))

	return backoff + jitter
}

func updateOnce(ctx context.Context, cfg Config, src Fetcher, holder *Holder) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	db, err := src.Fetch(ctx)
	if err != nil {
		return err
	}

	holder.Set(db, cfg.Source)
	return nil
}
