package stitch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// defaultRefreshInterval is how often the proactive refresher inspects
	// the access token.
	defaultRefreshInterval = 60 * time.Second

	// refreshMargin renews tokens this close to expiry so in-flight requests
	// don't race the deadline.
	refreshMargin = 5 * time.Minute
)

// proactiveRefresher eagerly renews a soon-to-expire access token in the
// background, so requests rarely pay the refresh-and-retry round trip. It
// shares the refresh protocol with the reactive path, so at most one refresh
// is in flight regardless of which side triggers it. Errors here are only
// logged; the next request's reactive retry still covers an unusable token.
type proactiveRefresher struct {
	exec     *requestExecutor
	store    *authInfoStore
	interval time.Duration
	logger   *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func newProactiveRefresher(exec *requestExecutor, store *authInfoStore, interval time.Duration, logger *slog.Logger) *proactiveRefresher {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &proactiveRefresher{
		exec:     exec,
		store:    store,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (r *proactiveRefresher) start() {
	go r.run()
}

func (r *proactiveRefresher) run() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *proactiveRefresher) tick() {
	info := r.store.Current()
	if !info.LoggedIn() {
		return
	}
	if !shouldRefresh(info.AccessToken, time.Now(), refreshMargin) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.interval)
	defer cancel()

	if err := r.exec.RefreshAccessToken(ctx); err != nil {
		r.logger.Warn("proactive token refresh failed", "err", err)
	}
}

// Stop tears the refresher down and waits for the background goroutine to
// exit. Safe to call more than once.
func (r *proactiveRefresher) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}

// shouldRefresh decodes the access token's expiry locally, without network
// or signature verification, and reports whether it has expired or will
// within margin. Tokens whose expiry can't be read are left for the reactive
// retry path rather than refreshed blindly.
func shouldRefresh(accessToken string, now time.Time, margin time.Duration) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return now.Add(margin).After(claims.ExpiresAt.Time)
}
