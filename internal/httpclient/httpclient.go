package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRate is the number of requests per second sent to the portal.
const DefaultRate = 4.0

const userAgent = "factorio-mod-downloader"

type Doer interface {
	Do(request *http.Request) (*http.Response, error)
}

// Limited paces requests through a rate limiter. It never retries.
type Limited struct {
	Client  Doer
	Limiter *rate.Limiter
}

func (c *Limited) Do(request *http.Request) (*http.Response, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(request.Context()); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}
	if request.Header.Get("User-Agent") == "" {
		request.Header.Set("User-Agent", userAgent)
	}
	return c.Client.Do(request)
}

// New returns a Limited client allowing perSecond requests per second.
// A non-positive rate disables pacing.
func New(perSecond float64) *Limited {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Limited{
		Client:  &http.Client{Timeout: 5 * time.Minute},
		Limiter: rate.NewLimiter(limit, 1),
	}
}
