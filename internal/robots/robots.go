// Package robots gates resource fetches on the target host's robots.txt.
package robots

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"

	"github.com/go-scripts/imagegrab/internal/fetch"
)

// ErrDisallowed is returned for locators robots.txt forbids
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Getter fetches a URL whatever its status
type Getter interface {
	Do(ctx context.Context, rawURL string) (*fetch.Response, error)
}

type entry struct {
	once sync.Once
	data *robotstxt.RobotsData
}

// Checker caches one robots.txt per scheme+host for the lifetime of a run.
type Checker struct {
	getter    Getter
	userAgent string

	mu    sync.Mutex
	hosts map[string]*entry
}

// NewChecker returns a checker that matches rules for userAgent
func NewChecker(getter Getter, userAgent string) *Checker {
	return &Checker{
		getter:    getter,
		userAgent: userAgent,
		hosts:     make(map[string]*entry),
	}
}

// Allowed returns nil when rawURL may be fetched. An unreachable or
// unparsable robots.txt allows everything.
func (c *Checker) Allowed(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}

	data := c.rules(ctx, u)
	if data == nil {
		return nil
	}
	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	if !data.TestAgent(p, c.userAgent) {
		return ErrDisallowed
	}
	return nil
}

func (c *Checker) rules(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	key := u.Scheme + "://" + u.Host

	c.mu.Lock()
	e, ok := c.hosts[key]
	if !ok {
		e = &entry{}
		c.hosts[key] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		resp, err := c.getter.Do(ctx, key+"/robots.txt")
		if err != nil {
			return
		}
		data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, resp.Body)
		if err != nil {
			return
		}
		e.data = data
	})
	return e.data
}
