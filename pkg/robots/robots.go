// Package robots decides whether a target URL may be scraped, based on the
// site's robots.txt policy.
package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

// Decision is the outcome of a policy check. Reason is set when permission is
// denied.
type Decision struct {
	Allowed bool
	Reason  string
}

// Checker fetches and evaluates robots.txt for a site. An absent policy file
// grants permission; any other fetch or parse failure denies it.
type Checker struct {
	client    *http.Client
	userAgent string
	cache     *policyCache
}

// NewChecker constructs a checker identifying itself as userAgent. Fetched
// policies are cached per host for a few minutes, covering batch imports
// from the same site.
func NewChecker(userAgent string, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Checker{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		cache:     newPolicyCache(5 * time.Minute),
	}
}

// Check evaluates the site policy for the exact target URL. All failure modes
// are folded into the returned Decision; the caller never has to distinguish
// an error from a denial.
func (c *Checker) Check(ctx context.Context, rawURL string) Decision {
	target, err := url.Parse(rawURL)
	if err != nil {
		return Decision{Allowed: false, Reason: fmt.Sprintf("invalid target URL: %v", err)}
	}

	data, denied, cached := c.cache.get(target.Host)
	if !cached {
		data, denied = c.fetchPolicy(ctx, target)
		c.cache.put(target.Host, data, denied)
	}
	if denied != "" {
		return Decision{Allowed: false, Reason: denied}
	}
	// A nil policy with no denial means the site publishes no robots.txt.
	if data == nil {
		return Decision{Allowed: true}
	}

	path := target.Path
	if path == "" {
		path = "/"
	}
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}

	group := data.FindGroup(c.userAgent)
	if group == nil || group.Test(path) {
		// No matching rule means no restriction.
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, Reason: fmt.Sprintf("robots.txt disallows %s for %s", path, c.userAgent)}
}

// fetchPolicy retrieves and parses the site's robots.txt. A nil policy with
// an empty denial means the file is absent; a non-empty denial folds every
// fetch and parse failure into a fail-closed outcome.
func (c *Checker) fetchPolicy(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, string) {
	robotsURL := target.Scheme + "://" + target.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Sprintf("failed to build robots.txt request: %v", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		// Fail closed on ambiguous errors: we could not establish what the
		// site permits.
		return nil, fmt.Sprintf("failed to fetch robots.txt: %v", err)
	}
	defer resp.Body.Close()

	// An absent policy file means no restriction.
	if resp.StatusCode == http.StatusNotFound {
		return nil, ""
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Sprintf("robots.txt returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Sprintf("failed to read robots.txt: %v", err)
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil, fmt.Sprintf("failed to parse robots.txt: %v", err)
	}
	return data, ""
}
