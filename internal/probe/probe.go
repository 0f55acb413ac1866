// Package probe discovers which HTTP methods a URL advertises by sending it an
// OPTIONS request and reading the Allow and Access-Control-Allow-Methods
// response headers.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultUserAgent identifies probe traffic in target logs.
const DefaultUserAgent = "methodcheck/1.0"

// Result describes the outcome of one OPTIONS probe.
type Result struct {
	URL          string   `json:"url"`
	Method       string   `json:"method"`
	Status       int      `json:"status"`
	AllowMethods []string `json:"allow"`
	CORSMethods  []string `json:"cors_methods"`
	Additional   []string `json:"additional"`
}

// HasFindings reports whether the target advertises methods beyond the one
// originally used.
func (r Result) HasFindings() bool { return len(r.Additional) > 0 }

// Prober sends OPTIONS probes.  The zero value uses http.DefaultClient.
type Prober struct {
	Client    *http.Client
	UserAgent string
}

// New returns a Prober whose client gives up after timeout.
func New(timeout time.Duration) *Prober {
	return &Prober{Client: &http.Client{Timeout: timeout}, UserAgent: DefaultUserAgent}
}

// Check probes target with OPTIONS.  originalMethod is the method the target
// was first requested with; it is excluded from Additional together with
// OPTIONS itself.  Any HTTP status is a valid result; only transport failures
// are returned as errors.
func (p *Prober) Check(ctx context.Context, target, originalMethod string) (Result, error) {
	res := Result{URL: target, Method: strings.ToUpper(strings.TrimSpace(originalMethod))}

	req, err := http.NewRequestWithContext(ctx, http.MethodOptions, target, nil)
	if err != nil {
		return res, fmt.Errorf("build options request: %w", err)
	}
	ua := p.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return res, fmt.Errorf("send options request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	res.Status = resp.StatusCode
	res.AllowMethods = ParseMethods(resp.Header.Get("Allow"))
	res.CORSMethods = ParseMethods(resp.Header.Get("Access-Control-Allow-Methods"))
	res.Additional = Additional(res.Method, res.AllowMethods, res.CORSMethods)
	return res, nil
}

// ParseMethods splits a comma separated method list, trimming and upper-casing
// each entry.  Empty entries are dropped.
func ParseMethods(header string) []string {
	var out []string
	for _, p := range strings.Split(header, ",") {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Additional merges method lists in first-seen order, skipping duplicates,
// the original method and OPTIONS.
func Additional(original string, lists ...[]string) []string {
	original = strings.ToUpper(original)
	seen := map[string]bool{original: true, http.MethodOptions: true}
	var out []string
	for _, l := range lists {
		for _, m := range l {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// HostPath splits a URL into the host (without port) and path (without
// query) used to key findings.  The path is "/" when empty.
func HostPath(raw string) (host, path string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	path = u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return u.Hostname(), path, nil
}
