package probe

import (
	"fmt"
	"strings"
	"time"
)

// Reporter is recorded on every finding this package produces.
const Reporter = "MethodCheck"

// Finding reports that a URL advertises methods beyond the one it was
// requested with.
type Finding struct {
	Title       string
	Description string
	Reporter    string
	DedupeKey   string
	URL         string
	Host        string
	Path        string
	Method      string
	Methods     []string
	CreatedAt   time.Time
}

// DedupeKey identifies a finding by host, path and original method so the
// same endpoint is reported once per method.
func DedupeKey(host, path, method string) string {
	return fmt.Sprintf("methodcheck-%s-%s-%s", host, path, strings.ToUpper(method))
}

// NewFinding builds the finding for r.  It fails when r.URL cannot be parsed.
func NewFinding(r Result, now time.Time) (Finding, error) {
	host, path, err := HostPath(r.URL)
	if err != nil {
		return Finding{}, err
	}
	methods := strings.Join(r.Additional, ", ")
	desc := fmt.Sprintf(`The endpoint at %s was accessed using %s, but also supports these methods: %s.

This could indicate expanded functionality or potential security issues if unexpected methods are accessible.

Details:
- Original request: %s %s
- Host: %s
- Path: %s
- Additional methods: %s`, r.URL, r.Method, methods, r.Method, r.URL, host, path, methods)

	return Finding{
		Title:       "Alternative HTTP Methods Available: " + methods,
		Description: desc,
		Reporter:    Reporter,
		DedupeKey:   DedupeKey(host, path, r.Method),
		URL:         r.URL,
		Host:        host,
		Path:        path,
		Method:      r.Method,
		Methods:     append([]string(nil), r.Additional...),
		CreatedAt:   now.UTC(),
	}, nil
}
