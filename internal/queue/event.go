// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/iliyamo/methodcheck-testserver/internal/probe"
)

// FindingsQueue is the durable queue findings are published to.
const FindingsQueue = "methodcheck.findings"

// FindingEvent is published when a probe discovers methods beyond the one a
// URL was requested with.  It carries enough for consumers to log or alert
// without re-probing the target.
type FindingEvent struct {
	DedupeKey string   `json:"dedupe_key"`
	Title     string   `json:"title"`
	Reporter  string   `json:"reporter"`
	URL       string   `json:"url"`
	Host      string   `json:"host"`
	Path      string   `json:"path"`
	Method    string   `json:"method"`
	Methods   []string `json:"methods"`
	Status    int      `json:"status"`
	CreatedAt string   `json:"created_at"`
}

// NewFindingEvent converts a finding into its wire form.  status is the HTTP
// status of the OPTIONS probe that produced it.
func NewFindingEvent(f probe.Finding, status int) FindingEvent {
	return FindingEvent{
		DedupeKey: f.DedupeKey,
		Title:     f.Title,
		Reporter:  f.Reporter,
		URL:       f.URL,
		Host:      f.Host,
		Path:      f.Path,
		Method:    f.Method,
		Methods:   f.Methods,
		Status:    status,
		CreatedAt: f.CreatedAt.Format(time.RFC3339),
	}
}
