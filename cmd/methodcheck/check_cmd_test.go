package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/methodcheck-testserver/internal/config"
	"github.com/iliyamo/methodcheck-testserver/internal/findings"
	"github.com/iliyamo/methodcheck-testserver/internal/probe"
	"github.com/iliyamo/methodcheck-testserver/internal/queue"
	"github.com/iliyamo/methodcheck-testserver/internal/router"
)

func startTestServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(router.New(config.Config{BodyLimit: "1M"}, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv.URL + router.APITestPath
}

func TestRunCheckReportsAndDedupes(t *testing.T) {
	target := startTestServer(t)
	store := findings.NewStore(nil, "", time.Hour)
	opts := checkOptions{Method: "GET"}

	var published []queue.FindingEvent
	publish := func(_ context.Context, ev queue.FindingEvent) error {
		published = append(published, ev)
		return nil
	}

	var out bytes.Buffer
	require.NoError(t, runCheck(context.Background(), &out, target, opts, probe.New(5*time.Second), store, publish, zerolog.Nop()))
	assert.Contains(t, out.String(), "Alternative HTTP Methods Available: POST, PUT, DELETE")
	assert.Contains(t, out.String(), "Published finding methodcheck-127.0.0.1-/api/test-GET")
	require.Len(t, published, 1)
	assert.Equal(t, []string{"POST", "PUT", "DELETE"}, published[0].Methods)

	out.Reset()
	require.NoError(t, runCheck(context.Background(), &out, target, opts, probe.New(5*time.Second), store, publish, zerolog.Nop()))
	assert.Contains(t, out.String(), "Finding already reported")
	assert.Len(t, published, 1)

	opts.Recheck = true
	out.Reset()
	require.NoError(t, runCheck(context.Background(), &out, target, opts, probe.New(5*time.Second), store, publish, zerolog.Nop()))
	assert.Len(t, published, 2)
}

func TestRunCheckNoFindings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", "GET, OPTIONS")
	}))
	defer srv.Close()

	var out bytes.Buffer
	require.NoError(t, runCheck(context.Background(), &out, srv.URL, checkOptions{Method: "GET"}, probe.New(5*time.Second), nil, nil, zerolog.Nop()))
	assert.Contains(t, out.String(), "No additional methods found")
}

func TestRunCheckTransportError(t *testing.T) {
	err := runCheck(context.Background(), &bytes.Buffer{}, "http://127.0.0.1:1/", checkOptions{Method: "GET"}, probe.New(time.Second), nil, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestRunCheckPublishError(t *testing.T) {
	target := startTestServer(t)
	publish := func(context.Context, queue.FindingEvent) error { return errors.New("broker down") }

	err := runCheck(context.Background(), &bytes.Buffer{}, target, checkOptions{Method: "POST"}, probe.New(5*time.Second), nil, publish, zerolog.Nop())
	assert.ErrorContains(t, err, "broker down")
}

func TestOpenStore(t *testing.T) {
	mr := miniredis.RunT(t)
	fcfg := config.FindingsConfig{Prefix: "mc", TTL: time.Hour}
	connect := func(context.Context) *redis.Client { return redis.NewClient(&redis.Options{Addr: mr.Addr()}) }
	unreachable := func(context.Context) *redis.Client { return nil }
	ctx := context.Background()

	store, closeStore, err := openStore(ctx, checkOptions{}, fcfg, unreachable)
	require.NoError(t, err)
	assert.Nil(t, store)
	closeStore()

	store, closeStore, err = openStore(ctx, checkOptions{Recheck: true}, fcfg, connect)
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.True(t, store.Shared())
	closeStore()

	_, _, err = openStore(ctx, checkOptions{Dedupe: true}, fcfg, unreachable)
	assert.ErrorIs(t, err, errNoRedis)

	_, _, err = openStore(ctx, checkOptions{Recheck: true}, fcfg, unreachable)
	assert.ErrorIs(t, err, errNoRedis)
}
