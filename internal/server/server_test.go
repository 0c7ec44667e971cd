package server

import (
	"context"
	"testing"
	"time"

	"github.com/alignak-monitoring-contrib/alignak-counters/internal/counters"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_StartStop(t *testing.T) {
	store := counters.NewStore()
	store.Set(&counters.ResultSet{Counters: []counters.Counter{
		{Host: "localhost", Service: "Cpu", Metric: "load1", Value: 0.66, Timestamp: 1700000120},
	}})

	srv := New("127.0.0.1:0", "/metrics", store)
	require.NotNil(t, srv)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	// Give the listener a moment to come up, then trigger shutdown.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
