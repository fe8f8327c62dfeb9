package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telemetry-capture/internal/config"
	"telemetry-capture/internal/model"
	"telemetry-capture/internal/query"
)

func startListener(t *testing.T) (*Listener, *http.Client) {
	t.Helper()

	l := NewListener(config.Default(), zerolog.Nop())
	require.NoError(t, l.Start())
	t.Cleanup(func() {
		require.NoError(t, l.Close(context.Background()))
	})

	client := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
	return l, client
}

func send(t *testing.T, client *http.Client, url string, body string) {
	t.Helper()
	resp, err := client.Post(url, "application/x-json-stream", bytes.NewBufferString(body))
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListenerEndToEnd(t *testing.T) {
	l, client := startListener(t)
	require.NotEmpty(t, l.Addr())

	var (
		wg       sync.WaitGroup
		requests []model.Item[model.RequestData]
		all      []*model.Envelope
		reqErr   error
		allErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		requests, reqErr = query.ReceiveItemsOfType[model.RequestData](l, 2, 2*time.Second)
	}()
	go func() {
		defer wg.Done()
		all, allErr = query.ReceiveAllDuring(l, 300*time.Millisecond)
	}()

	require.Eventually(t, func() bool { return l.Subscribers() == 2 }, time.Second, time.Millisecond)

	send(t, client, l.URL()+"/v2/track", requestLine+"\n"+eventLine)
	send(t, client, l.URL()+"/v2.1/track", requestLine)
	wg.Wait()

	require.NoError(t, reqErr)
	require.Len(t, requests, 2)
	assert.Equal(t, "GET /", requests[0].Data.Name)

	require.NoError(t, allErr)
	require.Len(t, all, 3)
	assert.Equal(t, []model.Kind{model.KindRequest, model.KindEvent, model.KindRequest},
		[]model.Kind{all[0].Kind, all[1].Kind, all[2].Kind})
}

func TestListenerHealthAndMetrics(t *testing.T) {
	l, client := startListener(t)

	resp, err := client.Get(l.URL() + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	send(t, client, l.URL()+"/collect", eventLine)

	resp, err = client.Get(l.URL() + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "http_requests_accepted_total=1\n")
	assert.EqualValues(t, 1, l.Metrics().ItemsPublishedTotal)
}

func TestListenersAreIsolated(t *testing.T) {
	a, client := startListener(t)
	b, _ := startListener(t)
	require.NotEqual(t, a.Addr(), b.Addr())

	done := make(chan error, 1)
	go func() {
		_, err := query.ReceiveItems(b, 1, 150*time.Millisecond)
		done <- err
	}()
	require.Eventually(t, func() bool { return b.Subscribers() == 1 }, time.Second, time.Millisecond)

	send(t, client, a.URL()+"/v2/track", eventLine)

	var mismatch *query.CountMismatchError
	require.ErrorAs(t, <-done, &mismatch)
	assert.Equal(t, 0, mismatch.Actual)
}

func TestListenerCloseIdempotent(t *testing.T) {
	l := NewListener(config.Default(), zerolog.Nop())
	assert.NoError(t, l.Close(context.Background()), "close before start")

	assert.ErrorIs(t, l.Start(), ErrClosed)

	l = NewListener(config.Default(), zerolog.Nop())
	require.NoError(t, l.Start())
	assert.NoError(t, l.Close(context.Background()))
	assert.NoError(t, l.Close(context.Background()))
	assert.ErrorIs(t, l.Start(), ErrClosed)
}

func TestListenerStartTwice(t *testing.T) {
	l, _ := startListener(t)
	addr := l.Addr()

	assert.ErrorIs(t, l.Start(), ErrAlreadyStarted)
	assert.Equal(t, addr, l.Addr())
}
