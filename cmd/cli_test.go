package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/droneq/droneq/internal/core"
	"github.com/droneq/droneq/internal/events"
	"github.com/droneq/droneq/internal/host"
	"github.com/droneq/droneq/internal/queue"
	"github.com/droneq/droneq/internal/state"
)

func isolateDirs(t *testing.T) {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))
	t.Setenv("XDG_RUNTIME_DIR", filepath.Join(base, "runtime"))
	t.Setenv("APPDATA", base)
	t.Setenv("DRONEQ_TOKEN", "")
}

func setupStore(t *testing.T) *core.LocalQueueService {
	t.Helper()
	state.CloseDB()
	state.Configure(filepath.Join(t.TempDir(), "droneq.db"))
	svc := core.NewLocalQueueService()
	t.Cleanup(func() {
		_ = svc.Shutdown()
		state.CloseDB()
	})
	return svc
}

func newAPIServer(t *testing.T, svc core.QueueService, token string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(newServerHandler(token, NewAPIHandler(svc, 1770, 20)))
	t.Cleanup(srv.Close)
	return srv
}

func TestAPI_RoundTripThroughRemoteService(t *testing.T) {
	local := setupStore(t)
	srv := newAPIServer(t, local, "tok")

	remote := core.NewRemoteQueueService(srv.URL, "tok")
	t.Cleanup(func() { _ = remote.Shutdown() })
	ctx := context.Background()

	a, err := remote.Add(ctx, "https://indexer.example/get/Show.S01E01.nzb", "")
	require.NoError(t, err)
	assert.Equal(t, "Show.S01E01", a.Title)
	assert.Equal(t, queue.StatusDelay, a.Status)

	b, err := remote.Add(ctx, "magnet:?xt=urn:btih:0123456789abcdef0123456789abcdef01234567&dn=Show.S01E02", "")
	require.NoError(t, err)
	assert.Equal(t, queue.ProtocolTorrent, b.Protocol)

	page, err := remote.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalRecords)
	assert.Equal(t, 2, page.TotalPages())
	require.Len(t, page.Items, 1)
	assert.Contains(t, []string{a.ID, b.ID}, page.Items[0].ID)

	n, err := remote.Grab(ctx, []string{a.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := state.GetItem(a.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusQueued, got.Status)

	n, err = remote.Remove(ctx, []string{a.ID, b.ID}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = remote.Add(ctx, b.Link, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error 409")
}

func TestAPI_SetStatus(t *testing.T) {
	local := setupStore(t)
	srv := newAPIServer(t, local, "tok")

	remote := core.NewRemoteQueueService(srv.URL, "tok")
	t.Cleanup(func() { _ = remote.Shutdown() })
	ctx := context.Background()

	item, err := remote.Add(ctx, "https://indexer.example/get/Show.S03E01.nzb", "")
	require.NoError(t, err)

	require.NoError(t, remote.SetStatus(ctx, item.ID, queue.StatusDownloading))
	got, err := state.GetItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusDownloading, got.Status)

	// Grab only moves Delay items, so a downloading item stays put.
	n, err := remote.Grab(ctx, []string{item.ID})
	require.NoError(t, err)
	assert.Zero(t, n)

	err = remote.SetStatus(ctx, "missing", queue.StatusFailed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error 404")

	err = remote.SetStatus(ctx, item.ID, queue.Status("Bogus"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error 400")
}

func TestParseStatus(t *testing.T) {
	status, ok := parseStatus(" completed ")
	assert.True(t, ok)
	assert.Equal(t, queue.StatusCompleted, status)

	_, ok = parseStatus("done")
	assert.False(t, ok)
}

func TestAPI_Auth(t *testing.T) {
	local := setupStore(t)
	srv := newAPIServer(t, local, "tok")

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/queue")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/queue", nil)
	req.Header.Set("Authorization", "Bearer tok-but-longer")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_BadRequests(t *testing.T) {
	local := setupStore(t)
	srv := newAPIServer(t, local, "tok")

	do := func(method, path, body string) int {
		req, _ := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer tok")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusMethodNotAllowed, do(http.MethodGet, "/queue/add", ""))
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/queue/add", "{not json"))
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/queue/add", `{"link": "  "}`))
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/queue/add", `{"link": "magnet:?dn=nohash"}`))
	assert.Equal(t, http.StatusMethodNotAllowed, do(http.MethodPost, "/queue", ""))
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/queue/grab", `{"ids": []}`))
}

func TestAPI_EventsStream(t *testing.T) {
	local := setupStore(t)
	srv := newAPIServer(t, local, "tok")

	remote := core.NewRemoteQueueService(srv.URL, "tok")
	t.Cleanup(func() { _ = remote.Shutdown() })

	stream, cleanup, err := remote.StreamEvents(context.Background())
	require.NoError(t, err)
	defer cleanup()

	// The subscription is registered asynchronously; keep adding until one
	// event makes it through.
	deadline := time.After(3 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for i := 0; ; i++ {
		select {
		case msg := <-stream:
			added, ok := msg.(events.ItemAddedMsg)
			require.True(t, ok, "unexpected %T", msg)
			assert.Contains(t, added.Item.Title, "Show.S02E")
			return
		case <-tick.C:
			_, err := local.Add(context.Background(), fmt.Sprintf("https://indexer.example/get/Show.S02E%02d.nzb", i+1), "")
			require.NoError(t, err)
		case <-deadline:
			t.Fatal("no event received over SSE")
		}
	}
}

type listOnly struct {
	core.QueueService
	ids []string
}

func (l listOnly) List(_ context.Context, page, pageSize int) (queue.Page, error) {
	var items []queue.Item
	start := (page - 1) * pageSize
	for i := start; i < len(l.ids) && i < start+pageSize; i++ {
		items = append(items, queue.Item{ID: l.ids[i]})
	}
	return queue.Page{Items: items, TotalRecords: len(l.ids), Page: page, PageSize: pageSize}, nil
}

func TestResolveItemIDs(t *testing.T) {
	ids := []string{
		"aabbccdd-1111-0000-0000-000000000000",
		"aabbccee-2222-0000-0000-000000000000",
		"ffeeddcc-3333-0000-0000-000000000000",
	}
	svc := listOnly{ids: ids}
	ctx := context.Background()

	got, err := resolveItemIDs(ctx, svc, []string{"ffee", "aabbccdd", "abc", "zzzz"})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2], ids[0], "abc", "zzzz"}, got)

	_, err = resolveItemIDs(ctx, svc, []string{"aabbcc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestInstallService(t *testing.T) {
	setupStore(t)
	var buf bytes.Buffer
	console := &host.Console{Out: &buf}

	require.NoError(t, installService(console, "droneq"))
	assert.Equal(t, "Service droneq installed.\n", buf.String())

	buf.Reset()
	require.NoError(t, installService(console, "droneq"), "a duplicate install is not fatal")
	assert.Equal(t, "A service with the same name (droneq) already exists. Aborting installation\n", buf.String())
}

func TestAcquireLock_SingleInstance(t *testing.T) {
	isolateDirs(t)

	ok, err := AcquireLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer func() { _ = ReleaseLock() }()

	other := flock.New(lockPath())
	locked, err := other.TryLock()
	require.NoError(t, err)
	assert.False(t, locked, "second holder must be refused")

	require.NoError(t, ReleaseLock())
	locked, err = other.TryLock()
	require.NoError(t, err)
	assert.True(t, locked)
	_ = other.Unlock()
}

func TestActivePortFile(t *testing.T) {
	isolateDirs(t)

	assert.Equal(t, 0, readActivePort())
	saveActivePort(1771)
	assert.Equal(t, 1771, readActivePort())
	removeActivePort()
	assert.Equal(t, 0, readActivePort())
}

func TestEnsureAuthToken_Stable(t *testing.T) {
	isolateDirs(t)

	first := ensureAuthToken()
	assert.Len(t, first, 36)
	assert.Equal(t, first, ensureAuthToken())
}

func TestResolveToken(t *testing.T) {
	isolateDirs(t)

	token, err := resolveToken("10.0.0.2:1770", "flag-token")
	require.NoError(t, err)
	assert.Equal(t, "flag-token", token)

	t.Setenv("DRONEQ_TOKEN", "env-token")
	token, err = resolveToken("10.0.0.2:1770", "")
	require.NoError(t, err)
	assert.Equal(t, "env-token", token)

	t.Setenv("DRONEQ_TOKEN", "")
	_, err = resolveToken("10.0.0.2:1770", "")
	assert.Error(t, err)

	token, err = resolveToken("127.0.0.1:1770", "")
	require.NoError(t, err)
	assert.Equal(t, ensureAuthToken(), token)
}

func TestDescribeEvent(t *testing.T) {
	tests := []struct {
		msg  any
		want string
	}{
		{events.ItemAddedMsg{Item: queue.Item{ID: "0123456789", Title: "Show"}}, "Added: Show [01234567]"},
		{events.ItemsGrabbedMsg{IDs: []string{"a", "b"}, Grabbed: 1}, "Grabbed: 1 of 2"},
		{events.ItemsRemovedMsg{IDs: []string{"a"}, Removed: 1, Blacklist: true}, "Removed: 1 of 1 (blacklisted)"},
		{events.StatusChangedMsg{ID: "abc", Status: queue.StatusPaused}, "Status: [abc] Paused"},
		{"unknown", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, describeEvent(tt.msg))
	}
}

func TestPrintQueue(t *testing.T) {
	var buf bytes.Buffer
	printQueue(&buf, queue.Page{})
	assert.Equal(t, "Queue is empty\n", buf.String())

	buf.Reset()
	printQueue(&buf, queue.Page{
		Items: []queue.Item{
			{ID: "aabbccdd-1111", Status: queue.StatusDelay, Protocol: queue.ProtocolUsenet, Title: "Show.S01E01", Size: 2048},
		},
		TotalRecords: 21, Page: 1, PageSize: 20,
	})
	out := buf.String()
	assert.Contains(t, out, "aabbccdd")
	assert.NotContains(t, out, "aabbccdd-1111")
	assert.Contains(t, out, "2.0 KB")
	assert.Contains(t, out, "Page 1 of 2 (21 items)")
}
