package core

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/droneq/droneq/internal/events"
	"github.com/droneq/droneq/internal/queue"
	"github.com/droneq/droneq/internal/utils"
)

// AddRequest is the body of POST /queue/add.
type AddRequest struct {
	Link  string `json:"link"`
	Title string `json:"title,omitempty"`
}

// IDsRequest is the body of POST /queue/grab and /queue/remove.
type IDsRequest struct {
	IDs       []string `json:"ids"`
	Blacklist bool     `json:"blacklist,omitempty"`
}

// StatusRequest is the body of POST /queue/status.
type StatusRequest struct {
	ID     string       `json:"id"`
	Status queue.Status `json:"status"`
}

// CountResponse is returned by grab and remove.
type CountResponse struct {
	Count int `json:"count"`
}

// RemoteQueueService implements QueueService for a remote daemon.
type RemoteQueueService struct {
	BaseURL string
	Token   string
	Client  *http.Client
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewRemoteQueueService creates a new remote service instance.
func NewRemoteQueueService(baseURL string, token string) *RemoteQueueService {
	ctx, cancel := context.WithCancel(context.Background())
	return &RemoteQueueService{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  &http.Client{Timeout: 30 * time.Second},
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *RemoteQueueService) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	ctx, stop := mergeContext(ctx, s.ctx)
	req, err := http.NewRequestWithContext(ctx, method, s.BaseURL+path, bodyReader)
	if err != nil {
		stop()
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+s.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		stop()
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer stop()
		defer func() { _ = resp.Body.Close() }()
		// Limit error body read to 1KB
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	resp.Body = &stopOnClose{ReadCloser: resp.Body, stop: stop}
	return resp, nil
}

func (s *RemoteQueueService) decode(ctx context.Context, method, path string, body, out any) error {
	resp, err := s.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return json.NewDecoder(resp.Body).Decode(out)
}

// List returns one page of the remote queue.
func (s *RemoteQueueService) List(ctx context.Context, page, pageSize int) (queue.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))

	var out queue.Page
	if err := s.decode(ctx, http.MethodGet, "/queue?"+q.Encode(), nil, &out); err != nil {
		return queue.Page{}, err
	}
	if out.Items == nil {
		out.Items = []queue.Item{}
	}
	return out, nil
}

// Add queues a release on the daemon.
func (s *RemoteQueueService) Add(ctx context.Context, link, title string) (queue.Item, error) {
	var item queue.Item
	if err := s.decode(ctx, http.MethodPost, "/queue/add", AddRequest{Link: link, Title: title}, &item); err != nil {
		return queue.Item{}, err
	}
	return item, nil
}

// Grab releases delayed items on the daemon.
func (s *RemoteQueueService) Grab(ctx context.Context, ids []string) (int, error) {
	var out CountResponse
	if err := s.decode(ctx, http.MethodPost, "/queue/grab", IDsRequest{IDs: ids}, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Remove deletes items on the daemon.
func (s *RemoteQueueService) Remove(ctx context.Context, ids []string, blacklist bool) (int, error) {
	var out CountResponse
	if err := s.decode(ctx, http.MethodPost, "/queue/remove", IDsRequest{IDs: ids, Blacklist: blacklist}, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// SetStatus changes one item's status on the daemon.
func (s *RemoteQueueService) SetStatus(ctx context.Context, id string, status queue.Status) error {
	resp, err := s.doRequest(ctx, http.MethodPost, "/queue/status", StatusRequest{ID: id, Status: status})
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// Shutdown stops the service.
func (s *RemoteQueueService) Shutdown() error {
	s.cancel()
	return nil
}

// StreamEvents returns a channel that receives queue events via SSE. The
// stream reconnects with backoff until ctx is done or the service shuts down.
func (s *RemoteQueueService) StreamEvents(ctx context.Context) (<-chan any, func(), error) {
	ctx, stop := mergeContext(ctx, s.ctx)
	ch := make(chan any, listenerBuffer)
	go s.streamWithReconnect(ctx, ch)
	return ch, stop, nil
}

func (s *RemoteQueueService) streamWithReconnect(ctx context.Context, ch chan any) {
	defer close(ch)
	backoff := 1 * time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		err := s.connectSSE(ctx, ch)
		if err == nil {
			return
		}
		utils.Debug("core: event stream dropped: %v", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (s *RemoteQueueService) connectSSE(ctx context.Context, ch chan any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/events", nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+s.Token)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// The stream is long lived, so it bypasses the client timeout.
	client := *s.Client
	client.Timeout = 0
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to connect to event stream: %s", resp.Status)
	}

	return readSSE(ctx, resp.Body, ch)
}

// readSSE parses "event:" and "data:" lines, dispatching a message on each
// blank line.
func readSSE(ctx context.Context, r io.Reader, ch chan<- any) error {
	reader := bufio.NewReader(r)
	var name, data string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "":
			if name != "" && data != "" {
				msg, err := events.Decode(name, []byte(data))
				if err != nil {
					utils.Debug("core: %v", err)
				} else {
					// Drop message if channel is full to prevent blocking the reader
					select {
					case ch <- msg:
					default:
					}
				}
			}
			name, data = "", ""
		}
	}
}

// mergeContext returns a context cancelled when either parent is done.
func mergeContext(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			stop()
			cancel()
		})
	}
}

type stopOnClose struct {
	io.ReadCloser
	stop func()
}

func (b *stopOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.stop()
	return err
}
