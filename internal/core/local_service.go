package core

import (
	"context"
	"errors"
	"sync"

	"github.com/droneq/droneq/internal/events"
	"github.com/droneq/droneq/internal/queue"
	"github.com/droneq/droneq/internal/state"
	"github.com/droneq/droneq/internal/utils"
)

// ErrShutdown is returned by a service that has been shut down.
var ErrShutdown = errors.New("queue service is shut down")

const listenerBuffer = 100

// LocalQueueService implements QueueService on the embedded state store.
type LocalQueueService struct {
	InputCh chan any

	listeners  []chan any
	listenerMu sync.Mutex
	closed     bool // guarded by listenerMu

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

// NewLocalQueueService creates a service over the configured state DB.
func NewLocalQueueService() *LocalQueueService {
	ctx, cancel := context.WithCancel(context.Background())
	s := &LocalQueueService{
		InputCh: make(chan any, listenerBuffer),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.broadcastLoop()
	return s
}

func (s *LocalQueueService) broadcastLoop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			s.closeListeners()
			return
		case msg := <-s.InputCh:
			s.listenerMu.Lock()
			for _, ch := range s.listeners {
				// Non-blocking send to avoid stalling if a client is slow
				select {
				case ch <- msg:
				default:
				}
			}
			s.listenerMu.Unlock()
		}
	}
}

func (s *LocalQueueService) closeListeners() {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	for _, ch := range s.listeners {
		close(ch)
	}
	s.listeners = nil
	s.closed = true
}

func (s *LocalQueueService) publish(msg any) {
	select {
	case <-s.ctx.Done():
	case s.InputCh <- msg:
	}
}

func (s *LocalQueueService) alive() error {
	if s.ctx.Err() != nil {
		return ErrShutdown
	}
	return nil
}

// List returns one page of the queue.
func (s *LocalQueueService) List(ctx context.Context, page, pageSize int) (queue.Page, error) {
	if err := s.alive(); err != nil {
		return queue.Page{}, err
	}
	if err := ctx.Err(); err != nil {
		return queue.Page{}, err
	}
	return state.ListItems(page, pageSize)
}

// Add queues a release.
func (s *LocalQueueService) Add(ctx context.Context, link, title string) (queue.Item, error) {
	if err := s.alive(); err != nil {
		return queue.Item{}, err
	}
	if err := ctx.Err(); err != nil {
		return queue.Item{}, err
	}
	item, err := state.AddItem(queue.Item{Link: link, Title: title})
	if err != nil {
		return queue.Item{}, err
	}
	s.publish(events.ItemAddedMsg{Item: item})
	return item, nil
}

// Grab releases delayed items.
func (s *LocalQueueService) Grab(ctx context.Context, ids []string) (int, error) {
	if err := s.alive(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := state.GrabItems(ids)
	if err != nil {
		return 0, err
	}
	utils.Debug("core: grabbed %d of %d item(s)", n, len(ids))
	s.publish(events.ItemsGrabbedMsg{IDs: ids, Grabbed: n})
	return n, nil
}

// Remove deletes items, optionally blacklisting their releases.
func (s *LocalQueueService) Remove(ctx context.Context, ids []string, blacklist bool) (int, error) {
	if err := s.alive(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := state.RemoveItems(ids, blacklist)
	if err != nil {
		return 0, err
	}
	utils.Debug("core: removed %d of %d item(s), blacklist=%t", n, len(ids), blacklist)
	s.publish(events.ItemsRemovedMsg{IDs: ids, Removed: n, Blacklist: blacklist})
	return n, nil
}

// SetStatus changes one item's status and broadcasts it. Download clients
// report progress through this.
func (s *LocalQueueService) SetStatus(ctx context.Context, id string, status queue.Status) error {
	if err := s.alive(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := state.UpdateStatus(id, status); err != nil {
		return err
	}
	s.publish(events.StatusChangedMsg{ID: id, Status: status})
	return nil
}

// StreamEvents subscribes to queue events.
func (s *LocalQueueService) StreamEvents(ctx context.Context) (<-chan any, func(), error) {
	ch := make(chan any, listenerBuffer)
	s.listenerMu.Lock()
	if s.closed || s.alive() != nil {
		s.listenerMu.Unlock()
		return nil, nil, ErrShutdown
	}
	s.listeners = append(s.listeners, ch)
	s.listenerMu.Unlock()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			s.listenerMu.Lock()
			defer s.listenerMu.Unlock()
			for i, listener := range s.listeners {
				if listener == ch {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					close(ch)
					break
				}
			}
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cleanup()
		case <-s.done:
		}
	}()

	return ch, cleanup, nil
}

// Shutdown stops the broadcaster and closes every event stream.
func (s *LocalQueueService) Shutdown() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}
