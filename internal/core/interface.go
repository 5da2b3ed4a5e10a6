package core

import (
	"context"

	"github.com/droneq/droneq/internal/queue"
)

// QueueService defines the interface for reading and acting on the queue.
// This abstraction allows the TUI to switch between a local embedded store
// and a remote daemon connection.
type QueueService interface {
	// List returns one page of the queue, pages start at 1.
	List(ctx context.Context, page, pageSize int) (queue.Page, error)

	// Add queues a release by link. An empty title is derived from the link.
	Add(ctx context.Context, link, title string) (queue.Item, error)

	// Grab pushes the delayed items among ids to their download client.
	Grab(ctx context.Context, ids []string) (int, error)

	// Remove deletes ids from the queue, optionally blacklisting the releases.
	Remove(ctx context.Context, ids []string, blacklist bool) (int, error)

	// SetStatus moves one item to status, as reported by its download client.
	SetStatus(ctx context.Context, id string, status queue.Status) error

	// StreamEvents returns a channel that receives queue events until ctx
	// is done. The cleanup function unsubscribes early.
	StreamEvents(ctx context.Context) (<-chan any, func(), error)

	// Shutdown handles graceful shutdown of the service
	Shutdown() error
}
