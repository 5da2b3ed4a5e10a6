// Package queue defines the queue items tracked by droneq and the snapshot
// the item source hands to the queue view.
package queue

import "time"

// Status is the state of a single download job.
type Status string

const (
	StatusDelay       Status = "Delay" // Held back by a delay profile, eligible for grab
	StatusQueued      Status = "Queued"
	StatusDownloading Status = "Downloading"
	StatusPaused      Status = "Paused"
	StatusCompleted   Status = "Completed"
	StatusWarning     Status = "Warning"
	StatusFailed      Status = "Failed"
)

// Statuses lists every known status in display order.
func Statuses() []Status {
	return []Status{
		StatusDelay,
		StatusQueued,
		StatusDownloading,
		StatusPaused,
		StatusCompleted,
		StatusWarning,
		StatusFailed,
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses() {
		if s == known {
			return true
		}
	}
	return false
}

// Protocol is the transport a release is fetched over.
type Protocol string

const (
	ProtocolUnknown Protocol = "unknown"
	ProtocolUsenet  Protocol = "usenet"
	ProtocolTorrent Protocol = "torrent"
)

// Item is one queue entry. Only ID and Status matter to selection logic;
// the rest is payload for rendering.
type Item struct {
	ID             string        `json:"id"`
	Status         Status        `json:"status"`
	Title          string        `json:"title"`
	Link           string        `json:"link"`
	Protocol       Protocol      `json:"protocol"`
	DownloadClient string        `json:"download_client,omitempty"`
	Indexer        string        `json:"indexer,omitempty"`
	Size           int64         `json:"size"`
	SizeLeft       int64         `json:"size_left"`
	TimeLeft       time.Duration `json:"time_left,omitempty"`
	EpisodeID      int           `json:"episode_id,omitempty"`
	Added          time.Time     `json:"added"`
}

// Progress returns the completed fraction in [0,1].
func (i Item) Progress() float64 {
	if i.Size <= 0 {
		return 0
	}
	done := i.Size - i.SizeLeft
	if done <= 0 {
		return 0
	}
	if done >= i.Size {
		return 1
	}
	return float64(done) / float64(i.Size)
}

// IDs returns the ids of items in order.
func IDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// IndexOf returns the position of id in items, or -1.
func IndexOf(items []Item, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Page is one page of the queue as returned by the item source.
type Page struct {
	Items        []Item `json:"items"`
	TotalRecords int    `json:"total_records"`
	Page         int    `json:"page"`
	PageSize     int    `json:"page_size"`
}

// TotalPages returns the number of pages for the page size, at least 1.
func (p Page) TotalPages() int {
	if p.PageSize <= 0 || p.TotalRecords <= 0 {
		return 1
	}
	return (p.TotalRecords + p.PageSize - 1) / p.PageSize
}
