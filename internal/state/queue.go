package state

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/droneq/droneq/internal/queue"
	"github.com/droneq/droneq/internal/release"
	"github.com/droneq/droneq/internal/utils"
)

var (
	ErrNotFound      = errors.New("queue item not found")
	ErrBlacklisted   = errors.New("release is blacklisted")
	ErrServiceExists = errors.New("service already exists")
)

const itemColumns = `id, status, title, link, protocol, download_client, indexer, size, size_left, time_left, episode_id, added_at`

// AddItem inserts a queue item. Missing id, status, protocol, title and
// added time are filled in. Blacklisted links are rejected.
func AddItem(item queue.Item) (queue.Item, error) {
	link := release.Normalize(item.Link)
	if link == "" {
		return queue.Item{}, fmt.Errorf("queue item needs a link")
	}
	item.Link = link
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Status == "" {
		item.Status = queue.StatusDelay
	}
	if !item.Status.Valid() {
		return queue.Item{}, fmt.Errorf("unknown status %q", item.Status)
	}
	kind := release.KindOf(link)
	switch kind {
	case release.KindUnknown:
		return queue.Item{}, fmt.Errorf("unsupported link %q", link)
	case release.KindMagnet:
		if _, err := release.ParseMagnet(link); err != nil {
			return queue.Item{}, fmt.Errorf("invalid magnet: %w", err)
		}
	}
	if item.Protocol == "" {
		item.Protocol = release.ProtocolOf(kind)
	}
	if item.Title == "" {
		item.Title = release.Title(link)
	}
	if item.Added.IsZero() {
		item.Added = time.Now()
	}
	key := release.CanonicalKey(link)

	err := withTx(func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRow("SELECT COUNT(*) FROM blacklist WHERE link_key = ?", key).Scan(&n); err != nil {
			return fmt.Errorf("failed to check blacklist: %w", err)
		}
		if n > 0 {
			return ErrBlacklisted
		}
		_, err := tx.Exec(`
			INSERT INTO queue_items (`+itemColumns+`, link_key)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, string(item.Status), item.Title, item.Link, string(item.Protocol),
			item.DownloadClient, item.Indexer, item.Size, item.SizeLeft,
			int64(item.TimeLeft/time.Millisecond), item.EpisodeID, item.Added.UnixMilli(), key,
		)
		if err != nil {
			return fmt.Errorf("failed to insert queue item: %w", err)
		}
		return nil
	})
	if err != nil {
		return queue.Item{}, err
	}
	utils.Debug("state: added %s (%s)", item.ID, item.Title)
	return item, nil
}

// ListItems returns one page of the queue ordered by added time. Pages
// start at 1.
func ListItems(page, pageSize int) (queue.Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	d, err := GetDB()
	if err != nil {
		return queue.Page{}, err
	}

	out := queue.Page{Page: page, PageSize: pageSize, Items: []queue.Item{}}
	if err := d.QueryRow("SELECT COUNT(*) FROM queue_items").Scan(&out.TotalRecords); err != nil {
		return queue.Page{}, fmt.Errorf("failed to count queue items: %w", err)
	}

	rows, err := d.Query(
		"SELECT "+itemColumns+" FROM queue_items ORDER BY added_at, id LIMIT ? OFFSET ?",
		pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return queue.Page{}, fmt.Errorf("failed to query queue items: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			utils.Debug("Error closing rows: %v", err)
		}
	}()

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return queue.Page{}, err
		}
		out.Items = append(out.Items, item)
	}
	return out, rows.Err()
}

// GetItem returns a single queue item
func GetItem(id string) (queue.Item, error) {
	d, err := GetDB()
	if err != nil {
		return queue.Item{}, err
	}
	item, err := scanItem(d.QueryRow("SELECT "+itemColumns+" FROM queue_items WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return queue.Item{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return item, err
}

// UpdateStatus sets the status of one item.
func UpdateStatus(id string, status queue.Status) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	d, err := GetDB()
	if err != nil {
		return err
	}
	res, err := d.Exec("UPDATE queue_items SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

// GrabItems releases delayed items to their download client by moving them
// to Queued. Items in any other status are left alone. Returns the number
// of items grabbed.
func GrabItems(ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var grabbed int64
	err := withTx(func(tx *sql.Tx) error {
		query := "UPDATE queue_items SET status = ? WHERE status = ? AND id IN (" + placeholders(len(ids)) + ")"
		args := append([]any{string(queue.StatusQueued), string(queue.StatusDelay)}, stringArgs(ids)...)
		res, err := tx.Exec(query, args...)
		if err != nil {
			return fmt.Errorf("failed to grab items: %w", err)
		}
		grabbed, _ = res.RowsAffected()
		return nil
	})
	return int(grabbed), err
}

// RemoveItems deletes items from the queue. With blacklist set, each
// removed release is recorded so it cannot be queued again.
func RemoveItems(ids []string, blacklist bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var removed int64
	err := withTx(func(tx *sql.Tx) error {
		if blacklist {
			_, err := tx.Exec(`
				INSERT OR IGNORE INTO blacklist (link_key, link, title, blacklisted_at)
				SELECT link_key, link, title, ? FROM queue_items WHERE id IN (`+placeholders(len(ids))+`)`,
				append([]any{time.Now().UnixMilli()}, stringArgs(ids)...)...,
			)
			if err != nil {
				return fmt.Errorf("failed to blacklist items: %w", err)
			}
		}
		res, err := tx.Exec("DELETE FROM queue_items WHERE id IN ("+placeholders(len(ids))+")", stringArgs(ids)...)
		if err != nil {
			return fmt.Errorf("failed to remove items: %w", err)
		}
		removed, _ = res.RowsAffected()
		return nil
	})
	return int(removed), err
}

// IsBlacklisted reports whether link was blacklisted on removal.
func IsBlacklisted(link string) (bool, error) {
	d, err := GetDB()
	if err != nil {
		return false, err
	}
	var n int
	if err := d.QueryRow("SELECT COUNT(*) FROM blacklist WHERE link_key = ?", release.CanonicalKey(link)).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(r rowScanner) (queue.Item, error) {
	var (
		item                              queue.Item
		status, protocol                  string
		title, client, indexer            sql.NullString
		size, sizeLeft, timeLeft, episode sql.NullInt64
		addedAt                           sql.NullInt64
	)
	err := r.Scan(&item.ID, &status, &title, &item.Link, &protocol, &client, &indexer,
		&size, &sizeLeft, &timeLeft, &episode, &addedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return queue.Item{}, err
		}
		return queue.Item{}, fmt.Errorf("failed to scan queue item: %w", err)
	}
	item.Status = queue.Status(status)
	item.Protocol = queue.Protocol(protocol)
	item.Title = title.String
	item.DownloadClient = client.String
	item.Indexer = indexer.String
	item.Size = size.Int64
	item.SizeLeft = sizeLeft.Int64
	item.TimeLeft = time.Duration(timeLeft.Int64) * time.Millisecond
	item.EpisodeID = int(episode.Int64)
	if addedAt.Valid {
		item.Added = time.UnixMilli(addedAt.Int64)
	}
	return item, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
