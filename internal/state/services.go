package state

import (
	"fmt"
	"time"
)

// RegisterService records a host service install. A name that is already
// registered returns ErrServiceExists.
func RegisterService(name string) error {
	d, err := GetDB()
	if err != nil {
		return err
	}
	res, err := d.Exec("INSERT OR IGNORE INTO services (name, installed_at) VALUES (?, ?)", name, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", name, ErrServiceExists)
	}
	return nil
}

// ListServices returns registered service names in install order.
func ListServices() ([]string, error) {
	d, err := GetDB()
	if err != nil {
		return nil, err
	}
	rows, err := d.Query("SELECT name FROM services ORDER BY installed_at, name")
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
