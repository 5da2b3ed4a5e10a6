package cmd

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/droneq/droneq/internal/config"
	"github.com/droneq/droneq/internal/core"
	"github.com/droneq/droneq/internal/utils"
)

func portPath() string {
	return filepath.Join(config.GetRuntimeDir(), "port")
}

// saveActivePort writes the active port for CLI discovery
func saveActivePort(port int) {
	if err := os.MkdirAll(filepath.Dir(portPath()), 0o755); err != nil {
		utils.Debug("Error creating runtime dir: %v", err)
	}
	if err := os.WriteFile(portPath(), []byte(strconv.Itoa(port)), 0o644); err != nil {
		utils.Debug("Error writing port file: %v", err)
	}
	utils.Debug("HTTP server listening on port %d", port)
}

// removeActivePort cleans up the port file on exit
func removeActivePort() {
	if err := os.Remove(portPath()); err != nil && !os.IsNotExist(err) {
		utils.Debug("Error removing port file: %v", err)
	}
}

// readActivePort reads the port from the port file
func readActivePort() int {
	data, err := os.ReadFile(portPath())
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return port
}

// findAvailablePort tries ports starting from 'start' until one is available
func findAvailablePort(start int) (int, net.Listener) {
	for port := start; port < start+100; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			return port, ln
		}
	}
	return 0, nil
}

// listen binds the configured port, or the first free one from DefaultPort
func listen(port int) (int, net.Listener, error) {
	if port > 0 {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			return 0, nil, fmt.Errorf("could not bind to port %d: %w", port, err)
		}
		return port, ln, nil
	}
	port, ln := findAvailablePort(config.DefaultPort)
	if ln == nil {
		return 0, nil, fmt.Errorf("could not find available port")
	}
	return port, ln, nil
}

// daemonAlive reports whether something answers /health on baseURL
func daemonAlive(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// resolveAPIConnection finds the running daemon from the port file. The
// token comes from DRONEQ_TOKEN or the local token file.
func resolveAPIConnection() (baseURL, token string, err error) {
	port := readActivePort()
	if port == 0 {
		return "", "", fmt.Errorf("droneq is not running")
	}
	baseURL = fmt.Sprintf("http://127.0.0.1:%d", port)
	if !daemonAlive(baseURL) {
		return "", "", fmt.Errorf("droneq is not responding on port %d", port)
	}
	token = strings.TrimSpace(os.Getenv("DRONEQ_TOKEN"))
	if token == "" {
		token = ensureAuthToken()
	}
	return baseURL, token, nil
}

// openService connects to the running daemon, or opens the local store
// directly when none is running.
func openService() core.QueueService {
	if baseURL, token, err := resolveAPIConnection(); err == nil {
		utils.Debug("Using daemon at %s", baseURL)
		return core.NewRemoteQueueService(baseURL, token)
	}
	return core.NewLocalQueueService()
}

// resolveItemIDs expands id prefixes of at least 4 characters to full ids.
// Ids without a unique match are passed through unchanged.
func resolveItemIDs(ctx context.Context, svc core.QueueService, partial []string) ([]string, error) {
	var all []string
	for page := 1; ; page++ {
		p, err := svc.List(ctx, page, 100)
		if err != nil {
			return nil, err
		}
		for _, item := range p.Items {
			all = append(all, item.ID)
		}
		if page >= p.TotalPages() || len(p.Items) == 0 {
			break
		}
	}

	out := make([]string, 0, len(partial))
	for _, id := range partial {
		if len(id) < 4 {
			out = append(out, id)
			continue
		}
		var matches []string
		for _, candidate := range all {
			if strings.HasPrefix(candidate, id) {
				matches = append(matches, candidate)
			}
		}
		switch len(matches) {
		case 1:
			out = append(out, matches[0])
		case 0:
			out = append(out, id)
		default:
			return nil, fmt.Errorf("ambiguous ID prefix '%s' matches %d items", id, len(matches))
		}
	}
	return out, nil
}

// readLinksFromFile reads links from a file, one per line
func readLinksFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var links []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			links = append(links, line)
		}
	}
	return links, scanner.Err()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
