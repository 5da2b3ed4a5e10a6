package cmd

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/droneq/droneq/internal/config"
	"github.com/droneq/droneq/internal/core"
	"github.com/droneq/droneq/internal/events"
	"github.com/droneq/droneq/internal/state"
	"github.com/droneq/droneq/internal/utils"
)

// maxBodyBytes bounds request bodies on the protected endpoints.
const maxBodyBytes = 1 << 20

// APIHandler handles HTTP API requests
type APIHandler struct {
	service  core.QueueService
	port     int
	pageSize int
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(service core.QueueService, port, pageSize int) *APIHandler {
	if pageSize <= 0 {
		pageSize = config.DefaultSettings().Queue.PageSize
	}
	return &APIHandler{service: service, port: port, pageSize: pageSize}
}

// Health check endpoint (Public)
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"port":   h.port,
	})
}

// Events endpoint (Protected)
func (h *APIHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	stream, cleanup, err := h.service.StreamEvents(r.Context())
	if err != nil {
		http.Error(w, "Failed to subscribe to events", http.StatusInternalServerError)
		return
	}
	defer cleanup()

	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	done := r.Context().Done()
	for {
		select {
		case <-done:
			return
		case msg, ok := <-stream:
			if !ok {
				return
			}
			name := events.Name(msg)
			if name == "" {
				continue
			}
			data, err := json.Marshal(msg)
			if err != nil {
				utils.Debug("Error marshaling event: %v", err)
				continue
			}

			// SSE Format:
			// event: <type>
			// data: <json>
			// \n
			_, _ = fmt.Fprintf(w, "event: %s\n", name)
			_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// Queue lists one page of the queue (Protected)
func (h *APIHandler) Queue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", h.pageSize)

	out, err := h.service.List(r.Context(), page, pageSize)
	if err != nil {
		http.Error(w, "Failed to list queue: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Add queues a release (Protected)
func (h *APIHandler) Add(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req core.AddRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Link) == "" {
		http.Error(w, "link is required", http.StatusBadRequest)
		return
	}

	item, err := h.service.Add(r.Context(), req.Link, req.Title)
	switch {
	case errors.Is(err, state.ErrBlacklisted):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		http.Error(w, "Failed to add release: "+err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Grab pushes delayed items to their client (Protected)
func (h *APIHandler) Grab(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req core.IDsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	n, err := h.service.Grab(r.Context(), req.IDs)
	if err != nil {
		http.Error(w, "Failed to grab: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, core.CountResponse{Count: n})
}

// Remove deletes items from the queue (Protected)
func (h *APIHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req core.IDsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	n, err := h.service.Remove(r.Context(), req.IDs, req.Blacklist)
	if err != nil {
		http.Error(w, "Failed to remove: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, core.CountResponse{Count: n})
}

// Status sets the status of one item (Protected)
func (h *APIHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req core.StatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" || !req.Status.Valid() {
		http.Error(w, "id and a known status are required", http.StatusBadRequest)
		return
	}

	err := h.service.SetStatus(r.Context(), req.ID, req.Status)
	switch {
	case errors.Is(err, state.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, "Failed to set status: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	defer func() {
		if err := r.Body.Close(); err != nil {
			utils.Debug("Error closing body: %v", err)
		}
	}()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(out); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.Debug("Failed to encode response: %v", err)
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// newServerHandler wires the API routes behind bearer auth.
func newServerHandler(token string, handler *APIHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", handler.Health)
	mux.HandleFunc("/events", handler.Events)
	mux.HandleFunc("/queue", handler.Queue)
	mux.HandleFunc("/queue/add", handler.Add)
	mux.HandleFunc("/queue/grab", handler.Grab)
	mux.HandleFunc("/queue/remove", handler.Remove)
	mux.HandleFunc("/queue/status", handler.Status)
	return authMiddleware(token, mux)
}

// startHTTPServer serves the API on an existing listener until it is closed
func startHTTPServer(ln net.Listener, port int, service core.QueueService, pageSize int) *http.Server {
	server := &http.Server{Handler: newServerHandler(ensureAuthToken(), NewAPIHandler(service, port, pageSize))}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Debug("HTTP server error: %v", err)
		}
	}()
	return server
}

func authMiddleware(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Allow health check without auth
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			providedToken := strings.TrimPrefix(authHeader, "Bearer ")
			if len(providedToken) == len(token) && subtle.ConstantTimeCompare([]byte(providedToken), []byte(token)) == 1 {
				next.ServeHTTP(w, r)
				return
			}
		}

		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

func tokenPath() string {
	return filepath.Join(config.GetRuntimeDir(), "token")
}

// ensureAuthToken returns the API token, creating one on first use
func ensureAuthToken() string {
	data, err := os.ReadFile(tokenPath())
	if err == nil {
		if token := strings.TrimSpace(string(data)); token != "" {
			return token
		}
	}

	token := uuid.New().String()
	if err := os.MkdirAll(filepath.Dir(tokenPath()), 0o755); err != nil {
		utils.Debug("Failed to create runtime dir: %v", err)
	}
	if err := os.WriteFile(tokenPath(), []byte(token), 0o600); err != nil {
		utils.Debug("Failed to write token file: %v", err)
	}
	return token
}
