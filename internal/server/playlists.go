package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/desertthunder/rotor/internal/formatter"
	"github.com/desertthunder/rotor/internal/models"
	"github.com/desertthunder/rotor/internal/shared"
)

// PlaylistSource is the read side of the playlist store the API serves.
// Implemented by repositories.PlaylistRepository.
type PlaylistSource interface {
	List(criteria map[string]any) ([]*models.PersistedPlaylist, error)
	Get(id string) (*models.PersistedPlaylist, error)
	GetLatestByName(name string) (*models.PersistedPlaylist, error)
}

// CatalogSource loads catalog tracks for slot attribution.
// Implemented by repositories.TrackRepository.
type CatalogSource interface {
	Snapshot() ([]models.Track, error)
}

// PlaylistHandler serves generated playlists as JSON.
type PlaylistHandler struct {
	playlists PlaylistSource
	catalog   CatalogSource
}

// NewPlaylistHandler creates a handler over the given stores.
func NewPlaylistHandler(playlists PlaylistSource, catalog CatalogSource) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists, catalog: catalog}
}

// Routes implements [Handler].
func (h *PlaylistHandler) Routes() []string {
	return []string{
		"GET /health",
		"GET /playlists",
		"GET /playlists/latest",
		"GET /playlists/{id}",
	}
}

// playlistSummary is one row of the playlist listing.
type playlistSummary struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	SlotCount int             `json:"slot_count"`
	CreatedAt string          `json:"created_at"`
	Stats     models.RunStats `json:"stats"`
}

func (h *PlaylistHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch {
	case req.URL.Path == "/health":
		h.health(w)
	case req.URL.Path == "/playlists":
		h.list(w)
	case req.URL.Path == "/playlists/latest":
		h.latest(w, req)
	default:
		h.get(w, req)
	}
}

func (h *PlaylistHandler) health(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PlaylistHandler) list(w http.ResponseWriter) {
	playlists, err := h.playlists.List(nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	summaries := make([]playlistSummary, 0, len(playlists))
	for _, playlist := range playlists {
		summaries = append(summaries, playlistSummary{
			ID:        playlist.ID(),
			Name:      playlist.Name(),
			SlotCount: playlist.SlotCount(),
			CreatedAt: playlist.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
			Stats:     playlist.Stats(),
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *PlaylistHandler) latest(w http.ResponseWriter, req *http.Request) {
	name := req.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, errors.New("name query parameter is required"))
		return
	}
	playlist, err := h.playlists.GetLatestByName(name)
	h.render(w, playlist, err)
}

func (h *PlaylistHandler) get(w http.ResponseWriter, req *http.Request) {
	playlist, err := h.playlists.Get(req.PathValue("id"))
	h.render(w, playlist, err)
}

// render writes the full playlist document, reusing the formatter's JSON shape.
func (h *PlaylistHandler) render(w http.ResponseWriter, playlist *models.PersistedPlaylist, err error) {
	if err != nil {
		if errors.Is(err, shared.ErrPlaylistNotFound) {
			writeError(w, http.StatusNotFound, err)
		} else {
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	snapshot, err := h.catalog.Snapshot()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	data, err := formatter.ExportToJSON(formatter.NewRunExport(playlist, snapshot))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
