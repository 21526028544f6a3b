package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/rmcatalog/internal/client/client"
	"github.com/dmitrijs2005/rmcatalog/internal/client/models"
	"github.com/dmitrijs2005/rmcatalog/internal/client/services"
	"github.com/dmitrijs2005/rmcatalog/internal/client/store"
	"github.com/dmitrijs2005/rmcatalog/internal/common"
	"github.com/dmitrijs2005/rmcatalog/internal/logging"
	"github.com/go-chi/chi/v5"
)

const maxFormBytes = 64 << 10

// Handler serves the catalog over HTTP. Every request works on its own
// store so concurrent clients do not move each other's page cursor.
type Handler struct {
	remote client.Client
	local  services.LocalCharacterService
	log    logging.Logger
}

func NewHandler(remote client.Client, local services.LocalCharacterService, log logging.Logger) *Handler {
	if log == nil {
		log = logging.Nop()
	}
	return &Handler{remote: remote, local: local, log: log.With("component", "httpapi")}
}

func (h *Handler) store() *store.Store {
	return store.New(h.remote, h.local, h.log)
}

// ListResponse is the body of GET /api/characters.
type ListResponse struct {
	Characters []models.Character `json:"characters"`
	Page       int                `json:"page"`
	TotalPages int                `json:"totalPages"`
	HasNext    bool               `json:"hasNext"`
	HasPrev    bool               `json:"hasPrev"`
	LocalCount int                `json:"localCount"`
	Search     string             `json:"search,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// DetailResponse is the body of GET /api/characters/{id}.
type DetailResponse struct {
	Character models.Character `json:"character"`
	Local     bool             `json:"local"`
}

// parseQuery reads search, page and the attribute filters. Status and gender
// must be one of the known values (case-insensitive).
func parseQuery(r *http.Request) (term string, page int, f models.Filters, err error) {
	q := r.URL.Query()

	term = strings.TrimSpace(q.Get("search"))
	page = 1
	if p := q.Get("page"); p != "" {
		page, err = strconv.Atoi(p)
		if err != nil || page < 1 {
			return "", 0, f, errors.New("page must be a positive integer")
		}
	}
	if v := q.Get("status"); v != "" {
		s, ok := models.ParseStatus(v)
		if !ok {
			return "", 0, f, errors.New("unknown status " + strconv.Quote(v))
		}
		f.Status = s
	}
	if v := q.Get("gender"); v != "" {
		g, ok := models.ParseGender(v)
		if !ok {
			return "", 0, f, errors.New("unknown gender " + strconv.Quote(v))
		}
		f.Gender = g
	}
	f.Species = strings.TrimSpace(q.Get("species"))
	return term, page, f, nil
}

func parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		WriteAPIError(w, http.StatusBadRequest, codeMalformedID, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func decodeForm(w http.ResponseWriter, r *http.Request) (models.CharacterForm, bool) {
	var form models.CharacterForm
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&form); err != nil {
		WriteAPIError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body: "+err.Error())
		return form, false
	}

	form = form.Normalize()
	if err := form.Validate(); err != nil {
		writeValidationError(w, err)
		return form, false
	}
	return form, true
}

func (h *Handler) writeStorageError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error(r.Context(), "storage operation failed", "path", r.URL.Path, "error", err)
	if errors.Is(err, services.ErrSaveFailed) {
		WriteAPIError(w, http.StatusInsufficientStorage, codeStorage, services.ErrSaveFailed.Error())
		return
	}
	WriteAPIError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

// ListCharacters handles GET /api/characters.
func (h *Handler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	term, page, filters, err := parseQuery(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	st := h.store()
	st.Goto(term, page)
	if err := st.Load(r.Context(), &filters); err != nil {
		h.log.Warn(r.Context(), "remote page unavailable", "page", page, "search", term, "error", err)
	}

	snap := st.Snapshot()
	writeJSON(w, http.StatusOK, ListResponse{
		Characters: snap.All(),
		Page:       snap.CurrentPage,
		TotalPages: snap.TotalPages,
		HasNext:    snap.HasNextPage(),
		HasPrev:    snap.HasPrevPage(),
		LocalCount: snap.LocalCount(),
		Search:     snap.SearchTerm,
		Error:      snap.Error,
	})
}

// GetCharacter handles GET /api/characters/{id}.
func (h *Handler) GetCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	c, local, err := h.store().Detail(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, DetailResponse{Character: *c, Local: local})
	case client.IsNotFound(err):
		WriteAPIError(w, http.StatusNotFound, codeNotFound, "character "+strconv.Itoa(id)+" not found")
	default:
		h.log.Warn(r.Context(), "failed to fetch character", "id", id, "error", err)
		WriteAPIError(w, http.StatusBadGateway, codeUpstream, "failed to load character")
	}
}

// CreateCharacter handles POST /api/characters.
func (h *Handler) CreateCharacter(w http.ResponseWriter, r *http.Request) {
	form, ok := decodeForm(w, r)
	if !ok {
		return
	}

	c, err := h.store().Create(r.Context(), form)
	if err != nil {
		h.writeStorageError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/characters/"+strconv.Itoa(c.ID))
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCharacter handles PUT /api/characters/{id}. Only local characters
// can be changed.
func (h *Handler) UpdateCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	st := h.store()
	if !st.IsLocal(r.Context(), id) {
		WriteAPIError(w, http.StatusNotFound, codeNotLocal, common.ErrNotLocal.Error())
		return
	}

	form, ok := decodeForm(w, r)
	if !ok {
		return
	}

	c, err := st.Update(r.Context(), id, form)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, c)
	case errors.Is(err, common.ErrNotFound):
		WriteAPIError(w, http.StatusNotFound, codeNotLocal, common.ErrNotLocal.Error())
	default:
		h.writeStorageError(w, r, err)
	}
}

// DeleteCharacter handles DELETE /api/characters/{id}.
func (h *Handler) DeleteCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	deleted, err := h.store().Delete(r.Context(), id)
	switch {
	case err != nil:
		h.writeStorageError(w, r, err)
	case !deleted:
		WriteAPIError(w, http.StatusNotFound, codeNotLocal, common.ErrNotLocal.Error())
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// Stats handles GET /api/stats. The remote share covers the page selected by
// the same query parameters as ListCharacters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	term, page, filters, err := parseQuery(r)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	st := h.store()
	st.Goto(term, page)
	if err := st.Load(r.Context(), &filters); err != nil {
		h.log.Warn(r.Context(), "stats without remote page", "error", err)
	}
	writeJSON(w, http.StatusOK, st.Stats())
}

// ExportLocal handles GET /api/local/export.
func (h *Handler) ExportLocal(w http.ResponseWriter, r *http.Request) {
	data, err := h.local.Export(r.Context())
	if err != nil {
		h.writeStorageError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="local-characters.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ClearLocal handles DELETE /api/local.
func (h *Handler) ClearLocal(w http.ResponseWriter, r *http.Request) {
	if err := h.store().ClearLocalData(r.Context()); err != nil {
		h.writeStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
