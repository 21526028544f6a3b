package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/rmcatalog/internal/client/client"
	"github.com/dmitrijs2005/rmcatalog/internal/client/models"
	"github.com/dmitrijs2005/rmcatalog/internal/client/services"
	"github.com/dmitrijs2005/rmcatalog/internal/common"
	"github.com/dmitrijs2005/rmcatalog/internal/logging"
)

// LoadFailedMessage is the error shown when a remote page cannot be loaded.
const LoadFailedMessage = "failed to load characters"

// ErrSuperseded is returned by Load when a newer Load started before this
// one finished. Its response is dropped.
var ErrSuperseded = errors.New("load superseded by a newer request")

// State is a point-in-time copy of the store.
type State struct {
	Loading     bool
	Error       string
	CurrentPage int
	TotalPages  int
	SearchTerm  string
	Remote      []models.Character
	Local       []models.Character
}

// All returns local characters first, then the remote page.
func (s State) All() []models.Character {
	all := make([]models.Character, 0, len(s.Local)+len(s.Remote))
	all = append(all, s.Local...)
	return append(all, s.Remote...)
}

func (s State) HasCharacters() bool { return len(s.Local)+len(s.Remote) > 0 }
func (s State) HasNextPage() bool   { return s.CurrentPage < s.TotalPages }
func (s State) HasPrevPage() bool   { return s.CurrentPage > 1 }
func (s State) LocalCount() int     { return len(s.Local) }

// Stats counts statuses across the local set and the loaded remote page.
func (s State) Stats() models.Stats {
	st := models.Stats{
		TotalLocal:   len(s.Local),
		TotalFromAPI: len(s.Remote),
		TotalAll:     len(s.Local) + len(s.Remote),
	}
	for _, c := range s.All() {
		switch c.Status {
		case models.StatusAlive:
			st.Alive++
		case models.StatusDead:
			st.Dead++
		case models.StatusUnknown:
			st.Unknown++
		}
	}
	return st
}

// Store merges the remote catalog with local characters.
// It is safe for concurrent use.
type Store struct {
	remote client.Client
	local  services.LocalCharacterService
	log    logging.Logger

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
}

func New(remote client.Client, local services.LocalCharacterService, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{
		remote: remote,
		local:  local,
		log:    log.With("component", "store"),
		state: State{
			CurrentPage: 1,
			Remote:      []models.Character{},
			Local:       []models.Character{},
		},
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Remote = append([]models.Character(nil), s.state.Remote...)
	st.Local = append([]models.Character(nil), s.state.Local...)
	return st
}

func (s *Store) All() []models.Character { return s.Snapshot().All() }
func (s *Store) HasCharacters() bool     { return s.Snapshot().HasCharacters() }
func (s *Store) HasNextPage() bool       { return s.Snapshot().HasNextPage() }
func (s *Store) HasPrevPage() bool       { return s.Snapshot().HasPrevPage() }
func (s *Store) LocalCount() int         { return s.Snapshot().LocalCount() }
func (s *Store) Stats() models.Stats     { return s.Snapshot().Stats() }

// Load refreshes the local characters and fetches the remote page selected by
// filters, the current page and the active search term (which overrides
// filters.Name).
//
// A Load cancels whichever Load was in flight before it. Responses of a
// superseded Load are never applied; such a call returns ErrSuperseded.
func (s *Store) Load(ctx context.Context, filters *models.Filters) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state.Loading = true
	s.state.Error = ""
	term := s.state.SearchTerm
	page := s.state.CurrentPage
	s.mu.Unlock()
	defer cancel()

	s.LoadLocal(ctx)

	var f models.Filters
	if filters != nil {
		f = *filters
	}
	f.Page = page
	if term != "" {
		f.Name = term
	}

	res, err := s.remote.List(loadCtx, &f)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.log.Debug(ctx, "dropping superseded load", "generation", gen, "current", s.gen)
		return ErrSuperseded
	}
	s.cancel = nil
	s.state.Loading = false

	switch {
	case err == nil:
		s.state.Remote = res.Results
		if s.state.Remote == nil {
			s.state.Remote = []models.Character{}
		}
		s.state.TotalPages = res.Info.Pages
		return nil

	case term != "" && errors.Is(err, common.ErrNotFound):
		// the API answers 404 to a search with no matches
		s.state.Remote = []models.Character{}
		s.state.TotalPages = 0
		s.state.Error = ""
		return nil

	default:
		s.log.Warn(ctx, "failed to load characters", "page", page, "search", term, "error", err)
		s.state.Error = LoadFailedMessage
		s.state.Remote = []models.Character{}
		return err
	}
}

// Search makes term the active search, goes back to page 1 and loads.
func (s *Store) Search(ctx context.Context, term string) error {
	s.mu.Lock()
	s.state.SearchTerm = term
	s.state.CurrentPage = 1
	s.state.Error = ""
	s.mu.Unlock()

	return s.Load(ctx, &models.Filters{Name: term})
}

// ClearSearch drops the active search, goes back to page 1 and loads.
func (s *Store) ClearSearch(ctx context.Context) error {
	s.mu.Lock()
	s.state.SearchTerm = ""
	s.state.CurrentPage = 1
	s.mu.Unlock()

	return s.Load(ctx, nil)
}

// Goto sets the search term and page cursor without loading. Pages below 1
// are treated as 1.
func (s *Store) Goto(term string, page int) {
	if page < 1 {
		page = 1
	}

	s.mu.Lock()
	s.state.SearchTerm = term
	s.state.CurrentPage = page
	s.mu.Unlock()
}

// NextPage advances the page cursor if there is a next page. It does not load.
func (s *Store) NextPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.HasNextPage() {
		return false
	}
	s.state.CurrentPage++
	return true
}

// PrevPage moves the page cursor back if there is a previous page. It does not load.
func (s *Store) PrevPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.HasPrevPage() {
		return false
	}
	s.state.CurrentPage--
	return true
}

// LoadLocal re-reads the local characters from storage.
func (s *Store) LoadLocal(ctx context.Context) {
	chars := s.local.List(ctx)

	s.mu.Lock()
	s.state.Local = chars
	s.mu.Unlock()
}

func (s *Store) Create(ctx context.Context, form models.CharacterForm) (*models.Character, error) {
	c, err := s.local.Create(ctx, form)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.state.Local = append([]models.Character{*c}, s.state.Local...)
	s.mu.Unlock()

	return c, nil
}

// Update edits a local character. It wraps common.ErrNotFound when id is not
// a local character.
func (s *Store) Update(ctx context.Context, id int, form models.CharacterForm) (*models.Character, error) {
	c, err := s.local.Update(ctx, id, form)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("local character %d: %w", id, common.ErrNotFound)
	}

	s.mu.Lock()
	for i := range s.state.Local {
		if s.state.Local[i].ID == id {
			s.state.Local[i] = *c
		}
	}
	s.mu.Unlock()

	return c, nil
}

// Delete removes a local character and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id int) (bool, error) {
	ok, err := s.local.Delete(ctx, id)
	if err != nil || !ok {
		return false, err
	}

	s.mu.Lock()
	kept := make([]models.Character, 0, len(s.state.Local))
	for _, c := range s.state.Local {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.state.Local = kept
	s.mu.Unlock()

	return true, nil
}

// GetByID looks in local storage, then in the loaded remote page. It never
// fetches; use Detail for that.
func (s *Store) GetByID(ctx context.Context, id int) *models.Character {
	if c := s.local.GetByID(ctx, id); c != nil {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.state.Remote {
		if c.ID == id {
			return &c
		}
	}
	return nil
}

// Detail returns the local character with this id, or fetches it from the
// remote API. The bool reports whether the character is local.
func (s *Store) Detail(ctx context.Context, id int) (*models.Character, bool, error) {
	if c := s.local.GetByID(ctx, id); c != nil {
		return c, true, nil
	}

	c, err := s.remote.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return c, false, nil
}

func (s *Store) IsLocal(ctx context.Context, id int) bool {
	return s.local.Exists(ctx, id)
}

// FilterLocal returns the local characters whose name contains term,
// ignoring case. An empty term returns all of them.
func (s *Store) FilterLocal(term string) []models.Character {
	local := s.Snapshot().Local
	if term == "" {
		return local
	}

	term = strings.ToLower(term)
	out := make([]models.Character, 0, len(local))
	for _, c := range local {
		if strings.Contains(strings.ToLower(c.Name), term) {
			out = append(out, c)
		}
	}
	return out
}

// ClearLocalData wipes local storage and the in-memory local list.
func (s *Store) ClearLocalData(ctx context.Context) error {
	if err := s.local.Clear(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.state.Local = []models.Character{}
	s.mu.Unlock()
	return nil
}
