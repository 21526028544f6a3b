package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/rmcatalog/internal/client/models"
	"github.com/dmitrijs2005/rmcatalog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/rmcatalog/internal/dbx"
	"github.com/dmitrijs2005/rmcatalog/internal/logging"
)

const (
	// StorageKey holds the JSON array of local characters.
	StorageKey = "rick-morty-local-characters"
	// CounterKey holds the last issued local id as decimal text.
	CounterKey = "rick-morty-character-counter"

	// MinLocalID is the id floor; remote ids stay below it, so the first
	// local character gets MinLocalID+1.
	MinLocalID = 10000

	createdLayout = "2006-01-02T15:04:05.000Z07:00"
)

// ErrSaveFailed is returned when local storage rejects a write.
// Its message is meant to be shown to the user as is.
var ErrSaveFailed = errors.New("could not save the character, check that storage space is available")

// DB is what the service needs from *sql.DB.
type DB interface {
	dbx.DBTX
	dbx.TxBeginner
}

// LocalCharacterService manages characters created on this machine.
//
// Reads never fail: absent or corrupt storage yields an empty set and a
// logged warning. Writes return ErrSaveFailed wrapping the cause, including
// when the current set cannot be read first.
type LocalCharacterService interface {
	List(ctx context.Context) []models.Character
	Create(ctx context.Context, form models.CharacterForm) (*models.Character, error)
	// Update returns (nil, nil) when no local character has this id.
	Update(ctx context.Context, id int, form models.CharacterForm) (*models.Character, error)
	// Delete reports whether a character was removed.
	Delete(ctx context.Context, id int) (bool, error)
	Exists(ctx context.Context, id int) bool
	// GetByID returns nil when no local character has this id.
	GetByID(ctx context.Context, id int) *models.Character
	// Clear removes both the data and the id counter.
	Clear(ctx context.Context) error
	Count(ctx context.Context) int
	// Export returns the local characters as indented JSON.
	Export(ctx context.Context) ([]byte, error)
}

type localCharacterService struct {
	db  DB
	log logging.Logger
	now func() time.Time
}

func NewLocalCharacterService(db DB, log logging.Logger) LocalCharacterService {
	if log == nil {
		log = logging.Nop()
	}
	return &localCharacterService{db: db, log: log.With("component", "local-storage"), now: time.Now}
}

func (s *localCharacterService) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (s *localCharacterService) List(ctx context.Context) []models.Character {
	return s.load(ctx, s.repo(s.db))
}

func (s *localCharacterService) load(ctx context.Context, repo metadata.Repository) []models.Character {
	chars, err := s.read(ctx, repo)
	if err != nil {
		s.log.Warn(ctx, "failed to read local characters", "error", err)
		return []models.Character{}
	}
	return chars
}

// read is load for callers that write the result back: a storage error is
// returned instead of degrading to an empty set. Corrupt JSON still reads as
// empty.
func (s *localCharacterService) read(ctx context.Context, repo metadata.Repository) ([]models.Character, error) {
	raw, err := repo.Get(ctx, StorageKey)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []models.Character{}, nil
	}

	var chars []models.Character
	if err := json.Unmarshal(raw, &chars); err != nil {
		s.log.Warn(ctx, "failed to parse local characters", "error", err)
		return []models.Character{}, nil
	}
	if chars == nil {
		chars = []models.Character{}
	}
	return chars, nil
}

// readForWrite wraps read failures as ErrSaveFailed.
func (s *localCharacterService) readForWrite(ctx context.Context, repo metadata.Repository) ([]models.Character, error) {
	chars, err := s.read(ctx, repo)
	if err != nil {
		s.log.Error(ctx, "failed to read local characters before write", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	return chars, nil
}

func (s *localCharacterService) save(ctx context.Context, repo metadata.Repository, chars []models.Character) error {
	raw, err := json.Marshal(chars)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if err := repo.Set(ctx, StorageKey, raw); err != nil {
		s.log.Error(ctx, "failed to save local characters", "error", err)
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	return nil
}

// nextID bumps the stored counter. If the counter cannot be read, parsed or
// written, it falls back to MinLocalID plus the current unix milliseconds.
func (s *localCharacterService) nextID(ctx context.Context, repo metadata.Repository) int {
	counter := MinLocalID

	raw, err := repo.Get(ctx, CounterKey)
	if err == nil && len(raw) > 0 {
		counter, err = strconv.Atoi(strings.TrimSpace(string(raw)))
	}
	if err == nil {
		id := counter + 1
		if err = repo.Set(ctx, CounterKey, []byte(strconv.Itoa(id))); err == nil {
			return id
		}
	}

	s.log.Warn(ctx, "failed to allocate id from counter, using timestamp", "error", err)
	return MinLocalID + int(s.now().UnixMilli())
}

func (s *localCharacterService) Create(ctx context.Context, form models.CharacterForm) (*models.Character, error) {
	var created models.Character

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		chars, err := s.readForWrite(ctx, repo)
		if err != nil {
			return err
		}

		created = models.Character{
			ID:       s.nextID(ctx, repo),
			Name:     form.Name,
			Status:   form.Status,
			Species:  form.Species,
			Type:     form.Type,
			Gender:   form.Gender,
			Origin:   models.Location{Name: "Local Creation"},
			Location: models.Location{Name: "Local Storage"},
			Image:    PlaceholderImage(form.Name),
			Episode:  []string{},
			Created:  s.now().UTC().Format(createdLayout),
		}

		return s.save(ctx, repo, append(chars, created))
	})
	if err != nil {
		if !errors.Is(err, ErrSaveFailed) {
			err = fmt.Errorf("%w: %v", ErrSaveFailed, err)
		}
		return nil, err
	}

	s.log.Info(ctx, "local character created", "id", created.ID, "name", created.Name)
	return &created, nil
}

func (s *localCharacterService) Update(ctx context.Context, id int, form models.CharacterForm) (*models.Character, error) {
	repo := s.repo(s.db)
	chars, err := s.readForWrite(ctx, repo)
	if err != nil {
		return nil, err
	}

	idx := indexOf(chars, id)
	if idx == -1 {
		return nil, nil
	}

	updated := chars[idx]
	updated.Name = form.Name
	updated.Status = form.Status
	updated.Species = form.Species
	updated.Type = form.Type
	updated.Gender = form.Gender
	chars[idx] = updated

	if err := s.save(ctx, repo, chars); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *localCharacterService) Delete(ctx context.Context, id int) (bool, error) {
	repo := s.repo(s.db)
	chars, err := s.readForWrite(ctx, repo)
	if err != nil {
		return false, err
	}

	kept := make([]models.Character, 0, len(chars))
	for _, c := range chars {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(chars) {
		return false, nil
	}

	if err := s.save(ctx, repo, kept); err != nil {
		return false, err
	}
	return true, nil
}

func (s *localCharacterService) Exists(ctx context.Context, id int) bool {
	return indexOf(s.List(ctx), id) != -1
}

func (s *localCharacterService) GetByID(ctx context.Context, id int) *models.Character {
	chars := s.List(ctx)
	if idx := indexOf(chars, id); idx != -1 {
		return &chars[idx]
	}
	return nil
}

func (s *localCharacterService) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Delete(ctx, StorageKey); err != nil {
			return err
		}
		return repo.Delete(ctx, CounterKey)
	})
}

func (s *localCharacterService) Count(ctx context.Context) int {
	return len(s.List(ctx))
}

func (s *localCharacterService) Export(ctx context.Context) ([]byte, error) {
	return json.MarshalIndent(s.List(ctx), "", "  ")
}

func indexOf(chars []models.Character, id int) int {
	for i := range chars {
		if chars[i].ID == id {
			return i
		}
	}
	return -1
}
