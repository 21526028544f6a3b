package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/dmitrijs2005/rmcatalog/internal/client/client"
	"github.com/dmitrijs2005/rmcatalog/internal/client/models"
	"github.com/dmitrijs2005/rmcatalog/internal/client/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote serves a fixed catalog. Searching for "none" yields a 404 like
// the real API does for searches without matches.
type fakeRemote struct {
	chars   []models.Character
	pages   int
	listErr error
	seen    []models.Filters
}

func (f *fakeRemote) List(_ context.Context, filters *models.Filters) (*models.Page, error) {
	f.seen = append(f.seen, *filters)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if filters.Name == "none" {
		return nil, &client.StatusError{URL: "/character", StatusCode: http.StatusNotFound}
	}
	return &models.Page{Info: models.PageInfo{Count: len(f.chars), Pages: f.pages}, Results: f.chars}, nil
}

func (f *fakeRemote) GetByID(_ context.Context, id int) (*models.Character, error) {
	for _, c := range f.chars {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, &client.StatusError{URL: "/character", StatusCode: http.StatusNotFound}
}

type env struct {
	remote *fakeRemote
	local  services.LocalCharacterService
	srv    *httptest.Server
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	remote := &fakeRemote{
		pages: 3,
		chars: []models.Character{
			{ID: 1, Name: "Rick Sanchez", Status: models.StatusAlive, Species: "Human", Gender: models.GenderMale},
			{ID: 2, Name: "Morty Smith", Status: models.StatusAlive, Species: "Human", Gender: models.GenderMale},
			{ID: 8, Name: "Adjudicator Rick", Status: models.StatusDead, Species: "Human", Gender: models.GenderMale},
		},
	}
	local := services.NewLocalCharacterService(db, nil)
	h := NewHandler(remote, local, nil)

	srv := httptest.NewServer(NewRouter(h, []string{"http://localhost:4200"}, nil))
	t.Cleanup(srv.Close)
	return &env{remote: remote, local: local, srv: srv}
}

func (e *env) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *env) createLocal(t *testing.T, name string) models.Character {
	t.Helper()
	c, err := e.local.Create(context.Background(), models.CharacterForm{Name: name, Status: models.StatusDead, Species: "Alien", Gender: models.GenderFemale})
	require.NoError(t, err)
	return *c
}

const validForm = `{"name":"Space Beth","status":"Alive","species":"Human","gender":"Female","type":"Clone"}`

func TestListCharacters(t *testing.T) {
	e := newEnv(t)
	mine := e.createLocal(t, "Unity")

	resp := e.do(t, http.MethodGet, "/api/characters?page=2&status=alive&gender=Male&species=Human", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	body := decode[ListResponse](t, resp)
	require.Len(t, body.Characters, 4)
	assert.Equal(t, mine.ID, body.Characters[0].ID, "local characters first")
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 3, body.TotalPages)
	assert.True(t, body.HasNext)
	assert.True(t, body.HasPrev)
	assert.Equal(t, 1, body.LocalCount)
	assert.Empty(t, body.Error)

	assert.Equal(t, models.Filters{Status: models.StatusAlive, Gender: models.GenderMale, Species: "Human", Page: 2}, e.remote.seen[0])
}

func TestListCharacters_SearchWithoutMatches(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodGet, "/api/characters?search=none", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[ListResponse](t, resp)
	assert.Empty(t, body.Characters)
	assert.Equal(t, 0, body.TotalPages)
	assert.Equal(t, "none", body.Search)
	assert.Empty(t, body.Error)
}

func TestListCharacters_RemoteFailureKeepsLocal(t *testing.T) {
	e := newEnv(t)
	e.createLocal(t, "Tammy")
	e.remote.listErr = client.ErrUnavailable

	resp := e.do(t, http.MethodGet, "/api/characters", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[ListResponse](t, resp)
	require.Len(t, body.Characters, 1)
	assert.Equal(t, "Tammy", body.Characters[0].Name)
	assert.Equal(t, "failed to load characters", body.Error)
}

func TestListCharacters_BadQuery(t *testing.T) {
	e := newEnv(t)

	for _, q := range []string{"page=0", "page=abc", "status=zombie", "gender=robot"} {
		t.Run(q, func(t *testing.T) {
			resp := e.do(t, http.MethodGet, "/api/characters?"+q, "")
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decode[APIErrorResponse](t, resp)
			require.Len(t, body.Errors, 1)
			assert.Equal(t, codeBadRequest, body.Errors[0].Code)
			assert.Equal(t, "400", body.Errors[0].Status)
		})
	}
}

func TestGetCharacter(t *testing.T) {
	e := newEnv(t)
	mine := e.createLocal(t, "Mr. Nimbus")

	t.Run("local", func(t *testing.T) {
		resp := e.do(t, http.MethodGet, "/api/characters/"+strconv.Itoa(mine.ID), "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[DetailResponse](t, resp)
		assert.True(t, body.Local)
		assert.Equal(t, "Mr. Nimbus", body.Character.Name)
	})

	t.Run("remote is fetched", func(t *testing.T) {
		resp := e.do(t, http.MethodGet, "/api/characters/8", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[DetailResponse](t, resp)
		assert.False(t, body.Local)
		assert.Equal(t, "Adjudicator Rick", body.Character.Name)
	})

	t.Run("not found", func(t *testing.T) {
		resp := e.do(t, http.MethodGet, "/api/characters/999", "")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, codeNotFound, decode[APIErrorResponse](t, resp).Errors[0].Code)
	})

	t.Run("bad id", func(t *testing.T) {
		resp := e.do(t, http.MethodGet, "/api/characters/rick", "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, codeMalformedID, decode[APIErrorResponse](t, resp).Errors[0].Code)
	})
}

func TestCreateCharacter(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodPost, "/api/characters", validForm)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/api/characters/10001", resp.Header.Get("Location"))

	c := decode[models.Character](t, resp)
	assert.Equal(t, services.MinLocalID+1, c.ID)
	assert.Equal(t, "Space Beth", c.Name)
	assert.Equal(t, "Clone", c.Type)
	assert.True(t, e.local.Exists(context.Background(), c.ID))
}

func TestCreateCharacter_Invalid(t *testing.T) {
	e := newEnv(t)

	t.Run("validation", func(t *testing.T) {
		resp := e.do(t, http.MethodPost, "/api/characters", `{"name":" R ","status":"Zombie","species":"Human","gender":"Male"}`)
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		body := decode[APIErrorResponse](t, resp)
		require.Len(t, body.Errors, 2)
		assert.Equal(t, codeValidation, body.Errors[0].Code)
		assert.Equal(t, "422", body.Errors[0].Status)
		assert.Equal(t, "name must be at least 2 characters", body.Errors[0].Detail)
		assert.True(t, strings.HasPrefix(body.Errors[1].Detail, "status "))
	})

	t.Run("malformed json", func(t *testing.T) {
		resp := e.do(t, http.MethodPost, "/api/characters", `{"name":`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown field", func(t *testing.T) {
		resp := e.do(t, http.MethodPost, "/api/characters", `{"name":"Rick","id":5}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	assert.Equal(t, 0, e.local.Count(context.Background()))
}

func TestUpdateCharacter(t *testing.T) {
	e := newEnv(t)
	mine := e.createLocal(t, "Revolio")

	resp := e.do(t, http.MethodPut, "/api/characters/"+strconv.Itoa(mine.ID), `{"name":"Gearhead","status":"Dead","species":"Gear","gender":"Male"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c := decode[models.Character](t, resp)
	assert.Equal(t, "Gearhead", c.Name)
	assert.Equal(t, mine.Created, c.Created)

	resp = e.do(t, http.MethodPut, "/api/characters/1", validForm)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode[APIErrorResponse](t, resp)
	assert.Equal(t, codeNotLocal, body.Errors[0].Code)

	resp = e.do(t, http.MethodPut, "/api/characters/"+strconv.Itoa(mine.ID), `{"name":"","status":"Dead","species":"Gear","gender":"Male"}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDeleteCharacter(t *testing.T) {
	e := newEnv(t)
	mine := e.createLocal(t, "Scary Terry")

	resp := e.do(t, http.MethodDelete, "/api/characters/1", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = e.do(t, http.MethodDelete, "/api/characters/"+strconv.Itoa(mine.ID), "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.False(t, e.local.Exists(context.Background(), mine.ID))
}

func TestStats(t *testing.T) {
	e := newEnv(t)
	e.createLocal(t, "Dead Local")

	resp := e.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Equal(t, map[string]int{
		"totalLocal":   1,
		"totalFromAPI": 3,
		"totalAll":     4,
		"aliveCount":   2,
		"deadCount":    2,
		"unknownCount": 0,
	}, raw)
}

func TestExportAndClearLocal(t *testing.T) {
	e := newEnv(t)
	e.createLocal(t, "Exported")

	resp := e.do(t, http.MethodGet, "/api/local/export", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "local-characters.json")
	chars := decode[[]models.Character](t, resp)
	require.Len(t, chars, 1)
	assert.Equal(t, "Exported", chars[0].Name)

	resp = e.do(t, http.MethodDelete, "/api/local", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, e.local.Count(context.Background()))
}

func TestRouter_NotFoundAndCORS(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodGet, "/api/episodes", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, codeNotFound, decode[APIErrorResponse](t, resp).Errors[0].Code)

	req, err := http.NewRequest(http.MethodOptions, e.srv.URL+"/api/characters", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:4200")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	pre, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer pre.Body.Close()
	assert.Equal(t, "http://localhost:4200", pre.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.example")
	pre2, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer pre2.Body.Close()
	assert.Empty(t, pre2.Header.Get("Access-Control-Allow-Origin"))
}
