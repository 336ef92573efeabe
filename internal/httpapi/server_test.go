package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/denisok6893-rgb/casa-match/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSearchService struct {
	results     []domain.ScoreResult
	searchErr   error
	suggestions []domain.ProspectSuggestion
	suggestErr  error

	lastQuery      string
	lastAgentID    string
	lastProspectID *int64
	lastListingID  string
}

func (f *fakeSearchService) Search(_ context.Context, query, agentID string, prospectID *int64) ([]domain.ScoreResult, error) {
	f.lastQuery = query
	f.lastAgentID = agentID
	f.lastProspectID = prospectID
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeSearchService) SuggestionsForListing(_ context.Context, listingID, agentID string) ([]domain.ProspectSuggestion, error) {
	f.lastListingID = listingID
	f.lastAgentID = agentID
	if f.suggestErr != nil {
		return nil, f.suggestErr
	}
	return f.suggestions, nil
}

type fakeListingStore struct {
	byID      map[string]domain.Listing
	createErr error
	created   []domain.Listing
	deleted   []string
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{byID: map[string]domain.Listing{}}
}

func (f *fakeListingStore) CreateListing(_ context.Context, l domain.Listing) (domain.Listing, error) {
	if f.createErr != nil {
		return domain.Listing{}, f.createErr
	}
	l.ID = fmt.Sprintf("l-%d", len(f.created)+1)
	f.byID[l.ID] = l
	f.created = append(f.created, l)
	return l, nil
}

func (f *fakeListingStore) GetListing(_ context.Context, id string) (domain.Listing, bool, error) {
	l, ok := f.byID[id]
	return l, ok, nil
}

func (f *fakeListingStore) UpdateListing(_ context.Context, l domain.Listing) error {
	if _, ok := f.byID[l.ID]; !ok {
		return errors.New("missing")
	}
	f.byID[l.ID] = l
	return nil
}

func (f *fakeListingStore) SoftDeleteListing(_ context.Context, id string) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return true, nil
}

func (f *fakeListingStore) ListListings(_ context.Context, agentID string, limit, offset int) ([]domain.Listing, int, error) {
	var out []domain.Listing
	for _, l := range f.byID {
		if l.AgentID == agentID {
			out = append(out, l)
		}
	}
	return out, len(out), nil
}

type fakeProspectStore struct {
	byID   map[int64]domain.Prospect
	nextID int64
}

func newFakeProspectStore() *fakeProspectStore {
	return &fakeProspectStore{byID: map[int64]domain.Prospect{}}
}

func (f *fakeProspectStore) CreateProspect(_ context.Context, p domain.Prospect) (domain.Prospect, error) {
	f.nextID++
	p.ID = f.nextID
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakeProspectStore) GetProspect(_ context.Context, id int64) (domain.Prospect, bool, error) {
	p, ok := f.byID[id]
	return p, ok, nil
}

func (f *fakeProspectStore) UpdateProspect(_ context.Context, p domain.Prospect) error {
	if _, ok := f.byID[p.ID]; !ok {
		return errors.New("missing")
	}
	f.byID[p.ID] = p
	return nil
}

func (f *fakeProspectStore) DeleteProspect(_ context.Context, id int64) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func (f *fakeProspectStore) ListProspects(_ context.Context, agentID string, limit, offset int) ([]domain.Prospect, int, error) {
	var out []domain.Prospect
	for _, p := range f.byID {
		if p.AgentID == agentID {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

type testEnv struct {
	svc       *fakeSearchService
	listings  *fakeListingStore
	prospects *fakeProspectStore
	router    *gin.Engine
}

func newTestEnv() *testEnv {
	env := &testEnv{
		svc:       &fakeSearchService{},
		listings:  newFakeListingStore(),
		prospects: newFakeProspectStore(),
	}
	srv := NewServer(env.svc, env.listings, env.prospects, zap.NewNop())
	env.router = srv.Routes()
	return env
}

func (e *testEnv) do(method, path, agent string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if agent != "" {
		req.Header.Set("X-Agent-ID", agent)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	w := env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMissingAgentHeader(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/search"},
		{http.MethodGet, "/api/listings"},
		{http.MethodGet, "/api/listings/l-1/suggested-prospects"},
		{http.MethodGet, "/api/prospects"},
	} {
		w := env.do(route.method, route.path, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%s %s", route.method, route.path)
	}
}

func TestSearchEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.svc.results = []domain.ScoreResult{
		{Listing: domain.Listing{ID: "l-1"}, Score: 82.5},
	}

	pid := int64(7)
	w := env.do(http.MethodPost, "/api/search", "agent-1", SearchRequest{
		Message:    "three rooms with a garden in Altozano",
		ProspectID: &pid,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "three rooms with a garden in Altozano", env.svc.lastQuery)
	assert.Equal(t, "agent-1", env.svc.lastAgentID)
	require.NotNil(t, env.svc.lastProspectID)
	assert.Equal(t, pid, *env.svc.lastProspectID)

	var resp struct {
		Results []domain.ScoreResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "l-1", resp.Results[0].Listing.ID)
	assert.InDelta(t, 82.5, resp.Results[0].Score, 1e-9)
}

func TestSearchEndpoint_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", domain.ErrValidation, http.StatusUnprocessableEntity},
		{"extraction", domain.ErrExtraction, http.StatusBadGateway},
		{"store", domain.ErrStore, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv()
			env.svc.searchErr = fmt.Errorf("wrapped: %w", tc.err)

			w := env.do(http.MethodPost, "/api/search", "agent-1", SearchRequest{Message: "a house with a view somewhere"})
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestSearchEndpoint_EmptyResultsIsOK(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	w := env.do(http.MethodPost, "/api/search", "agent-1", SearchRequest{Message: "a house with a view somewhere"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"results": []}`, w.Body.String())
}

func TestSuggestedProspectsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.svc.suggestions = []domain.ProspectSuggestion{
		{Prospect: domain.Prospect{ID: 3, Name: "Ana"}, Score: 77.5, LastQuery: "garden house"},
	}

	w := env.do(http.MethodGet, "/api/listings/l-9/suggested-prospects", "agent-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "l-9", env.svc.lastListingID)

	var resp struct {
		Suggestions []domain.ProspectSuggestion `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, "garden house", resp.Suggestions[0].LastQuery)
}

func TestSuggestedProspectsEndpoint_Errors(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	env.svc.suggestErr = fmt.Errorf("%w: listing l-9", domain.ErrNotFound)
	w := env.do(http.MethodGet, "/api/listings/l-9/suggested-prospects", "agent-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	env = newTestEnv()
	env.svc.suggestErr = fmt.Errorf("%w: listing l-9", domain.ErrForbidden)
	w = env.do(http.MethodGet, "/api/listings/l-9/suggested-prospects", "agent-1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func validCreateListing() CreateListingRequest {
	return CreateListingRequest{
		Name:         "Casa Jardin",
		Status:       "available",
		Price:        3_200_000,
		Neighborhood: "Altozano",
		RoomsTotal:   3,
		Garden:       "medium",
	}
}

func TestCreateListing(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.svc.suggestions = []domain.ProspectSuggestion{
		{Prospect: domain.Prospect{ID: 1, Name: "Ana"}, Score: 81},
	}

	w := env.do(http.MethodPost, "/api/listings", "agent-1", validCreateListing())
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Listing            domain.Listing              `json:"listing"`
		SuggestedProspects []domain.ProspectSuggestion `json:"suggested_prospects"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "agent-1", resp.Listing.AgentID)
	assert.Equal(t, "Casa Jardin", resp.Listing.Name)
	require.Len(t, resp.SuggestedProspects, 1)
	assert.Equal(t, resp.Listing.ID, env.svc.lastListingID, "suggestions run against the new listing")
}

func TestCreateListing_SuggestionFailureStillCreates(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.svc.suggestErr = errors.New("scorer down")

	w := env.do(http.MethodPost, "/api/listings", "agent-1", validCreateListing())
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		SuggestedProspects []domain.ProspectSuggestion `json:"suggested_prospects"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.SuggestedProspects)
	assert.Len(t, env.listings.created, 1)
}

func TestCreateListing_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*CreateListingRequest)
	}{
		{"missing name", func(r *CreateListingRequest) { r.Name = "" }},
		{"missing neighborhood", func(r *CreateListingRequest) { r.Neighborhood = "" }},
		{"negative price", func(r *CreateListingRequest) { r.Price = -1 }},
		{"unknown status", func(r *CreateListingRequest) { r.Status = "haunted" }},
		{"unknown garden", func(r *CreateListingRequest) { r.Garden = "enormous" }},
		{"negative rooms", func(r *CreateListingRequest) { r.RoomsTotal = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv()
			req := validCreateListing()
			tc.mutate(&req)

			w := env.do(http.MethodPost, "/api/listings", "agent-1", req)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Empty(t, env.listings.created)
		})
	}
}

func TestListingOwnership(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.listings.byID["l-1"] = domain.Listing{ID: "l-1", AgentID: "agent-1", Name: "Casa"}

	w := env.do(http.MethodGet, "/api/listings/l-1", "agent-2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodPut, "/api/listings/l-1", "agent-2", UpdateListingRequest{})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodDelete, "/api/listings/l-1", "agent-2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodGet, "/api/listings/missing", "agent-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateListing_Partial(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.listings.byID["l-1"] = domain.Listing{
		ID: "l-1", AgentID: "agent-1", Name: "Casa", Status: domain.StatusAvailable,
		Price: 3_000_000, Neighborhood: "Altozano",
	}

	price := 3_500_000.0
	status := "reserved"
	w := env.do(http.MethodPut, "/api/listings/l-1", "agent-1", UpdateListingRequest{
		Price:  &price,
		Status: &status,
	})
	require.Equal(t, http.StatusOK, w.Code)

	got := env.listings.byID["l-1"]
	assert.InDelta(t, 3_500_000, got.Price, 1e-9)
	assert.Equal(t, domain.StatusReserved, got.Status)
	assert.Equal(t, "Casa", got.Name, "untouched fields keep their value")
	assert.Equal(t, "Altozano", got.Neighborhood)

	bad := "haunted"
	w = env.do(http.MethodPut, "/api/listings/l-1", "agent-1", UpdateListingRequest{Status: &bad})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeleteListing(t *testing.T) {
	t.Parallel()
	env := newTestEnv()
	env.listings.byID["l-1"] = domain.Listing{ID: "l-1", AgentID: "agent-1", Name: "Casa"}

	w := env.do(http.MethodDelete, "/api/listings/l-1", "agent-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"l-1"}, env.listings.deleted)
}

func TestProspectLifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	w := env.do(http.MethodPost, "/api/prospects", "agent-1", CreateProspectRequest{
		Name:   "Ana",
		Phone:  "555-0101",
		Status: "active",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created domain.Prospect
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "agent-1", created.AgentID)
	require.NotZero(t, created.ID)

	path := fmt.Sprintf("/api/prospects/%d", created.ID)

	w = env.do(http.MethodGet, path, "agent-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, path, "agent-2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	status := "contacted"
	w = env.do(http.MethodPut, path, "agent-1", UpdateProspectRequest{Status: &status})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ProspectContacted, env.prospects.byID[created.ID].Status)

	w = env.do(http.MethodDelete, path, "agent-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, path, "agent-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProspectValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	w := env.do(http.MethodPost, "/api/prospects", "agent-1", CreateProspectRequest{Status: "active"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(http.MethodPost, "/api/prospects", "agent-1", CreateProspectRequest{Name: "Ana", Status: "ghosted"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(http.MethodGet, "/api/prospects/notanumber", "agent-1", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
