package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"anoa.com/collegetrack/internal/entity"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMeili struct {
	mu       sync.Mutex
	docs     []map[string]any
	settings []string
	hitIDs   []string
}

func (f *fakeMeili) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	task := `{"taskUid":1,"indexUid":"universities","status":"enqueued","type":"documentAdditionOrUpdate","enqueuedAt":"2026-01-01T00:00:00Z"}`

	switch {
	case strings.Contains(r.URL.Path, "/settings/"):
		f.settings = append(f.settings, r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, task)
	case strings.HasSuffix(r.URL.Path, "/documents") && r.Method == http.MethodPost:
		var docs []map[string]any
		_ = json.NewDecoder(r.Body).Decode(&docs)
		f.docs = append(f.docs, docs...)
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, task)
	case strings.HasSuffix(r.URL.Path, "/search"):
		hits := make([]map[string]string, 0, len(f.hitIDs))
		for _, id := range f.hitIDs {
			hits = append(hits, map[string]string{"id": id})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits":               hits,
			"query":              "",
			"processingTimeMs":   1,
			"limit":              20,
			"offset":             0,
			"estimatedTotalHits": len(hits),
		})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"not found","code":"not_found","type":"invalid_request","link":""}`)
	}
}

func newTestIndex(t *testing.T) (*fakeMeili, Index) {
	t.Helper()
	fake := &fakeMeili{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, NewMeiliIndex(meilisearch.New(srv.URL, meilisearch.WithAPIKey("test-key")))
}

func TestNewMeiliIndex_ConfiguresSettings(t *testing.T) {
	fake, _ := newTestIndex(t)
	assert.Len(t, fake.settings, 3)
}

func TestIndexUniversities_SendsSanitizedDocs(t *testing.T) {
	fake, idx := newTestIndex(t)
	city := "Cambridge"
	ranking := 2

	err := idx.IndexUniversities(context.Background(), []entity.University{{
		ID:            uuid.New(),
		Slug:          "mit",
		Name:          "<b>Massachusetts Institute of Technology</b>",
		Country:       "United States",
		City:          &city,
		USNewsRanking: &ranking,
	}})
	require.NoError(t, err)
	require.Len(t, fake.docs, 1)
	assert.Equal(t, "Massachusetts Institute of Technology", fake.docs[0]["name"])
	assert.Equal(t, "Cambridge", fake.docs[0]["city"])
	assert.Equal(t, "", fake.docs[0]["state"])

	require.NoError(t, idx.IndexUniversities(context.Background(), nil))
	assert.Len(t, fake.docs, 1)
}

func TestSearch_ReturnsIDsInOrder(t *testing.T) {
	fake, idx := newTestIndex(t)
	first, second := uuid.New(), uuid.New()
	fake.hitIDs = []string{first.String(), "not-a-uuid", second.String()}

	ids, err := idx.Search(context.Background(), "stan", 20)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first, second}, ids)
}
