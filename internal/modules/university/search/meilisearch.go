package search

import (
	"context"
	"encoding/json"
	"fmt"

	"anoa.com/collegetrack/internal/entity"
	"anoa.com/collegetrack/pkg/logger"
	"anoa.com/collegetrack/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
)

const IndexName = "universities"

// Index is the full-text side of the university catalogue. Search returns matching ids in
// relevance order. Documents are keyed by id, so indexing again replaces them.
type Index interface {
	IndexUniversities(ctx context.Context, universities []entity.University) error
	Search(ctx context.Context, query string, limit int64) ([]uuid.UUID, error)
}

type meiliIndex struct {
	client meilisearch.ServiceManager
}

// NewMeiliIndex configures the universities index on client. Settings failures are logged,
// not returned, so a Meilisearch outage never blocks startup.
func NewMeiliIndex(client meilisearch.ServiceManager) Index {
	idx := &meiliIndex{client: client}
	idx.initIndex()
	return idx
}

func (m *meiliIndex) initIndex() {
	filterable := []any{"country"}
	if _, err := m.client.Index(IndexName).UpdateFilterableAttributes(&filterable); err != nil {
		logger.Warn().Err(err).Str("index", IndexName).Msg("failed to update filterable attributes")
	}

	sortable := []string{"ranking"}
	if _, err := m.client.Index(IndexName).UpdateSortableAttributes(&sortable); err != nil {
		logger.Warn().Err(err).Str("index", IndexName).Msg("failed to update sortable attributes")
	}

	searchable := []string{"name", "city", "state", "country", "slug"}
	if _, err := m.client.Index(IndexName).UpdateSearchableAttributes(&searchable); err != nil {
		logger.Warn().Err(err).Str("index", IndexName).Msg("failed to update searchable attributes")
	}
}

type universityDoc struct {
	ID      string `json:"id"`
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Country string `json:"country"`
	State   string `json:"state"`
	City    string `json:"city"`
	Ranking *int   `json:"ranking"`
}

func toDoc(u *entity.University) universityDoc {
	return universityDoc{
		ID:      u.ID.String(),
		Slug:    u.Slug,
		Name:    sanitize.Text(u.Name),
		Country: sanitize.Text(u.Country),
		State:   sanitize.Text(stringOrEmpty(u.State)),
		City:    sanitize.Text(stringOrEmpty(u.City)),
		Ranking: u.USNewsRanking,
	}
}

func (m *meiliIndex) IndexUniversities(_ context.Context, universities []entity.University) error {
	if len(universities) == 0 {
		return nil
	}

	docs := make([]universityDoc, 0, len(universities))
	for i := range universities {
		docs = append(docs, toDoc(&universities[i]))
	}

	primaryKey := "id"
	task, err := m.client.Index(IndexName).AddDocuments(docs, &primaryKey)
	if err != nil {
		return fmt.Errorf("failed to index universities: %w", err)
	}
	logger.Info().Int("count", len(docs)).Int64("task_uid", task.TaskUID).Msg("queued university indexing")
	return nil
}

func (m *meiliIndex) Search(_ context.Context, query string, limit int64) ([]uuid.UUID, error) {
	resp, err := m.client.Index(IndexName).Search(query, &meilisearch.SearchRequest{
		Limit:                limit,
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, fmt.Errorf("university search failed: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		raw, ok := hit["id"]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
