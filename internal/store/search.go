// internal/store/search.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"planmytrip/internal/common/logger"
	"planmytrip/internal/models"
)

const defaultSearchSize = 50

var indexMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id":               map[string]interface{}{"type": "keyword"},
			"userId":           map[string]interface{}{"type": "keyword"},
			"title":            map[string]interface{}{"type": "text"},
			"destination":      map[string]interface{}{"type": "text"},
			"startingLocation": map[string]interface{}{"type": "text"},
			"duration":         map[string]interface{}{"type": "keyword"},
			"budget":           map[string]interface{}{"type": "keyword"},
			"travelType":       map[string]interface{}{"type": "keyword"},
			"highlights":       map[string]interface{}{"type": "text"},
			"createdAt":        map[string]interface{}{"type": "date"},
		},
	},
}

// SearchIndex keeps saved-itinerary summaries in Elasticsearch for
// free-text lookup by their owner.
type SearchIndex struct {
	es    *elasticsearch.Client
	index string
	log   logger.Logger
}

func NewSearchIndex(es *elasticsearch.Client, index string, log logger.Logger) *SearchIndex {
	return &SearchIndex{es: es, index: index, log: log}
}

// EnsureIndex creates the index with its mapping when missing.
func (s *SearchIndex) EnsureIndex(ctx context.Context) error {
	res, err := s.es.Indices.Exists([]string{s.index}, s.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	body, _ := json.Marshal(indexMapping)
	res, err = s.es.Indices.Create(s.index,
		s.es.Indices.Create.WithContext(ctx),
		s.es.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && !strings.Contains(readBody(res.Body), "resource_already_exists_exception") {
		return fmt.Errorf("create index: %s", res.Status())
	}
	return nil
}

// Index upserts the summary of saved.
func (s *SearchIndex) Index(ctx context.Context, saved models.SavedItinerary) error {
	body, err := json.Marshal(saved.Summary())
	if err != nil {
		return err
	}

	res, err := s.es.Index(s.index, bytes.NewReader(body),
		s.es.Index.WithContext(ctx),
		s.es.Index.WithDocumentID(saved.ID),
	)
	if err != nil {
		return fmt.Errorf("index itinerary: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index itinerary: %s: %s", res.Status(), readBody(res.Body))
	}
	return nil
}

// IndexBestEffort indexes saved and only logs failures; saving must not
// depend on search availability.
func (s *SearchIndex) IndexBestEffort(ctx context.Context, saved models.SavedItinerary) {
	if err := s.Index(ctx, saved); err != nil {
		s.log.Warn("Failed to index itinerary", map[string]interface{}{
			"itineraryId": saved.ID,
			"error":       err,
		})
	}
}

func (s *SearchIndex) Delete(ctx context.Context, id string) error {
	res, err := s.es.Delete(s.index, id, s.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete from index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete from index: %s", res.Status())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.ItinerarySummary `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search matches query against title, destination, starting location and
// highlights of userID's itineraries. A blank query lists them all.
func (s *SearchIndex) Search(ctx context.Context, userID, query string) ([]models.ItinerarySummary, error) {
	body, err := json.Marshal(buildSearchQuery(userID, query))
	if err != nil {
		return nil, err
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, queryFailed("search itineraries", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, queryFailed("search itineraries", fmt.Errorf("%s: %s", res.Status(), readBody(res.Body)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, queryFailed("search itineraries", err)
	}

	out := make([]models.ItinerarySummary, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func buildSearchQuery(userID, query string) map[string]interface{} {
	boolQuery := map[string]interface{}{
		"filter": []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"userId": userID}},
		},
	}
	if q := strings.TrimSpace(query); q != "" {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":     q,
					"fields":    []string{"title^2", "destination^2", "startingLocation", "highlights"},
					"fuzziness": "AUTO",
				},
			},
		}
	}
	return map[string]interface{}{
		"size":  defaultSearchSize,
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"_score": "desc"},
			map[string]interface{}{"createdAt": "desc"},
		},
	}
}

func readBody(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	return string(data)
}
