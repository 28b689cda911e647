package vectorindex

import (
	"context"
	"log"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// Qdrant wraps a qdrant.Client, grounded on original_source/shared/vector/qdrant.py:
// collection "knowledge_chunks", cosine distance, tenant_id/chapter_num/
// chapter_title payload indices, a bounded sequential retry wrapper (fixed
// delay, not exponential — the original's _with_retries), and graceful
// degradation (log + empty/no-op) on every failure path so the chunk store
// remains authoritative.
type Qdrant struct {
	client     *qdrant.Client
	collection string
	dim        int
	retries    int
	retryDelay time.Duration
}

func NewQdrant(dsn, collection string, dim, retries, retryDelaySeconds int) (*Qdrant, error) {
	host, port, useTLS, apiKey, err := parseQdrantDSN(dsn)
	if err != nil {
		return nil, err
	}
	cfg := &qdrant.Config{Host: host, Port: port, UseTLS: useTLS, APIKey: apiKey}
	client, err := qdrant.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if retries <= 0 {
		retries = 10
	}
	if retryDelaySeconds <= 0 {
		retryDelaySeconds = 1
	}
	return &Qdrant{
		client:     client,
		collection: collection,
		dim:        dim,
		retries:    retries,
		retryDelay: time.Duration(retryDelaySeconds) * time.Second,
	}, nil
}

func parseQdrantDSN(dsn string) (host string, port int, useTLS bool, apiKey string, err error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", 0, false, "", err
	}
	host = u.Hostname()
	if host == "" {
		host = "localhost"
	}
	portStr := u.Port()
	if portStr == "" {
		portStr = "6334"
	}
	port, err = strconv.Atoi(portStr)
	if err != nil {
		return "", 0, false, "", err
	}
	useTLS = u.Scheme == "https"
	apiKey = u.Query().Get("api_key")
	return host, port, useTLS, apiKey, nil
}

func (q *Qdrant) withRetries(op string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < q.retries; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt < q.retries-1 {
			time.Sleep(q.retryDelay)
		}
	}
	log.Printf("vectorindex: %s failed after %d attempts: %v", op, q.retries, lastErr)
	return lastErr
}

func (q *Qdrant) EnsureCollection(ctx context.Context) error {
	err := q.withRetries("ensure_collection", func() error {
		exists, err := q.client.CollectionExists(ctx, q.collection)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		if err := q.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: q.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(q.dim),
				Distance: qdrant.Distance_Cosine,
			}),
		}); err != nil {
			return err
		}
		for _, field := range []string{"tenant_id", "chapter_title"} {
			_ = q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
				CollectionName: q.collection,
				FieldName:      field,
				FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
			})
		}
		_ = q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: q.collection,
			FieldName:      "chapter_num",
			FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
		})
		return nil
	})
	if err != nil {
		// Creation failures degrade gracefully: upsert/search below still
		// attempt the call and degrade individually.
		return nil
	}
	return nil
}

func (q *Qdrant) Upsert(ctx context.Context, tenantID uuid.UUID, items []UpsertItem) error {
	return q.withRetries("upsert", func() error {
		points := make([]*qdrant.PointStruct, 0, len(items))
		for _, item := range items {
			payload := map[string]any{
				"tenant_id":   tenantID.String(),
				"document_id": item.Payload.DocumentID.String(),
				"content":     item.Payload.Content,
				"chunk_index": item.Payload.ChunkIndex,
			}
			if item.Payload.ChapterNum != nil {
				payload["chapter_num"] = *item.Payload.ChapterNum
			}
			if item.Payload.ChapterTitle != "" {
				payload["chapter_title"] = item.Payload.ChapterTitle
			}
			if item.Payload.Page != nil {
				payload["page"] = *item.Payload.Page
			}
			vec := make([]float32, len(item.Vector))
			for i, f := range item.Vector {
				vec[i] = float32(f)
			}
			points = append(points, &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(item.Payload.ChunkID.String()),
				Vectors: qdrant.NewVectorsDense(vec),
				Payload: qdrant.NewValueMap(payload),
			})
		}
		_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: q.collection,
			Points:         points,
		})
		return err
	})
}

func (q *Qdrant) Search(ctx context.Context, queryVec []float64, tenantID uuid.UUID, topK int, scoreThreshold float64) ([]SearchHit, error) {
	if topK <= 0 {
		topK = 5
	}
	vec := make([]float32, len(queryVec))
	for i, f := range queryVec {
		vec[i] = float32(f)
	}
	limit := uint64(topK)
	threshold := float32(scoreThreshold)

	var hits []SearchHit
	err := q.withRetries("search", func() error {
		resp, err := q.client.Query(ctx, &qdrant.QueryPoints{
			CollectionName: q.collection,
			Query:          qdrant.NewQueryDense(vec),
			Limit:          &limit,
			ScoreThreshold: &threshold,
			Filter: &qdrant.Filter{
				Must: []*qdrant.Condition{qdrant.NewMatch("tenant_id", tenantID.String())},
			},
			WithPayload: qdrant.NewWithPayload(true),
		})
		if err != nil {
			return err
		}
		hits = hits[:0]
		for _, p := range resp {
			hits = append(hits, SearchHit{
				ChunkID: parsePointUUID(p.Id),
				Score:   float64(p.Score),
				Payload: payloadFromMap(p.Payload),
			})
		}
		return nil
	})
	if err != nil {
		// Search errors cause the hybrid retriever to proceed with
		// keyword + fallback dense scoring only.
		return nil, nil
	}
	return hits, nil
}

func (q *Qdrant) ScrollChapters(ctx context.Context, tenantID uuid.UUID, limit int) ([]Payload, error) {
	if limit <= 0 {
		limit = 1000
	}
	pageSize := uint32(256)
	var out []Payload
	var offset *qdrant.PointId

	err := q.withRetries("scroll_chapters", func() error {
		out = out[:0]
		offset = nil
		for len(out) < limit {
			resp, err := q.client.Scroll(ctx, &qdrant.ScrollPoints{
				CollectionName: q.collection,
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{qdrant.NewMatch("tenant_id", tenantID.String())},
				},
				Limit:       &pageSize,
				Offset:      offset,
				WithPayload: qdrant.NewWithPayload(true),
			})
			if err != nil {
				return err
			}
			if len(resp) == 0 {
				break
			}
			for _, p := range resp {
				payload := payloadFromMap(p.Payload)
				if payload.ChapterNum != nil || payload.ChapterTitle != "" {
					out = append(out, payload)
				}
			}
			if len(resp) < int(pageSize) {
				break
			}
			offset = resp[len(resp)-1].Id
		}
		return nil
	})
	if err != nil {
		return nil, nil
	}
	return out, nil
}

// DeleteDocument removes every point belonging to documentID within
// tenantID's partition, used to clean up orphaned vectors when a document
// is deleted from the chunk store (spec §4.5 keeps the index in sync on a
// best-effort basis, never blocking the delete itself on index health).
func (q *Qdrant) DeleteDocument(ctx context.Context, tenantID, documentID uuid.UUID) error {
	return q.withRetries("delete_document", func() error {
		_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: q.collection,
			Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
				Must: []*qdrant.Condition{
					qdrant.NewMatch("tenant_id", tenantID.String()),
					qdrant.NewMatch("document_id", documentID.String()),
				},
			}),
		})
		return err
	})
}

func parsePointUUID(id *qdrant.PointId) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	if s := id.GetUuid(); s != "" {
		if u, err := uuid.Parse(s); err == nil {
			return u
		}
	}
	return uuid.Nil
}

func payloadFromMap(m map[string]*qdrant.Value) Payload {
	var p Payload
	if v, ok := m["document_id"]; ok {
		if id, err := uuid.Parse(v.GetStringValue()); err == nil {
			p.DocumentID = id
		}
	}
	if v, ok := m["content"]; ok {
		p.Content = v.GetStringValue()
	}
	if v, ok := m["chunk_index"]; ok {
		p.ChunkIndex = int(v.GetIntegerValue())
	}
	if v, ok := m["chapter_num"]; ok {
		n := int(v.GetIntegerValue())
		p.ChapterNum = &n
	}
	if v, ok := m["chapter_title"]; ok {
		p.ChapterTitle = v.GetStringValue()
	}
	if v, ok := m["page"]; ok {
		n := int(v.GetIntegerValue())
		p.Page = &n
	}
	return p
}

func (q *Qdrant) Close() error {
	return q.client.Close()
}
