package retriever

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ragcore/ragcore/embedder"
	"github.com/ragcore/ragcore/models"
	"github.com/ragcore/ragcore/vectorindex"
)

// Options tunes the retriever; zero values fall back to spec defaults.
type Options struct {
	RRFK  int
	TopK  int
	SideK int // side-channel cap, default 20
}

func (o Options) withDefaults() Options {
	if o.RRFK <= 0 {
		o.RRFK = 60
	}
	if o.TopK <= 0 {
		o.TopK = 10
	}
	if o.SideK <= 0 {
		o.SideK = 20
	}
	return o
}

// Retriever is constructed fresh per query from a tenant's corpus snapshot
// (spec §5 "per-request retriever instance"); it is never shared across
// requests, guaranteeing tenant isolation with no locking.
type Retriever struct {
	corpus []models.CorpusChunk
	texts  []string
	bm25   *bm25lite
	opts   Options
}

func New(corpus []models.CorpusChunk, opts Options) *Retriever {
	texts := make([]string, len(corpus))
	for i, c := range corpus {
		texts[i] = c.Content
	}
	return &Retriever{
		corpus: corpus,
		texts:  texts,
		bm25:   newBM25(texts),
		opts:   opts.withDefaults(),
	}
}

// keywordList implements the BM25-lite list plus its post-score boosts:
// +10 full-query substring match, else +5 all distinct terms present, else
// +matching-term-count.
func (r *Retriever) keywordList(query string) []int {
	scores := r.bm25.score(query, 1.5, 0.75)
	ql := strings.ToLower(query)
	qTerms := uniqueTerms(ql)

	for i, text := range r.texts {
		tl := strings.ToLower(text)
		switch {
		case strings.Contains(tl, ql):
			scores[i] += 10.0
		case allTermsPresent(tl, qTerms):
			scores[i] += 5.0
		default:
			scores[i] += float64(countMatchingTerms(tl, qTerms))
		}
	}
	return rankByScoreDesc(scores)
}

// denseList implements the in-memory Jaccard + length-similarity heuristic.
func (r *Retriever) denseList(query string) []int {
	scores := jaccardDense(r.texts, query)
	return rankByScoreDesc(scores)
}

// promoteExactMatches moves up to 3 documents whose text contains the full
// query (case-insensitive) to the front of list; the remaining entries keep
// their order and the promoted ones are not repeated.
func (r *Retriever) promoteExactMatches(list []int, query string) []int {
	ql := strings.ToLower(query)
	var exact []int
	for i, text := range r.texts {
		if len(exact) >= 3 {
			break
		}
		if strings.Contains(strings.ToLower(text), ql) {
			exact = append(exact, i)
		}
	}
	if len(exact) == 0 {
		return list
	}
	promoted := make(map[int]bool, len(exact))
	out := make([]int, 0, len(exact)+len(list))
	for _, idx := range exact {
		out = append(out, idx)
		promoted[idx] = true
	}
	for _, idx := range list {
		if !promoted[idx] {
			out = append(out, idx)
		}
	}
	return out
}

// Retrieve produces up to topK candidates by fusing the keyword and dense
// lists, then merging in the vector index's side channel (if any) with
// first-200-chars dedup, capped at SideK.
func (r *Retriever) Retrieve(ctx context.Context, query string, vecIndex vectorindex.Index, tenantID uuid.UUID, emb embedder.Embedder) []models.Candidate {
	if len(r.corpus) == 0 {
		return nil
	}

	kwList := r.promoteExactMatches(r.keywordList(query), query)
	denseList := r.promoteExactMatches(r.denseList(query), query)

	fusedIdx := rrfFuse([][]int{kwList, denseList}, r.opts.RRFK, r.opts.TopK)

	candidates := make([]models.Candidate, 0, len(fusedIdx))
	seenKeys := make(map[string]bool)
	for rank, idx := range fusedIdx {
		key := dedupKey(r.texts[idx])
		if seenKeys[key] {
			continue
		}
		seenKeys[key] = true
		candidates = append(candidates, models.Candidate{
			Chunk: r.corpus[idx],
			Score: 1.0 / float64(r.opts.RRFK+rank+1),
		})
	}

	if vecIndex != nil && emb != nil {
		vecs, err := emb.Embed(ctx, []string{query})
		if err == nil && len(vecs) == 1 {
			hits, _ := vecIndex.Search(ctx, vecs[0], tenantID, r.opts.TopK, 0)
			for _, h := range hits {
				key := dedupKey(h.Payload.Content)
				if seenKeys[key] {
					continue
				}
				seenKeys[key] = true
				candidates = append(candidates, models.Candidate{
					Chunk: models.CorpusChunk{
						ChunkID:      h.ChunkID,
						DocumentID:   h.Payload.DocumentID,
						Content:      h.Payload.Content,
						ChunkIndex:   h.Payload.ChunkIndex,
						Page:         h.Payload.Page,
						ChapterNum:   h.Payload.ChapterNum,
						ChapterTitle: h.Payload.ChapterTitle,
					},
					Score: h.Score,
				})
			}
		}
	}

	if len(candidates) > r.opts.SideK {
		candidates = candidates[:r.opts.SideK]
	}
	return candidates
}

func dedupKey(text string) string {
	t := strings.ToLower(text)
	if len(t) > 200 {
		t = t[:200]
	}
	return t
}

func uniqueTerms(lowerQuery string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range strings.Fields(lowerQuery) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func allTermsPresent(text string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(text, t) {
			return false
		}
	}
	return len(terms) > 0
}

func countMatchingTerms(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		if strings.Contains(text, t) {
			n++
		}
	}
	return n
}

func rankByScoreDesc(scores []float64) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return scores[idx[i]] > scores[idx[j]]
	})
	return idx
}
