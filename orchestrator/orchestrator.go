// Package orchestrator implements C11: the query entry point glue —
// validate, guard, acquire conversation, load corpus, retrieve, plan,
// dispatch, persist, cache — grounded on
// original_source/ai_core/api/v1/query.py's post_query.
package orchestrator

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/ragcore/ragcore/cache"
	"github.com/ragcore/ragcore/embedder"
	"github.com/ragcore/ragcore/generator"
	"github.com/ragcore/ragcore/models"
	"github.com/ragcore/ragcore/planner"
	"github.com/ragcore/ragcore/ragerrors"
	"github.com/ragcore/ragcore/retriever"
	"github.com/ragcore/ragcore/store"
	"github.com/ragcore/ragcore/strategy"
	"github.com/ragcore/ragcore/vectorindex"
)

type Options struct {
	CorpusLimit  int
	RetrieveTopK int
	RRFK         int
	CacheTTL     int
}

func (o Options) withDefaults() Options {
	if o.CorpusLimit <= 0 {
		o.CorpusLimit = 2000
	}
	if o.RetrieveTopK <= 0 {
		o.RetrieveTopK = 10
	}
	if o.RRFK <= 0 {
		o.RRFK = 60
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = cache.DefaultTTLSeconds
	}
	return o
}

// Orchestrator wires every injected dependency per §9's "global singletons
// → injected dependencies" design note. The two stores are concrete
// gorm-backed types; the other dependencies are interfaces.
type Orchestrator struct {
	Chunks        *store.ChunkStore
	Conversations *store.ConversationStore
	Embedder      embedder.Embedder
	Generator     generator.Generator
	VectorIndex   vectorindex.Index
	Cache         cache.Cache
	Opts          Options
}

func New(chunks *store.ChunkStore, conversations *store.ConversationStore, emb embedder.Embedder, gen generator.Generator, vec vectorindex.Index, c cache.Cache, opts Options) *Orchestrator {
	return &Orchestrator{
		Chunks:        chunks,
		Conversations: conversations,
		Embedder:      emb,
		Generator:     gen,
		VectorIndex:   vec,
		Cache:         c,
		Opts:          opts.withDefaults(),
	}
}

var sensitiveGuardTerms = []string{"ethnic", "ethnicity", "race", "hispanic", "religion", "sexual orientation"}

func isSensitive(message string) bool {
	lower := strings.ToLower(message)
	for _, t := range sensitiveGuardTerms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// Handle runs the full 9-step query flow of §4.11.
func (o *Orchestrator) Handle(ctx context.Context, req models.QueryRequest) (models.QueryResponse, error) {
	// 1. Validate tenant/user identifier format; synthesize a fresh user id if absent.
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return models.QueryResponse{}, ragerrors.NewValidationError("tenantId", "not a valid UUID")
	}
	var userID uuid.UUID
	if req.UserID != "" {
		userID, err = uuid.Parse(req.UserID)
		if err != nil {
			return models.QueryResponse{}, ragerrors.NewValidationError("userId", "not a valid UUID")
		}
	} else {
		userID = uuid.New()
	}
	if req.Channel == "" {
		return models.QueryResponse{}, ragerrors.NewValidationError("channel", "required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return models.QueryResponse{}, ragerrors.NewValidationError("message", "required")
	}

	// 2. Sensitive-attribute guard: no storage side effect beyond the user
	// message record, and the refusal fires regardless of retrieval state.
	if isSensitive(req.Message) {
		conv, convErr := o.Conversations.GetOrCreate(tenantID, userID, req.Channel)
		if convErr == nil {
			_, _ = o.Conversations.AppendMessage(conv, models.SenderUser, req.Message, "TEXT", nil)
		}
		return strategy.Sensitive(models.ConversationContext{}).Response, nil
	}

	// 3. Acquire or create the conversation; append the user message.
	conv, err := o.Conversations.GetOrCreate(tenantID, userID, req.Channel)
	if err != nil {
		return models.QueryResponse{}, err
	}
	userMsg, err := o.Conversations.AppendMessage(conv, models.SenderUser, req.Message, "TEXT", nil)
	if err != nil {
		return models.QueryResponse{}, err
	}
	convCtx := store.Context(conv)

	if o.Cache != nil {
		if cached, hit := o.Cache.Get(ctx, tenantID, req.Message); hit {
			_, _ = o.Conversations.AppendMessage(conv, models.SenderSystem, cached.Response, "TEXT", nil)
			return *cached, nil
		}
	}

	// 4. Load the tenant corpus.
	corpus, err := o.Chunks.ListChunks(tenantID, o.Opts.CorpusLimit)
	if err != nil {
		return models.QueryResponse{}, err
	}

	// 5. Empty corpus: no tenant knowledge.
	if len(corpus) == 0 {
		resp := models.QueryResponse{
			Response:      "No tenant knowledge available yet to answer this question. Please upload documents or escalate to a human agent.",
			Confidence:    0,
			RequiresHuman: true,
		}
		_, _ = o.Conversations.AppendMessage(conv, models.SenderSystem, resp.Response, "TEXT", nil)
		return resp, nil
	}

	// 6. Hybrid retrieval.
	retr := retriever.New(corpus, retriever.Options{RRFK: o.Opts.RRFK, TopK: o.Opts.RetrieveTopK})
	candidates := retr.Retrieve(ctx, req.Message, o.VectorIndex, tenantID, o.Embedder)

	// 7. Plan + dispatch.
	plan := planner.Classify(req.Message, convCtx.LastPerson)
	result := strategy.Dispatch(ctx, plan, req.Message, convCtx, strategy.Deps{
		Corpus:      corpus,
		Candidates:  candidates,
		VectorIndex: o.VectorIndex,
		Generator:   o.Generator,
		Embedder:    o.Embedder,
		Retriever:   retr,
		TenantID:    tenantID,
	})

	// 8. Persist the system message, update context, write-through cache.
	if _, err := o.Conversations.AppendMessage(conv, models.SenderSystem, result.Response.Response, "TEXT", nil); err != nil {
		log.Printf("orchestrator: failed to append system message: %v", err)
	}
	if err := o.Conversations.UpdateContext(conv, result.Context); err != nil {
		log.Printf("orchestrator: failed to persist conversation context: %v", err)
	}
	if err := o.Conversations.MarkProcessed(userMsg.ID); err != nil {
		log.Printf("orchestrator: failed to mark user message processed: %v", err)
	}
	if o.Cache != nil {
		o.Cache.Set(ctx, tenantID, req.Message, result.Response, o.Opts.CacheTTL)
	}

	// 9. Return the strategy's result.
	return result.Response, nil
}
