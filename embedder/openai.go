package embedder

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ragcore/ragcore/ragerrors"
	"github.com/ragcore/ragcore/reliability"
)

// Remote batches inputs so the estimated token count (len/4) per batch stays
// <= BatchTokens, issuing one embeddings.create call per batch and
// concatenating results in input order — grounded on document_service.py's
// embed(). Each batch call is wrapped in a circuit breaker plus bounded
// retry, matching the reliability posture every external dependency gets.
type Remote struct {
	client      *openai.Client
	model       string
	batchTokens int
	dim         int
	breaker     *reliability.Breaker
	retry       reliability.RetryPolicy
}

func NewRemote(apiKey, baseURL, model string, batchTokens int) *Remote {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if batchTokens <= 0 {
		batchTokens = 280000
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &Remote{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		batchTokens: batchTokens,
		dim:         1536,
		breaker:     reliability.NewBreaker(5, 60*time.Second),
		retry:       reliability.NewRetryPolicy(3, 500*time.Millisecond, 10*time.Second),
	}
}

func (r *Remote) Dimension() int { return r.dim }

func estimateTokens(s string) int {
	n := len(s) / 4
	if n == 0 && len(s) > 0 {
		n = 1
	}
	return n
}

func (r *Remote) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))

	batch := make([]string, 0, len(texts))
	batchTokenCount := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		var resp openai.EmbeddingResponse
		callErr := r.breaker.Call(func() error {
			return r.retry.Execute(ctx.Done(), func() error {
				var err error
				resp, err = r.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
					Input: batch,
					Model: openai.EmbeddingModel(r.model),
				})
				return err
			})
		})
		if callErr != nil {
			return &ragerrors.ExternalServiceError{Service: "embedder", Err: callErr}
		}
		if len(resp.Data) != len(batch) {
			return &ragerrors.ExternalServiceError{Service: "embedder", Err: fmt.Errorf("embedding count mismatch: got %d want %d", len(resp.Data), len(batch))}
		}
		for _, d := range resp.Data {
			vec := make([]float64, len(d.Embedding))
			for i, f := range d.Embedding {
				vec[i] = float64(f)
			}
			out = append(out, vec)
		}
		batch = batch[:0]
		batchTokenCount = 0
		return nil
	}

	for _, text := range texts {
		tokens := estimateTokens(text)
		if batchTokenCount+tokens > r.batchTokens && len(batch) > 0 {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		batch = append(batch, text)
		batchTokenCount += tokens
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return out, nil
}
