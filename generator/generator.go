// Package generator holds the optional Generator interface used by answer
// strategies to refine or confirm a plan and to compose grounded answers;
// the core MUST behave correctly without it (spec §4.7/§4.8).
package generator

import "context"

// Generator produces a completion given a prompt. Implementations must
// return quickly on cancellation.
type Generator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}
