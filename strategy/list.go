package strategy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ragcore/ragcore/models"
	"github.com/ragcore/ragcore/planner"
)

var listItemRe = regexp.MustCompile(`^(?:[-*•]\s+|\d+[.)]\s+)`)

// extractOrderedItems implements extract_ordered_items: bullet/numbered
// lines from the top-6 retrieved chunks, deduplicated preserving order.
func extractOrderedItems(texts []string) []string {
	var items []string
	seen := make(map[string]bool)
	for _, t := range texts {
		for _, line := range strings.Split(t, "\n") {
			s := strings.TrimSpace(line)
			if s == "" || !listItemRe.MatchString(s) {
				continue
			}
			s = listItemRe.ReplaceAllString(s, "")
			s = strings.TrimSpace(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			items = append(items, s)
		}
	}
	return items
}

// List implements S-list, including the documented past-end-of-list policy
// for the "next" mode: when start_index already reaches or exceeds the
// known item count, the strategy returns an explicit "no further items"
// answer with requires_human=false and an empty item slice, rather than
// silently repeating or erroring — this is the implementer's documented
// choice for §9's open question on list_request{mode:"next"} past the end.
func List(plan planner.Plan, convCtx models.ConversationContext, deps Deps) Result {
	topic := plan.ListTopic
	if topic == "" {
		topic = convCtx.LastListTopic
	}
	if topic == "" {
		return Result{
			Response: models.QueryResponse{
				Response:      "Which topic are you referring to? For example: 'first 3 processes of project management'.",
				Confidence:    0,
				RequiresHuman: false,
			},
			Context: convCtx,
		}
	}

	var texts []string
	n := len(deps.Candidates)
	if n > 6 {
		n = 6
	}
	for _, c := range deps.Candidates[:n] {
		texts = append(texts, c.Chunk.Content)
	}
	items := extractOrderedItems(texts)

	if convCtx.LastListTopic == topic && len(convCtx.LastListItems) > len(items) {
		items = convCtx.LastListItems
	}

	if len(items) == 0 {
		return Result{
			Response: models.QueryResponse{
				Response:      fmt.Sprintf("I couldn't find an ordered list of items for %s.", topic),
				Confidence:    0,
				RequiresHuman: true,
			},
			Context: convCtx,
		}
	}

	count := plan.ListN
	if count < 1 {
		count = 1
	}

	startIndex := 0
	if plan.ListMode == planner.ListModeNext && convCtx.LastListTopic == topic {
		startIndex = convCtx.LastListIndex
	}

	if startIndex >= len(items) {
		convCtx.LastListTopic = topic
		convCtx.LastListItems = items
		return Result{
			Response: models.QueryResponse{
				Response:      fmt.Sprintf("There are no further items for %s.", topic),
				Confidence:    0.8,
				RequiresHuman: false,
			},
			Context: convCtx,
		}
	}

	endIndex := startIndex + count
	if endIndex > len(items) {
		endIndex = len(items)
	}
	slice := items[startIndex:endIndex]

	lines := make([]string, 0, len(slice))
	for i, it := range slice {
		lines = append(lines, fmt.Sprintf("%d. %s", startIndex+i+1, it))
	}

	label := "first"
	if plan.ListMode == planner.ListModeNext {
		label = "next"
	}

	convCtx.LastListTopic = topic
	convCtx.LastListItems = items
	convCtx.LastListIndex = endIndex

	return Result{
		Response: models.QueryResponse{
			Response:      fmt.Sprintf("Here are the %s %d items for %s:\n%s", label, len(slice), topic, strings.Join(lines, "\n")),
			Confidence:    0.8,
			RequiresHuman: false,
		},
		Context: convCtx,
	}
}
