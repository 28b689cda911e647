package strategy

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ragcore/ragcore/models"
	"github.com/ragcore/ragcore/planner"
)

var chapterHeadingRe = regexp.MustCompile(`(?i)^\s*chapter\s+(\d+)\s*[.:\-]?\s*(.*)$`)

// extractChaptersFromText implements extract_chapters: scans every line of
// every text for a chapter heading, keeping the first non-empty title seen
// per chapter number.
func extractChaptersFromText(texts []string) map[int]string {
	found := make(map[int]string)
	for _, t := range texts {
		for _, line := range strings.Split(t, "\n") {
			s := strings.TrimSpace(line)
			if s == "" {
				continue
			}
			m := chapterHeadingRe.FindStringSubmatch(s)
			if m == nil {
				continue
			}
			num := atoi(m[1])
			title := strings.TrimSpace(m[2])
			if _, ok := found[num]; !ok && title != "" {
				found[num] = title
			}
		}
	}
	return found
}

// chaptersFromCorpusMeta scans stored chunk metadata directly, the
// second-preference fallback behind the vector index's scroll_chapters.
func chaptersFromCorpusMeta(corpus []models.CorpusChunk) map[int]string {
	found := make(map[int]string)
	for _, c := range corpus {
		if c.ChapterNum == nil {
			continue
		}
		if _, ok := found[*c.ChapterNum]; !ok && c.ChapterTitle != "" {
			found[*c.ChapterNum] = c.ChapterTitle
		}
	}
	return found
}

// chapterMap resolves chapters preferring the vector index's scroll_chapters
// for completeness, falling back to stored chunk metadata, and finally to
// regex extraction over the text of every corpus chunk, per §4.8.
func chapterMap(ctx context.Context, deps Deps) map[int]string {
	if deps.VectorIndex != nil {
		if payloads, err := deps.VectorIndex.ScrollChapters(ctx, deps.TenantID, 0); err == nil && len(payloads) > 0 {
			found := make(map[int]string)
			for _, p := range payloads {
				if p.ChapterNum == nil {
					continue
				}
				if _, ok := found[*p.ChapterNum]; !ok && p.ChapterTitle != "" {
					found[*p.ChapterNum] = p.ChapterTitle
				}
			}
			if len(found) > 0 {
				return found
			}
		}
	}
	if found := chaptersFromCorpusMeta(deps.Corpus); len(found) > 0 {
		return found
	}
	texts := make([]string, len(deps.Corpus))
	for i, c := range deps.Corpus {
		texts[i] = c.Content
	}
	return extractChaptersFromText(texts)
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// ChapterNav implements S-chapter-nav: extracts chapters from the top-8
// retrieved chunks (or the full corpus if retrieval is empty) and answers
// with the next chapter if present, persisting context.last_chapter.
func ChapterNav(plan planner.Plan, convCtx models.ConversationContext, deps Deps) Result {
	var texts []string
	if len(deps.Candidates) > 0 {
		n := len(deps.Candidates)
		if n > 8 {
			n = 8
		}
		for _, c := range deps.Candidates[:n] {
			texts = append(texts, c.Chunk.Content)
		}
	} else {
		for _, c := range deps.Corpus {
			texts = append(texts, c.Content)
		}
	}

	chapters := extractChaptersFromText(texts)
	nextNum := plan.ChapterBase + 1
	title, ok := chapters[nextNum]
	if !ok {
		return Result{
			Response: models.QueryResponse{
				Response:      "I couldn't find the next chapter title in the uploaded content.",
				Confidence:    0,
				RequiresHuman: true,
			},
			Context: convCtx,
		}
	}

	n := nextNum
	convCtx.LastChapter = &n
	convCtx.LastChapterTitle = title
	return Result{
		Response: models.QueryResponse{
			Response:      fmt.Sprintf("The next chapter is Chapter %d: %s.", nextNum, title),
			Confidence:    0.9,
			RequiresHuman: false,
		},
		Context: convCtx,
	}
}

// ChapterCount implements S-chapter-count.
func ChapterCount(ctx context.Context, convCtx models.ConversationContext, deps Deps) Result {
	chapters := chapterMap(ctx, deps)
	return Result{
		Response: models.QueryResponse{
			Response:      fmt.Sprintf("There are %d chapters in the uploaded content.", len(chapters)),
			Confidence:    0.8,
			RequiresHuman: false,
		},
		Context: convCtx,
	}
}

// ChapterTitles implements S-chapter-titles: sorted by number, capped at
// the requested n or 20.
func ChapterTitles(ctx context.Context, plan planner.Plan, convCtx models.ConversationContext, deps Deps) Result {
	chapters := chapterMap(ctx, deps)
	if len(chapters) == 0 {
		return Result{
			Response: models.QueryResponse{
				Response:      "I couldn't find any chapter titles in the uploaded content.",
				Confidence:    0,
				RequiresHuman: true,
			},
			Context: convCtx,
		}
	}

	nums := make([]int, 0, len(chapters))
	for n := range chapters {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	limit := 20
	if plan.ChapterTitlesNSet && plan.ChapterTitlesN > 0 && plan.ChapterTitlesN < limit {
		limit = plan.ChapterTitlesN
	}
	if len(nums) > limit {
		nums = nums[:limit]
	}

	lines := make([]string, 0, len(nums))
	for _, n := range nums {
		lines = append(lines, fmt.Sprintf("Chapter %d: %s", n, chapters[n]))
	}

	return Result{
		Response: models.QueryResponse{
			Response:      "Chapters:\n" + strings.Join(lines, "\n"),
			Confidence:    0.85,
			RequiresHuman: false,
		},
		Context: convCtx,
	}
}

// ChapterSummary implements S-chapter-summary: a bulleted 5-7 point brief
// composed from chunks referencing the requested chapter, using the
// Generator if available, else a snippet-based fallback.
func ChapterSummary(ctx context.Context, plan planner.Plan, convCtx models.ConversationContext, deps Deps) Result {
	var relevant []string
	var citations []models.Citation
	needle := fmt.Sprintf("chapter %d", plan.ChapterSummaryNum)
	for _, c := range deps.Corpus {
		matches := (c.ChapterNum != nil && *c.ChapterNum == plan.ChapterSummaryNum) ||
			strings.Contains(strings.ToLower(c.Content), needle)
		if !matches {
			continue
		}
		relevant = append(relevant, c.Content)
		if len(citations) < maxCitations {
			citations = append(citations, models.Citation{
				Source:    "chunk",
				Title:     fmt.Sprintf("Chapter %d", plan.ChapterSummaryNum),
				Relevance: 0.9,
				Snippet:   snippet(c.Content),
			})
		}
	}

	if len(relevant) == 0 {
		return Result{
			Response: models.QueryResponse{
				Response:      fmt.Sprintf("I couldn't find content for Chapter %d.", plan.ChapterSummaryNum),
				Confidence:    0,
				RequiresHuman: true,
			},
			Context: convCtx,
		}
	}

	var bullets []string
	if deps.Generator != nil {
		prompt := "Summarize the following chapter content in 5 to 7 bullet points:\n\n" + strings.Join(relevant, "\n\n")
		if text, err := deps.Generator.Complete(ctx, "You write concise bulleted chapter summaries grounded only in the provided text.", prompt, 0.3); err == nil && strings.TrimSpace(text) != "" {
			for _, line := range strings.Split(text, "\n") {
				line = strings.TrimSpace(line)
				line = strings.TrimPrefix(line, "- ")
				line = strings.TrimPrefix(line, "* ")
				if line != "" {
					bullets = append(bullets, line)
				}
			}
		}
	}
	if len(bullets) == 0 {
		// Fallback: the first 200 characters of each matching chunk, capped at 7.
		for _, r := range relevant {
			s := strings.TrimSpace(r)
			if len(s) > 200 {
				s = s[:200]
			}
			bullets = append(bullets, s)
			if len(bullets) >= 7 {
				break
			}
		}
	}
	if len(bullets) > 7 {
		bullets = bullets[:7]
	}

	return Result{
		Response: models.QueryResponse{
			Response:      fmt.Sprintf("Summary of Chapter %d:\n- %s", plan.ChapterSummaryNum, strings.Join(bullets, "\n- ")),
			Citations:     truncateCitations(citations),
			Confidence:    0.8,
			RequiresHuman: false,
		},
		Context: convCtx,
	}
}
