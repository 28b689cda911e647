// Package chunk implements C2: sentence-aware segmentation with page and
// chapter metadata, grounded on document_service.py's
// _build_chunks_with_metadata/_split_sentences/_extract_chapter_info.
package chunk

import (
	"regexp"
	"strings"

	"github.com/ragcore/ragcore/models"
)

var (
	pageMarkerRe = regexp.MustCompile(`\[\[PAGE:(\d+)\]\]`)
	chapterRe    = regexp.MustCompile(`(?i)^\s*chapter\s+(\d+)\s*[.:\-]?\s*(.*)$`)
	sentenceRe   = regexp.MustCompile(`(?:[.!?])\s+(?:[A-Z(\[])`)
)

// Chunk is one emitted text chunk plus its metadata, ready for embedding.
type Chunk struct {
	Content string
	Meta    models.ChunkMeta
}

// Options tunes the chunker; zero values fall back to the spec defaults.
type Options struct {
	TargetChars      int
	OverlapSentences int
}

func (o Options) withDefaults() Options {
	if o.TargetChars <= 0 {
		o.TargetChars = 1400
	}
	if o.OverlapSentences <= 0 {
		o.OverlapSentences = 2
	}
	return o
}

// BuildChunks implements the text path of C2: splits text into pages at
// [[PAGE:n]] markers (or treats it as one page), tracks the current chapter
// heading per page, splits each page into sentences, and greedily
// accumulates sentences into chunks bounded by TargetChars with a trailing
// sentence overlap carried into the next chunk.
func BuildChunks(text string, opts Options) []Chunk {
	opts = opts.withDefaults()
	pages := splitPages(text)

	var chunks []Chunk
	var currentChapterNum *int
	var currentChapterTitle string

	for _, p := range pages {
		num, title, ok := detectChapterHeading(p.text, 6)
		if ok {
			currentChapterNum = &num
			currentChapterTitle = title
		}

		sentences := SplitSentences(p.text)
		var buf []string
		bufLen := 0

		emit := func() {
			if len(buf) == 0 {
				return
			}
			content := strings.TrimSpace(strings.Join(buf, " "))
			if content == "" {
				return
			}
			meta := models.ChunkMeta{}
			if p.num != nil {
				meta.Page = p.num
			}
			if currentChapterNum != nil {
				n := *currentChapterNum
				meta.ChapterNum = &n
				meta.ChapterTitle = currentChapterTitle
			}
			chunks = append(chunks, Chunk{Content: content, Meta: meta})
		}

		for _, s := range sentences {
			if bufLen+len(s)+1 > opts.TargetChars && len(buf) > 0 {
				emit()
				overlapStart := len(buf) - opts.OverlapSentences
				if overlapStart < 0 {
					overlapStart = 0
				}
				buf = append([]string{}, buf[overlapStart:]...)
				bufLen = 0
				for _, b := range buf {
					bufLen += len(b) + 1
				}
			}
			buf = append(buf, s)
			bufLen += len(s) + 1
		}
		emit()
	}

	// Backfill chapter metadata the page-level scan missed, using each
	// chunk's own first lines (_extract_chapter_info fallback).
	for i := range chunks {
		if chunks[i].Meta.ChapterNum != nil {
			continue
		}
		if num, title, ok := detectChapterHeading(chunks[i].Content, 5); ok {
			n := num
			chunks[i].Meta.ChapterNum = &n
			chunks[i].Meta.ChapterTitle = title
		}
	}

	return chunks
}

type page struct {
	num  *int
	text string
}

func splitPages(text string) []page {
	matches := pageMarkerRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []page{{num: nil, text: text}}
	}
	var pages []page
	for i, m := range matches {
		start := m[1]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		numStr := text[m[2]:m[3]]
		n := atoiSafe(numStr)
		pages = append(pages, page{num: &n, text: strings.TrimSpace(text[start:end])})
	}
	return pages
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// SplitSentences collapses whitespace then splits on ". ! ?" followed by
// whitespace and a capital letter or bracket, dropping fragments under 3
// chars after trimming.
func SplitSentences(text string) []string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if collapsed == "" {
		return nil
	}

	var out []string
	last := 0
	locs := sentenceRe.FindAllStringIndex(collapsed, -1)
	for _, loc := range locs {
		// split point is right before the capital/bracket that follows the
		// whitespace, i.e. at the end of the match minus the final rune.
		splitAt := loc[1] - 1
		piece := strings.TrimSpace(collapsed[last:splitAt])
		if len(piece) >= 3 {
			out = append(out, piece)
		}
		last = splitAt
	}
	tail := strings.TrimSpace(collapsed[last:])
	if len(tail) >= 3 {
		out = append(out, tail)
	}
	return out
}

// detectChapterHeading scans the first maxLines non-blank lines of text for
// a "Chapter N. Title" heading.
func detectChapterHeading(text string, maxLines int) (int, string, bool) {
	lines := strings.Split(text, "\n")
	checked := 0
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		checked++
		if checked > maxLines {
			break
		}
		if m := chapterRe.FindStringSubmatch(l); m != nil {
			return atoiSafe(m[1]), strings.TrimSpace(m[2]), true
		}
	}
	return 0, "", false
}

// NormalizeHeader lowercases, maps non-alphanumeric runs to underscore, and
// trims the result — the document's `columns` metadata uses this.
func NormalizeHeader(raw string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			sb.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(sb.String(), "_")
}
