// Package planner implements C7: rule-first intent classification over the
// raw user utterance plus conversation context, grounded on
// original_source/ai_core/api/v1/query.py's detect_* helpers. Output is a
// discriminated-union Plan rather than a dict, per the source's dynamic
// typing → tagged variant translation.
package planner

import (
	"regexp"
	"strconv"
	"strings"
)

type Intent string

const (
	IntentSensitiveRefusal Intent = "sensitive_refusal"
	IntentChapterNav       Intent = "chapter_nav"
	IntentChapterCount     Intent = "chapter_count"
	IntentChapterTitles    Intent = "chapter_titles"
	IntentChapterSummary   Intent = "chapter_summary"
	IntentListRequest      Intent = "list_request"
	IntentTabularField     Intent = "tabular_field"
	IntentPolicySummary    Intent = "policy_summary"
	IntentGeneric          Intent = "generic"
)

type ListMode string

const (
	ListModeFirst ListMode = "first"
	ListModeNext  ListMode = "next"
)

// Plan is the discriminated union produced by Classify. Only the fields
// relevant to Intent are populated; zero values elsewhere.
type Plan struct {
	Intent Intent

	ChapterBase int // chapter_nav

	ChapterTitlesN    int  // chapter_titles: requested count, 0 means unset
	ChapterTitlesNSet bool

	ChapterSummaryNum int // chapter_summary

	ListMode  ListMode // list_request
	ListN     int
	ListTopic string // "" means "reuse conversation memory"

	Field  string // tabular_field
	Person string // "" means "reuse conversation memory (pronoun or omitted)"
}

var (
	sensitiveTerms = []string{"ethnic", "ethnicity", "race", "hispanic", "religion", "sexual orientation"}

	chapterNavRe     = regexp.MustCompile(`(?i)next\s+chapter\s+after\s+chapter\s+(\d+)`)
	chapterCountRe   = regexp.MustCompile(`(?i)(how many chapters|number of chapters|chapters are there)`)
	chapterTitlesNRe = regexp.MustCompile(`(?i)(\d+)`)
	chapterSummaryRe = regexp.MustCompile(`(?i)summary\s+of\s+chapter\s+(\d+)`)

	listFirstRe = regexp.MustCompile(`(?i)\b(first|top)\s+(\d+)\b.*?(?:of|in)\s+(.+)$`)
	listNextRe  = regexp.MustCompile(`(?i)\b(next|subsequent)\s+(\d+)\b(?:.*?(?:of|in)\s+(.+))?`)

	personRe  = regexp.MustCompile(`(?i)(?:of|for)\s+([^?]+)`)
	pronounRe = regexp.MustCompile(`(?i)\b(his|her|their|him|them)\b`)
	digitRe   = regexp.MustCompile(`\d`)

	fieldKeywords = map[string][]string{
		"salary":           {"salary", "annualsalary", "salaryamount", "pay", "compensation", "wage", "earning"},
		"department":       {"department", "dept", "division", "team", "unit"},
		"manager":          {"manager", "managername", "supervisor", "boss", "reports to", "reporting manager"},
		"employmentstatus": {"employmentstatus", "status", "employment status", "work status"},
		"position":         {"position", "title", "job title", "role", "designation"},
		"location":         {"location", "office", "site", "workplace", "based in"},
	}
	fieldKeywordOrder = []string{"salary", "department", "manager", "employmentstatus", "position", "location"}

	nonPersonKeywords = []string{
		"chapter", "program", "project", "management", "roles", "responsibilities",
		"governance", "policy", "process", "procedure", "guideline",
	}

	policyLexiconTriggers = []string{"policy", "policies", "guideline", "rules"}
	policyLexiconTopics    = []string{"currency", "conversion", "unwithdrawn", "withdrawn"}
)

// PolicySentenceTerms is the lexicon scored by S-policy; exported as a
// package var so a production port can make it configurable per §9's open
// question, without touching the classification rules above.
var PolicySentenceTerms = []string{
	"currency", "conversion", "unwithdrawn", "withdrawn", "loan", "amount",
	"approved currency", "variable spread", "minimum", "maximum",
}

// Classify implements the rule table of §4.7. lastPerson is the
// conversation's remembered person, substituted for pronoun references.
func Classify(message string, lastPerson string) Plan {
	lower := strings.ToLower(message)

	if containsAny(lower, sensitiveTerms) {
		return Plan{Intent: IntentSensitiveRefusal}
	}

	if m := chapterNavRe.FindStringSubmatch(lower); m != nil {
		base, _ := strconv.Atoi(m[1])
		return Plan{Intent: IntentChapterNav, ChapterBase: base}
	}

	if chapterCountRe.MatchString(lower) {
		return Plan{Intent: IntentChapterCount}
	}

	if m := chapterSummaryRe.FindStringSubmatch(lower); m != nil {
		ch, _ := strconv.Atoi(m[1])
		return Plan{Intent: IntentChapterSummary, ChapterSummaryNum: ch}
	}

	if strings.Contains(lower, "chapter") && (strings.Contains(lower, "title") || strings.Contains(lower, "list")) {
		p := Plan{Intent: IntentChapterTitles}
		if m := chapterTitlesNRe.FindStringSubmatch(lower); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				p.ChapterTitlesN = n
				p.ChapterTitlesNSet = true
			}
		}
		return p
	}

	if m := listFirstRe.FindStringSubmatch(strings.TrimSpace(lower)); m != nil {
		n, _ := strconv.Atoi(m[2])
		topic := strings.TrimSuffix(strings.TrimSpace(m[3]), "?")
		return Plan{Intent: IntentListRequest, ListMode: ListModeFirst, ListN: n, ListTopic: topic}
	}
	if m := listNextRe.FindStringSubmatch(strings.TrimSpace(lower)); m != nil {
		n, _ := strconv.Atoi(m[2])
		topic := ""
		if len(m) > 3 && m[3] != "" {
			topic = strings.TrimSuffix(strings.TrimSpace(m[3]), "?")
		}
		return Plan{Intent: IntentListRequest, ListMode: ListModeNext, ListN: n, ListTopic: topic}
	}

	if field, ok := matchField(lower); ok {
		person := extractPerson(message, lower, lastPerson)
		return Plan{Intent: IntentTabularField, Field: field, Person: person}
	}

	if containsAny(lower, policyLexiconTriggers) && containsAny(lower, policyLexiconTopics) {
		return Plan{Intent: IntentPolicySummary}
	}

	return Plan{Intent: IntentGeneric}
}

func matchField(lower string) (string, bool) {
	for _, key := range fieldKeywordOrder {
		for _, term := range fieldKeywords[key] {
			if strings.Contains(lower, term) {
				if !looksLikePersonQuery(lower) {
					continue
				}
				return key, true
			}
		}
	}
	return "", false
}

// looksLikePersonQuery checks that the utterance as a whole plausibly asks
// about a person: it contains a pronoun reference, or its captured
// "of/for X" phrase passes LooksLikePerson.
func looksLikePersonQuery(lower string) bool {
	if pronounRe.MatchString(lower) {
		return true
	}
	if m := personRe.FindStringSubmatch(lower); m != nil {
		return LooksLikePerson(m[1])
	}
	return false
}

// LooksLikePerson reports whether raw matches the "Last, First" or
// 2-4-token shape and excludes topic-keyword phrases, per §4.7.
func LooksLikePerson(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return false
	}
	sl := strings.ToLower(s)
	for _, k := range nonPersonKeywords {
		if strings.Contains(sl, k) {
			return false
		}
	}
	if digitRe.MatchString(s) {
		return false
	}
	if strings.Contains(s, ",") && len(strings.Split(s, ",")) >= 2 {
		return true
	}
	tokens := strings.Fields(s)
	return len(tokens) >= 2 && len(tokens) <= 4
}

func extractPerson(original, lower, lastPerson string) string {
	if m := personRe.FindStringSubmatch(original); m != nil {
		candidate := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m[1]), "?"))
		if LooksLikePerson(candidate) {
			return candidate
		}
	}
	if pronounRe.MatchString(lower) {
		return lastPerson
	}
	return ""
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
