package strategy

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ragcore/ragcore/models"
	"github.com/ragcore/ragcore/planner"
)

var nameColumns = []string{"employee_name", "name", "employee", "empname", "full_name", "employee_full_name"}

var fieldAliases = map[string][]string{
	"salary":           {"salary", "annualsalary", "salaryamount", "pay", "basepay", "base_salary", "compensation", "wage", "earning"},
	"department":       {"department", "dept", "division", "team", "unit"},
	"manager":          {"manager", "managername", "supervisor", "boss", "reporting_manager"},
	"employmentstatus": {"employmentstatus", "status", "employment_status", "work_status"},
	"position":         {"position", "title", "job_title", "role", "designation", "jobtitle"},
	"location":         {"location", "office", "site", "workplace", "state", "city"},
}

var whitespaceRe = regexp.MustCompile(`\s+`)
var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

func normName(s string) string {
	s = strings.ReplaceAll(s, "﻿", "")
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

func normCol(s string) string {
	s = strings.ReplaceAll(s, "﻿", "")
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Trim(nonAlnumRe.ReplaceAllString(s, "_"), "_")
}

// nameVariants returns the normalized input plus, if the raw string
// contains a comma, the "First Last" swap of a "Last, First" phrase.
func nameVariants(raw string) map[string]bool {
	variants := map[string]bool{normName(raw): true}
	if strings.Contains(raw, ",") {
		parts := strings.Split(strings.ReplaceAll(raw, "﻿", ""), ",")
		if len(parts) >= 2 {
			variants[normName(strings.TrimSpace(parts[1])+" "+strings.TrimSpace(parts[0]))] = true
		}
	}
	return variants
}

func parseCSVRow(rowText string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(rowText))
	return r.Read()
}

func fieldDisplay(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func formatFieldResponse(field, person, value string) string {
	switch field {
	case "salary":
		cleaned := strings.NewReplacer(",", "", "$", "").Replace(value)
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return fmt.Sprintf("The salary of %s is $%s.", person, formatThousands(f))
		}
		return fmt.Sprintf("The salary of %s is %s.", person, value)
	case "department":
		return fmt.Sprintf("The department of %s is %s.", person, value)
	case "manager":
		return fmt.Sprintf("The manager of %s is %s.", person, value)
	case "employmentstatus":
		return fmt.Sprintf("The employment status of %s is %s.", person, value)
	case "position":
		return fmt.Sprintf("%s works as a %s.", person, value)
	case "location":
		return fmt.Sprintf("%s is located in %s.", person, value)
	default:
		return fmt.Sprintf("The %s of %s is %s.", fieldDisplay(field), person, value)
	}
}

// formatThousands renders a non-negative float with 0 decimals and
// comma thousands separators, e.g. 95000 -> "95,000".
func formatThousands(f float64) string {
	s := strconv.FormatFloat(f, 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// Tabular implements S-tabular: parses each tabular chunk's CSV row,
// matches the requested person by name variant (exact, then any cell),
// extracts the field by alias, and formats field-specifically.
func Tabular(plan planner.Plan, convCtx models.ConversationContext, deps Deps) Result {
	person := plan.Person
	if person == "" {
		person = convCtx.LastPerson
	}
	if person == "" {
		return Result{
			Response: models.QueryResponse{
				Response:      "Who are you asking about? Please include the person's name (e.g., 'What is the position of Jane Doe?').",
				Confidence:    0,
				RequiresHuman: false,
			},
			Context: convCtx,
		}
	}
	person = strings.TrimSpace(strings.Trim(person, "?"))
	variants := nameVariants(person)

	type match struct {
		row    map[string]string
		text   string
		chunk  models.CorpusChunk
	}
	var matches []match

	for _, c := range deps.Corpus {
		if len(c.Columns) == 0 {
			continue
		}
		values, err := parseCSVRow(c.Content)
		if err != nil {
			continue
		}
		colToVal := make(map[string]string, len(c.Columns))
		for i, col := range c.Columns {
			if i < len(values) {
				colToVal[col] = values[i]
			} else {
				colToVal[col] = ""
			}
		}

		rowName := ""
		for _, nc := range nameColumns {
			if v, ok := colToVal[nc]; ok && strings.TrimSpace(v) != "" {
				rowName = normName(v)
				break
			}
		}

		isMatch := rowName != "" && variants[rowName]
		if !isMatch {
			for _, v := range values {
				if variants[normName(v)] {
					isMatch = true
					break
				}
			}
		}
		if isMatch {
			matches = append(matches, match{row: colToVal, text: c.Content, chunk: c})
		}
	}

	if len(matches) == 0 {
		return Result{
			Response: models.QueryResponse{
				Response:      fmt.Sprintf("I couldn't find any records for %s. Please verify the name spelling or check if this person exists in the employee database.", person),
				Confidence:    0,
				RequiresHuman: true,
			},
			Context: convCtx,
		}
	}

	aliases := fieldAliases[plan.Field]
	if len(aliases) == 0 {
		aliases = []string{plan.Field}
	}

	var bestValue, bestRowText, canonicalName string
	for _, m := range matches {
		for _, alias := range aliases {
			key := normCol(alias)
			if v, ok := m.row[key]; ok && strings.TrimSpace(v) != "" {
				bestValue = strings.TrimSpace(v)
				bestRowText = m.text
				for _, nc := range nameColumns {
					if nv, ok := m.row[nc]; ok && strings.TrimSpace(nv) != "" {
						canonicalName = strings.TrimSpace(nv)
					}
				}
				break
			}
		}
		if bestValue != "" {
			break
		}
	}

	displayName := person
	if canonicalName != "" {
		displayName = canonicalName
	}

	if bestValue == "" {
		return Result{
			Response: models.QueryResponse{
				Response:      fmt.Sprintf("I found %s in the database, but their %s information is not available or empty in the records.", person, strings.ToLower(fieldDisplay(plan.Field))),
				Confidence:    0,
				RequiresHuman: true,
			},
			Context: convCtx,
		}
	}

	convCtx.LastPerson = displayName
	return Result{
		Response: models.QueryResponse{
			Response: formatFieldResponse(plan.Field, displayName, bestValue),
			Citations: []models.Citation{{
				Source:    "row",
				Title:     "Matched record",
				Relevance: 0.99,
				Snippet:   snippet(bestRowText),
			}},
			Confidence:    0.9,
			RequiresHuman: false,
		},
		Context: convCtx,
	}
}
