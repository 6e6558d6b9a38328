package validator

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ANSI escape sequences used by the console formatter.
const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
	ansiBold   = "\x1b[1m"
)

// FormatText renders the result as a plain report: one issue per
// line, grouped by category, followed by a summary line.
func FormatText(result *Result) string {
	var b strings.Builder

	groups := make(map[string][]Issue)
	var order []string
	for _, issue := range result.Issues {
		cat := describeCode(issue.Code)
		if _, seen := groups[cat]; !seen {
			order = append(order, cat)
		}
		groups[cat] = append(groups[cat], issue)
	}
	sort.Strings(order)

	for _, cat := range order {
		fmt.Fprintf(&b, "%s:\n", cat)
		for _, issue := range groups[cat] {
			fmt.Fprintf(&b, "  %s\n", issue.String())
			if issue.Suggestion != "" {
				fmt.Fprintf(&b, "    suggestion: %s\n", issue.Suggestion)
			}
		}
	}

	fmt.Fprintf(&b, "%s\n", summaryLine(result))
	return b.String()
}

// FormatConsole renders the result with ANSI colors: errors red,
// warnings yellow, info cyan. Suitable for terminals only.
func FormatConsole(result *Result) string {
	var b strings.Builder
	for _, issue := range result.Issues {
		color := ansiCyan
		switch issue.Severity {
		case Error:
			color = ansiRed
		case Warning:
			color = ansiYellow
		}
		fmt.Fprintf(&b, "%s%s%s\n", color, issue.String(), ansiReset)
		if issue.Suggestion != "" {
			fmt.Fprintf(&b, "  suggestion: %s\n", issue.Suggestion)
		}
	}
	if result.Passed {
		fmt.Fprintf(&b, "%s%s%s\n", ansiBold, summaryLine(result), ansiReset)
	} else {
		fmt.Fprintf(&b, "%s%s%s%s\n", ansiBold, ansiRed, summaryLine(result), ansiReset)
	}
	return b.String()
}

func summaryLine(result *Result) string {
	verdict := "PASSED"
	if !result.Passed {
		verdict = "FAILED"
	}
	return fmt.Sprintf("%s: %d errors, %d warnings, %d info (%d constructs)",
		verdict, result.Errors, result.Warnings, result.Infos, result.TotalConstructs)
}

type jsonPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type jsonIssue struct {
	Severity   string       `json:"severity"`
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Position   jsonPosition `json:"position"`
	Suggestion string       `json:"suggestion,omitempty"`
	Context    string       `json:"context,omitempty"`
}

type jsonSummary struct {
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
	TotalConstructs int `json:"total_constructs"`
}

type jsonReport struct {
	Passed  bool        `json:"passed"`
	Summary jsonSummary `json:"summary"`
	Issues  []jsonIssue `json:"issues"`
}

// FormatJSON renders the result as an indented JSON document with a
// trailing newline. The issues array is always present, possibly
// empty.
func FormatJSON(result *Result) (string, error) {
	report := jsonReport{
		Passed: result.Passed,
		Summary: jsonSummary{
			Errors:          result.Errors,
			Warnings:        result.Warnings,
			Info:            result.Infos,
			TotalConstructs: result.TotalConstructs,
		},
		Issues: make([]jsonIssue, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		report.Issues = append(report.Issues, jsonIssue{
			Severity:   strings.ToLower(issue.Severity.String()),
			Code:       issue.Code,
			Message:    issue.Message,
			Position:   jsonPosition{Line: issue.Pos.Line, Column: issue.Pos.Column},
			Suggestion: issue.Suggestion,
			Context:    issue.Context,
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return "", fmt.Errorf("encode validation report: %w", err)
	}
	return buf.String(), nil
}

// FormatCSV renders the result as RFC-4180 CSV with a header row.
func FormatCSV(result *Result) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Severity", "Code", "Line", "Column", "Message", "Suggestion", "Context"}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, issue := range result.Issues {
		record := []string{
			strings.ToLower(issue.Severity.String()),
			issue.Code,
			fmt.Sprintf("%d", issue.Pos.Line),
			fmt.Sprintf("%d", issue.Pos.Column),
			issue.Message,
			issue.Suggestion,
			issue.Context,
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return buf.String(), nil
}
