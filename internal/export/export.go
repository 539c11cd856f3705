// Package export renders a plan as downloadable CSV and JSON documents.
package export

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kalambet/semplan/internal/plan"
)

// Download file names.
const (
	CSVFileName  = "sem_plan_keywords.csv"
	JSONFileName = "sem_plan.json"

	CSVContentType  = "text/csv"
	JSONContentType = "application/json"
)

// CSVHeader lists the keyword export columns.
var CSVHeader = []string{"group", "keyword", "volume", "competition", "cpc_low", "cpc_high"}

// CSV renders one row per keyword across all ad groups. Every value is
// double-quoted with embedded quotes doubled. The header line is followed by
// a newline even when there are no rows; rows are newline-separated with no
// trailing newline.
func CSV(s plan.Session) []byte {
	var rows []string
	for _, g := range s.AdGroups {
		for _, k := range g.Keywords {
			rows = append(rows, csvRow(
				g.Name,
				k.Keyword,
				strconv.Itoa(k.AvgMonthlySearches),
				k.CompetitionLabel(),
				formatNumber(k.CPCLow),
				formatNumber(k.CPCHigh),
			))
		}
	}

	var buf bytes.Buffer
	buf.WriteString(strings.Join(CSVHeader, ","))
	buf.WriteByte('\n')
	buf.WriteString(strings.Join(rows, "\n"))
	return buf.Bytes()
}

// JSON renders the session's groups, themes, budget and inputs with a
// two-space indent.
func JSON(s plan.Session) ([]byte, error) {
	doc := s.Document()
	if doc.AdGroups == nil {
		doc.AdGroups = []plan.AdGroup{}
	}
	if doc.Themes == nil {
		doc.Themes = []plan.PMaxTheme{}
	}
	if doc.Budget.Breakdown == nil {
		doc.Budget.Breakdown = []plan.BudgetLine{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

func csvRow(fields ...string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
