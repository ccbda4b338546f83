// Package output provides utilities for formatting and displaying validation
// reports, branch totals and normalization updates.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/iwvelando/plan-weights/internal/weights"
	"github.com/iwvelando/plan-weights/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// WriteReport renders a validation result in the requested format.
func WriteReport(w io.Writer, format string, result weights.Result) error {
	switch format {
	case constants.OutputFormatCSV:
		return reportCSV(w, result)
	case constants.OutputFormatJSON:
		return writeJSON(w, reportPayload{
			Valid:  result.Valid(),
			Errors: result.Errors(),
			Issues: result.Issues(),
		})
	default:
		return reportPretty(w, result)
	}
}

type reportPayload struct {
	Valid  bool                `json:"valid"`
	Errors map[string][]string `json:"errors"`
	Issues []weights.Issue     `json:"issues"`
}

func reportPretty(w io.Writer, result weights.Result) error {
	p := message.NewPrinter(language.English)
	if result.Valid() {
		_, err := p.Fprintf(w, "Plan is valid.\n")
		return err
	}
	if _, err := p.Fprintf(w, "--- %d issue(s) found ---\n", result.Len()); err != nil {
		return err
	}
	for _, path := range result.Paths() {
		label := path
		if label == "" {
			label = "(plan)"
		}
		if _, err := p.Fprintf(w, "%s\n", label); err != nil {
			return err
		}
		for _, msg := range result.Messages(path) {
			if _, err := p.Fprintf(w, "  - %s\n", msg); err != nil {
				return err
			}
		}
	}
	return nil
}

func reportCSV(w io.Writer, result weights.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"path", "kind", "message"}); err != nil {
		return err
	}
	for _, issue := range result.Issues() {
		if err := cw.Write([]string{issue.Path.String(), issue.Kind.String(), issue.Message}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTotals renders the sibling sum of every branch point.
func WriteTotals(w io.Writer, format string, totals []weights.BranchTotal) error {
	switch format {
	case constants.OutputFormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"path", "sum", "children", "balanced"}); err != nil {
			return err
		}
		for _, total := range totals {
			record := []string{
				total.Path.String(),
				fmt.Sprintf("%.2f", total.Sum),
				fmt.Sprintf("%d", total.Children),
				fmt.Sprintf("%t", total.Balanced),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case constants.OutputFormatJSON:
		return writeJSON(w, totals)
	default:
		p := message.NewPrinter(language.English)
		if _, err := p.Fprintf(w, "Branch point | Total | Status\n"); err != nil {
			return err
		}
		if _, err := p.Fprintf(w, "____________ | _____ | ______\n"); err != nil {
			return err
		}
		for _, total := range totals {
			status := "ok"
			if !total.Balanced {
				status = "unbalanced"
			}
			if _, err := p.Fprintf(w, "%s | %.2f%% | %s\n", total.Path.String(), total.Sum, status); err != nil {
				return err
			}
		}
		return nil
	}
}

// WriteUpdates renders normalization updates.
func WriteUpdates(w io.Writer, format string, updates []weights.Update) error {
	switch format {
	case constants.OutputFormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"path", "weight"}); err != nil {
			return err
		}
		for _, u := range updates {
			if err := cw.Write([]string{u.Path.String(), fmt.Sprintf("%.2f", u.Value)}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case constants.OutputFormatJSON:
		return writeJSON(w, weights.UpdatesMap(updates))
	default:
		p := message.NewPrinter(language.English)
		if len(updates) == 0 {
			_, err := p.Fprintf(w, "Nothing to normalize.\n")
			return err
		}
		for _, u := range updates {
			if _, err := p.Fprintf(w, "%s -> %.2f%%\n", u.Path.String(), u.Value); err != nil {
				return err
			}
		}
		return nil
	}
}

func writeJSON(w io.Writer, payload interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
