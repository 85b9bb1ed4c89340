package headercheck

import (
	"encoding/json"
	"fmt"
	"io"
)

// Reporter formats check results.
type Reporter interface {
	Report(s *Suite) error
}

// TextReporter prints one line per failed check, or per check when verbose,
// followed by a summary.
type TextReporter struct {
	writer  io.Writer
	verbose bool
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(w io.Writer, verbose bool) *TextReporter {
	return &TextReporter{writer: w, verbose: verbose}
}

// Report implements Reporter.
func (r *TextReporter) Report(s *Suite) error {
	for _, res := range s.Results {
		if res.Passed && !r.verbose {
			continue
		}
		status := "PASS"
		if !res.Passed {
			status = "FAIL"
		}
		label := res.Name
		if res.Module != "" {
			label = res.Module + "/" + res.Name
		}
		fmt.Fprintf(r.writer, "[%s] %s\n", status, label)
		if !res.Passed {
			fmt.Fprintf(r.writer, "       %s\n", res.Message)
		}
	}

	fmt.Fprintf(r.writer, "\n--- Summary ---\n")
	fmt.Fprintf(r.writer, "Total:   %d\n", len(s.Results))
	fmt.Fprintf(r.writer, "Passed:  %d\n", s.PassCount)
	_, err := fmt.Fprintf(r.writer, "Failed:  %d\n", s.FailCount)
	return err
}

// JSONReporter writes the suite as JSON.
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{writer: w, pretty: pretty}
}

// JSONSuite is the JSON representation of a suite.
type JSONSuite struct {
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Checks []JSONResult `json:"checks"`
}

// JSONResult is the JSON representation of one result.
type JSONResult struct {
	Module  string `json:"module,omitempty"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Report implements Reporter.
func (r *JSONReporter) Report(s *Suite) error {
	js := JSONSuite{
		Total:  len(s.Results),
		Passed: s.PassCount,
		Failed: s.FailCount,
		Checks: make([]JSONResult, 0, len(s.Results)),
	}
	for _, res := range s.Results {
		status := "pass"
		if !res.Passed {
			status = "fail"
		}
		js.Checks = append(js.Checks, JSONResult{
			Module:  res.Module,
			Name:    res.Name,
			Status:  status,
			Message: res.Message,
		})
	}

	enc := json.NewEncoder(r.writer)
	if r.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(js)
}
