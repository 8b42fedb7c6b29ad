package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rachlenko/cargo-dockerize/internal/model"
	"github.com/rachlenko/cargo-dockerize/internal/pipeline"
)

// printResult writes the outcome of a successful run in the format selected
// by --json.
func printResult(w io.Writer, res *pipeline.Result) {
	if IsJSONOutput() {
		printResultJSON(w, res)
	} else {
		printResultText(w, res)
	}
}

// printResultJSON outputs the full result document.
func printResultJSON(w io.Writer, res *pipeline.Result) {
	data, _ := json.MarshalIndent(res, "", "  ")
	fmt.Fprintln(w, string(data))
}

// printResultText outputs a short summary below the progress lines.
func printResultText(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "  Image:     %s\n", res.Image)
	if extra := FormatTags(res.Tags[min(1, len(res.Tags)):]); extra != "-" {
		fmt.Fprintf(w, "  Also:      %s\n", extra)
	}
	fmt.Fprintf(w, "  Revision:  %s\n", res.Revision)
	if res.Archive != "" {
		fmt.Fprintf(w, "  Archive:   %s\n", res.Archive)
	}
}

// FormatTags joins references with ", ". An empty list is shown as "-".
func FormatTags(refs []model.ImageReference) string {
	if len(refs) == 0 {
		return "-"
	}
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}
