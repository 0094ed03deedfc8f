// Command paginate renders a markdown or HTML file into a positioned-
// element listing, exercising the full pipeline with the debug renderer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/foliopress/paginator/builder"
	"github.com/foliopress/paginator/frontend/html"
	"github.com/foliopress/paginator/frontend/markdown"
	"github.com/foliopress/paginator/paginate"
	"github.com/foliopress/paginator/pipeline"
	"github.com/foliopress/paginator/resources"
)

func main() {
	format := flag.String("format", "", "input format: md or html (default: by extension)")
	workers := flag.Int("workers", 0, "layout worker count (default: cpu-based)")
	footer := flag.String("footer", "", "footer template, e.g. \"Page {page_num} of {total_pages}\"")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: paginate [flags] <input file>")
		os.Exit(1)
	}
	input := flag.Arg(0)

	data, err := os.ReadFile(input)
	if err != nil {
		fatal(err)
	}

	tb := builder.NewTreeBuilder()
	switch pickFormat(*format, input) {
	case "html":
		err = html.ConvertString(string(data), tb)
	default:
		err = markdown.Convert(data, tb)
	}
	if err != nil {
		fatal(err)
	}
	root, err := tb.Result()
	if err != nil {
		fatal(err)
	}

	master := paginate.DefaultMaster()
	if *footer != "" {
		master.FooterHeight = 24
		master.FooterText = *footer
	}

	p, err := pipeline.New().
		WithTemplateRoot(root).
		WithWorkerCount(*workers).
		WithPageMasters(master).
		WithResources(resources.NewFilesystem(filepath.Dir(input))).
		Build()
	if err != nil {
		fatal(err)
	}

	records := func(yield func(any) bool) {
		yield(struct{}{})
	}
	summary, err := p.Generate(context.Background(), records, pipeline.NewDebugRenderer(), os.Stdout)
	if err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "%d pages, %d records ok, %d skipped\n",
		summary.Pages, summary.Succeeded, summary.Skipped)
}

func pickFormat(flagVal, path string) string {
	if flagVal != "" {
		return flagVal
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "html"
	}
	return "md"
}

// fatal prints the error and exits nonzero.
func fatal(err error) {
	fmt.Fprintln(os.Stderr, "paginate:", err)
	os.Exit(1)
}
