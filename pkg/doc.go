// Package pkg holds the libraries behind wordbubbles, which turns the word
// and emoji counts of a messaging "year in review" into packed bubble clouds.
//
// # Overview
//
//  1. [report] - Decode the report payload and pick a frequency table
//  2. [bubble] - Rank items, size them, and pack circles without overlap
//  3. [cloud] - The serialized layout (bubbles plus the options that made them)
//  4. [render] - Turn a cloud into SVG, PNG, PDF or JSON
//  5. [pipeline] - Orchestration (layout → render) with caching
//
// Supporting packages:
//
//   - [cache]: file, Redis and no-op stores with content-addressed keys
//   - [config]: TOML configuration with environment overrides
//   - [errors]: coded errors shared by the CLI and HTTP API
//   - [httputil]: fetch report payloads over HTTP
//   - [observability]: hooks for metrics and tracing
//   - [buildinfo]: version information stamped at build time
//
// # Data Flow
//
//	report.json (or a bare {"label": count} object)
//	         ↓
//	    [report] package (select words or emojis)
//	         ↓
//	    [bubble] package (rank → radius → pack → re-center)
//	         ↓
//	    [render] package (styles + sinks)
//	         ↓
//	    SVG/PNG/PDF/JSON output
//
// # Quick Start
//
//	items, _ := report.ReadItems("report.json", report.SourceWords)
//	circles := bubble.Pack(items, bubble.DefaultOptions())
//
// Or through the pipeline, which caches layouts and artifacts:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, err := runner.Execute(ctx, items, pipeline.Options{Formats: []string{"svg"}})
//
// [report]: github.com/matzehuels/wordbubbles/pkg/report
// [bubble]: github.com/matzehuels/wordbubbles/pkg/bubble
// [cloud]: github.com/matzehuels/wordbubbles/pkg/cloud
// [render]: github.com/matzehuels/wordbubbles/pkg/render
// [pipeline]: github.com/matzehuels/wordbubbles/pkg/pipeline
// [cache]: github.com/matzehuels/wordbubbles/pkg/cache
// [config]: github.com/matzehuels/wordbubbles/pkg/config
// [errors]: github.com/matzehuels/wordbubbles/pkg/errors
// [httputil]: github.com/matzehuels/wordbubbles/pkg/httputil
// [observability]: github.com/matzehuels/wordbubbles/pkg/observability
// [buildinfo]: github.com/matzehuels/wordbubbles/pkg/buildinfo
package pkg
