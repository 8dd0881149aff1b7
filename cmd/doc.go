// Package cmd hosts the awards-crawler CLI.
//
// Architecture overview:
//   - scrape: every registry source is fetched through a fallback chain
//     (chromedp headless rendering first, a rate-limited Colly GET second),
//     raw markup and screenshots are kept in the diagnostics store, records are
//     extracted with goquery (structured data, then heading scan, then list
//     heuristics) and enriched with social links, award details and an
//     optional model analysis (OpenAI or Gemini, cached in memory or Redis).
//   - aggregation: scraped records are merged behind the curated seed,
//     categories canonicalised, duplicates collapsed and the set sorted by
//     year, category and rank.
//   - emission: awardWinners.ts, awardWinners.json, awards-schema.json,
//     awardCategories.ts and the blog post are written to the output store
//     (local directory or GCS). A run summary is published to Pub/Sub and the
//     final records are snapshotted to Postgres when configured.
//   - categories: the same fetch and extract path without enrichment; only
//     awardCategories.ts is written.
//   - serve: a chi API over the output store with health probes, Prometheus
//     metrics and filtered award queries.
//
// Operational notes:
//   - Concurrency: sources run on a bounded conc pool sized by
//     pipeline.concurrency; output order never depends on scheduling.
//   - Cancellation: SIGINT/SIGTERM stop new sources from being scheduled;
//     artifacts are still written from the sources that finished.
//   - Observability: zap logs carry run ids and locators, Prometheus counters
//     track sources, fetches and enrichment steps, and OpenTelemetry spans
//     wrap the run and every source. Batch runs can dump metrics to a
//     node_exporter textfile (metrics.textfile).
//
// Quick checklist:
//   - Configure env vars with the AWARDS_ prefix (AWARDS_OUTPUT_DIR,
//     AWARDS_PIPELINE_CONCURRENCY, AWARDS_FETCH_HEADLESS_ENABLED, ...). The
//     analysis credential is read from OPENAI_API_KEY or GEMINI_API_KEY.
//   - Run locally: go run . scrape --config config.yaml
//   - Serve the dataset: go run . serve (listens on PORT when set).
package cmd
