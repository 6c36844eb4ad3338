// One-shot tool: run the dashboard pipeline for a single query and write
// the sentiment artifact to disk as CSV or Parquet.
//
// Usage:
//
//	go run cmd/sentiboard-export/main.go -ticker TSLA -start 2024-01-01 -end 2024-03-31 [-low -1] [-high 1] [-format csv] [-out path] [-config path]
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"sentiboard/internal/cache"
	"sentiboard/internal/config"
	"sentiboard/internal/domain"
	"sentiboard/internal/export"
	"sentiboard/internal/feed"
	"sentiboard/internal/pipeline"
	"sentiboard/internal/util"
)

func main() {
	ticker := flag.String("ticker", "", "ticker symbol (required)")
	start := flag.String("start", "", "start date in 2006-01-02 form (required)")
	end := flag.String("end", "", "end date in 2006-01-02 form (required)")
	low := flag.Float64("low", -1, "sentiment band low bound")
	high := flag.Float64("high", 1, "sentiment band high bound")
	format := flag.String("format", export.FormatCSV, "artifact format: csv or parquet")
	out := flag.String("out", "", "output path (default: the artifact filename in the working directory)")
	cfgFlag := flag.String("config", "", "config file path (default: $SENTIBOARD_CONFIG or config.yaml)")
	flag.Parse()

	cfgPath := "config.yaml"
	if p := os.Getenv("SENTIBOARD_CONFIG"); p != "" {
		cfgPath = p
	}
	if *cfgFlag != "" {
		cfgPath = *cfgFlag
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	if *format != export.FormatCSV && *format != export.FormatParquet {
		log.Fatalf("unknown format %q: use csv or parquet", *format)
	}

	q := domain.Query{Ticker: *ticker, Low: *low, High: *high}
	if q.Start, err = domain.ParseDate(*start); err != nil {
		log.Fatalf("invalid start date %q: use %s", *start, domain.DateFormat)
	}
	if q.End, err = domain.ParseDate(*end); err != nil {
		log.Fatalf("invalid end date %q: use %s", *end, domain.DateFormat)
	}

	store, err := cache.New(cfg.Cache, logger)
	if err != nil {
		log.Fatalf("initializing cache: %v", err)
	}
	defer store.Close()

	gen := feed.NewSynthetic(cfg.Generator.Seed, cfg.Generator.KeepProbability, cfg.Generator.Tickers)
	runner := pipeline.NewRunner(gen, store, cfg.Cache.Backend, logger)

	res, err := runner.Run(context.Background(), q)
	if err != nil {
		log.Fatalf("error: %v", err)
	}

	path := *out
	if path == "" {
		path = export.Filename(res.Query.Ticker, res.Query.Start, res.Query.End, *format)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("creating %s: %v", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("creating %s: %v", path, err)
	}
	if err := export.Write(f, *format, res.Sentiment); err != nil {
		f.Close()
		log.Fatalf("writing %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("closing %s: %v", path, err)
	}

	corr := "undefined"
	if res.Correlation.Defined {
		corr = strconv.FormatFloat(res.Correlation.Value, 'f', 4, 64)
	}
	slog.Info("export complete",
		"path", path,
		"rows", len(res.Sentiment),
		"days", res.Meta.Days,
		"cache_hit", res.Meta.CacheHit,
		"correlation", corr)
}
