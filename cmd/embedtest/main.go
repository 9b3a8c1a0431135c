package main

// Extract and embed local PDFs in one batch call:
//   go run ./cmd/embedtest -model text-embedding-3-small resume1.pdf resume2.pdf

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"jobmatch-backend/internal/embedding"
	"jobmatch-backend/internal/extract"
	"jobmatch-backend/internal/shared/config"
	"jobmatch-backend/internal/shared/telemetry"
)

type result struct {
	File       string `json:"file"`
	Chars      int    `json:"chars"`
	Truncated  bool   `json:"truncated"`
	Dimensions int    `json:"dimensions"`
}

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.Env)
	defer telemetry.Sync()

	model := flag.String("model", cfg.EmbeddingModel, "Embedding model")
	timeout := flag.Duration("timeout", time.Minute, "Overall timeout")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		exitErr("at least one PDF path is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	texts := make([]string, 0, len(paths))
	for _, path := range paths {
		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			exitErr(fmt.Sprintf("%s: only PDF files are supported", path))
		}
		data, err := os.ReadFile(path)
		if err != nil {
			exitErr(fmt.Sprintf("read %s: %v", path, err))
		}
		text, err := extract.FromBytes(ctx, data)
		if err != nil {
			exitErr(fmt.Sprintf("extract %s: %v", path, err))
		}
		texts = append(texts, text)
	}

	enc, err := embedding.NewOpenAIEncoder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, *model)
	if err != nil {
		exitErr(err.Error())
	}
	vectors, err := enc.EmbedBatch(ctx, texts)
	if err != nil {
		exitErr(fmt.Sprintf("embed: %v", err))
	}

	out := make([]result, 0, len(paths))
	for i, path := range paths {
		_, truncated := embedding.Truncate(texts[i])
		out = append(out, result{
			File:       filepath.Base(path),
			Chars:      utf8.RuneCountInString(texts[i]),
			Truncated:  truncated,
			Dimensions: len(vectors[i]),
		})
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		exitErr(fmt.Sprintf("write output: %v", err))
	}
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
