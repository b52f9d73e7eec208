package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/commercetxt/commercetxt/cjson"
	"github.com/commercetxt/commercetxt/internal/limits"
	"github.com/commercetxt/commercetxt/metrics"
	"github.com/commercetxt/commercetxt/model"
	"github.com/commercetxt/commercetxt/parser"
	"github.com/commercetxt/commercetxt/shard"
	"github.com/commercetxt/commercetxt/validator"
)

var (
	shardsGlob       string
	shardsAsText     bool
	shardsNoCrossDoc bool
)

var shardsCmd = &cobra.Command{
	Use:   "shards",
	Short: "Generate deduplicated retrieval shards for a catalog of CommerceTXT documents",
	Long: `shards expands a glob pattern into a batch of CommerceTXT documents,
validates each, and emits the deduplicated shard set across the whole
batch (§4.4's generate_batch, with cross-product dedup on by default).`,
	RunE: runShards,
}

func init() {
	shardsCmd.Flags().StringVar(&shardsGlob, "glob", "", "glob pattern selecting documents (required)")
	shardsCmd.Flags().BoolVar(&shardsAsText, "as-text", false, "emit only shard text, one per line")
	shardsCmd.Flags().BoolVar(&shardsNoCrossDoc, "no-cross-dedup", false, "disable deduplication across documents in the batch")
	_ = shardsCmd.MarkFlagRequired("glob")
}

func runShards(cmd *cobra.Command, args []string) error {
	lim, _, err := loadConfig(flagConfigPath)
	if err != nil {
		return err
	}

	matches, err := doublestar.FilepathGlob(shardsGlob)
	if err != nil {
		return fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintf(os.Stderr, "no documents matched glob %q\n", shardsGlob)
		return &exitError{code: 1}
	}

	docs, err := parseBatch(matches, lim)
	if err != nil {
		return err
	}

	shards := shard.New().GenerateBatch(docs, !shardsNoCrossDoc)
	for _, s := range shards {
		metrics.ShardsEmitted.WithLabelValues(s.Metadata.AttrType).Inc()
	}

	if shardsAsText {
		for _, s := range shards {
			fmt.Println(s.Text)
		}
		return nil
	}

	out, err := cjson.MarshalIndent(shards, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// generateShardBatch supports --glob on the top-level parse command: a
// quick batch shard summary alongside the single document's own
// status/JSON/prompt output, resolved relative to path's directory.
func generateShardBatch(path, pattern string, lim limits.Limits) error {
	base := filepath.Dir(path)
	full := pattern
	if !filepath.IsAbs(pattern) {
		full = filepath.Join(base, pattern)
	}
	matches, err := doublestar.FilepathGlob(full)
	if err != nil {
		return fmt.Errorf("invalid glob pattern: %w", err)
	}

	docs, err := parseBatch(matches, lim)
	if err != nil {
		return err
	}

	shards := shard.New().GenerateBatch(docs, true)
	for _, s := range shards {
		metrics.ShardsEmitted.WithLabelValues(s.Metadata.AttrType).Inc()
	}
	fmt.Fprintf(os.Stderr, "batch: %d documents, %d deduplicated shards\n", len(docs), len(shards))
	return nil
}

func parseBatch(paths []string, lim limits.Limits) ([]*model.Result, error) {
	docs := make([]*model.Result, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		doc := parser.Parse(string(data), parser.Options{Nested: true, Limits: lim})
		doc.SourcePath = p
		v := validator.New()
		_ = v.Validate(doc)
		docs = append(docs, doc)
	}
	return docs, nil
}
