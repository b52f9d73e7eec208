package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/commercetxt/commercetxt/bridge"
	"github.com/commercetxt/commercetxt/cjson"
	"github.com/commercetxt/commercetxt/clog"
	"github.com/commercetxt/commercetxt/internal/limits"
	"github.com/commercetxt/commercetxt/metrics"
	"github.com/commercetxt/commercetxt/model"
	"github.com/commercetxt/commercetxt/parser"
	"github.com/commercetxt/commercetxt/resolver"
	"github.com/commercetxt/commercetxt/validator"
	"go.uber.org/zap"
)

var (
	flagJSON       bool
	flagStrict     bool
	flagPrompt     bool
	flagConfigPath string
	flagGlob       string
)

// exitError carries a process exit code alongside a message already
// written to stderr, so RunE can report failure without cobra
// re-printing the same text.
type exitError struct{ code int }

func (e *exitError) Error() string { return "" }

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	logger := clog.New(os.Getenv("COMMERCETXT_LOG_LEVEL"))
	defer logger.Sync() //nolint:errcheck

	lim, trustedDomains, err := loadConfig(flagConfigPath)
	if err != nil {
		return err
	}

	doc, err := parseWithAncestors(path, lim)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "File not found: %s\n", path)
			return &exitError{code: 1}
		}
		return err
	}
	metrics.DocumentsParsed.WithLabelValues(fmt.Sprintf("%t", doc.HasWarnings())).Inc()

	v := &validator.Validator{Strict: flagStrict, TrustedDomains: trustedDomains}
	if verr := v.Validate(doc); verr != nil {
		logger.Debug("strict validation stopped early", zap.Error(verr))
	}
	metrics.ValidationStatus.WithLabelValues(doc.Status()).Inc()

	if flagGlob != "" {
		if err := generateShardBatch(path, flagGlob, lim); err != nil {
			logger.Warn("batch shard generation failed", zap.Error(err))
		}
	}

	switch {
	case flagJSON:
		out, err := cjson.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	case flagPrompt:
		fmt.Println("=== GENERATED AI PROMPT ===")
		fmt.Println(bridge.Prompt(doc))
		report := bridge.Readiness(doc)
		fmt.Printf("Readiness: %d (%s)\n", report.Score, report.Grade)
	default:
		fmt.Printf("Status: %s\n", doc.Status())
		for _, e := range doc.Errors {
			fmt.Printf("ERROR: %s\n", e)
		}
		for _, w := range doc.Warnings {
			fmt.Printf("WARNING: %s\n", w)
		}
	}

	if flagStrict && doc.HasErrors() {
		return &exitError{code: 1}
	}
	return nil
}

// parseWithAncestors parses path and merges in every commerce.txt
// ancestor discovered above it, root-most first, then the document
// itself last so its values win (§4.3a).
func parseWithAncestors(path string, lim limits.Limits) (*model.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	opts := parser.Options{Nested: true, Strict: flagStrict, Limits: lim}
	leaf := parser.Parse(string(data), opts)
	leaf.SourcePath = path

	var merged *model.Result
	for _, ancestorPath := range discoverAncestors(path) {
		ancestorData, err := os.ReadFile(ancestorPath)
		if err != nil {
			continue
		}
		ancestor := parser.Parse(string(ancestorData), opts)
		ancestor.SourcePath = ancestorPath
		if merged == nil {
			merged = ancestor
		} else {
			merged = resolver.Merge(merged, ancestor)
		}
	}

	if merged == nil {
		return leaf, nil
	}
	return resolver.Merge(merged, leaf), nil
}
