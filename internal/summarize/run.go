// Package summarize asks the local model for a (summary, category)
// suggestion per new or changed file. Progress is checkpointed to the
// pending file after every document, so an interrupted run resumes
// with only the unprocessed remainder.
package summarize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ldmathes/dms/internal/config"
	"github.com/ldmathes/dms/internal/fsutil"
	"github.com/ldmathes/dms/internal/ollama"
	"github.com/ldmathes/dms/internal/scan"
	"github.com/ldmathes/dms/internal/state"
	"github.com/ldmathes/dms/internal/ui"
)

type Options struct {
	Model  string // override the configured model
	DryRun bool
}

// Suggester is the model-call seam; *ollama.Client satisfies it.
type Suggester interface {
	CheckModel(ctx context.Context) error
	Suggest(ctx context.Context, prompt string, temperature float64) (*ollama.Suggestion, error)
}

// Run executes one summarization pass over the last scan report.
func Run(ctx context.Context, log *slog.Logger, out io.Writer, cfg config.Config, docDir string, opts Options) error {
	if _, err := os.Stat(docDir); err != nil {
		return fmt.Errorf("doc directory: %w", err)
	}

	model := cfg.OllamaModel
	if opts.Model != "" {
		model = opts.Model
	}
	client := ollama.New(cfg.OllamaHost, model)
	defer client.Close()

	return run(ctx, log, out, cfg, docDir, opts, client, model)
}

func run(ctx context.Context, log *slog.Logger, out io.Writer, cfg config.Config, docDir string, opts Options, client Suggester, model string) error {
	fmt.Fprintf(out, "\n%s\n\n", ui.Header.Render("=== DMS SUMMARIZE ==="))
	fmt.Fprintf(out, "Model: %s\nHost:  %s\n\n", model, cfg.OllamaHost)

	// Fail the whole run fast when the service is down, instead of
	// failing file by file N times.
	probeCtx, cancel := context.WithTimeout(ctx, cfg.ProbeTimeout)
	err := client.CheckModel(probeCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("summarization service unavailable: %w", err)
	}

	st, err := state.LoadOrEmpty(docDir)
	if err != nil {
		return err
	}
	categories := st.CandidateCategories()

	report, err := scan.LoadReport(docDir)
	if err != nil {
		return err
	}
	work := workItems(docDir, report)
	// A scan report can outlive an apply; anything the store already
	// holds at the same content hash needs no new summary.
	work = slices.DeleteFunc(work, func(item FileRef) bool {
		doc, ok := st.Documents[item.Path]
		return ok && doc.SummaryApproved && doc.Hash == item.Hash
	})
	if len(work) == 0 {
		fmt.Fprintln(out, "No files to summarize.")
		return nil
	}

	pending, err := LoadPending(docDir)
	if err != nil {
		return err
	}
	done := pending.DonePaths()
	var remaining []FileRef
	for _, item := range work {
		if !done[item.Path] {
			remaining = append(remaining, item)
		}
	}
	if len(done) > 0 {
		fmt.Fprintf(out, "Resuming: %d of %d already summarized\n\n", len(work)-len(remaining), len(work))
	}
	fmt.Fprintf(out, "Summarizing %d/%d file(s)...\n\n", len(remaining), len(work))

	policy := ollama.Policy{MaxAttempts: cfg.MaxAttempts, Delay: cfg.RetryDelay}
	processed, failed := 0, 0
	firstCall := true

	for i, item := range remaining {
		name := filepath.Base(item.Path)
		fmt.Fprintf(out, "[%d/%d] %s\n", len(done)+i+1, len(work), name)

		full := filepath.Join(docDir, strings.TrimPrefix(item.Path, "./"))
		if !fsutil.FileExists(full) {
			fmt.Fprintf(out, "  %s file not found, skipping\n\n", ui.Warn.Render("!"))
			continue
		}

		payload := resolvePayload(docDir, item.Path, cfg.MaxPayloadBytes)
		if payload.ReadableVersion != "" {
			item.ReadableVersion = payload.ReadableVersion
			fmt.Fprintf(out, "  using conversion %s\n", payload.ReadableVersion)
		}
		prompt := BuildPrompt(name, payload.Content, categories, cfg.SummaryMaxWords)

		// The first call of a run absorbs model cold-start latency.
		timeout := cfg.GenerateTimeout
		if firstCall {
			timeout = cfg.FirstCallTimeout
		}
		firstCall = false

		var sug *ollama.Suggestion
		err := policy.Do(ctx, log, func(ctx context.Context) error {
			callCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			s, err := client.Suggest(callCtx, prompt, cfg.Temperature)
			if err != nil {
				return err
			}
			sug = s
			return nil
		})
		if err != nil {
			log.Warn("summarization failed", "path", item.Path, "error", err)
			fmt.Fprintf(out, "  %s failed: %v\n\n", ui.Warn.Render("x"), err)
			failed++
			continue
		}

		summary, truncated := fsutil.TruncateWords(sug.Summary, cfg.SummaryMaxWords)
		if truncated {
			log.Warn("summary truncated", "path", item.Path, "max_words", cfg.SummaryMaxWords, "was_truncated", true)
			fmt.Fprintf(out, "  %s summary exceeded %d words, truncated\n", ui.Warn.Render("!"), cfg.SummaryMaxWords)
		}
		if sug.IsNewCategory {
			fmt.Fprintf(out, "  new category suggested: %s\n", sug.Category)
		}
		fmt.Fprintf(out, "  Summary:  %s\n", preview(summary, 60))
		fmt.Fprintf(out, "  Category: %s\n\n", sug.Category)

		pending.Summaries = append(pending.Summaries, Pending{
			File:          item,
			Summary:       summary,
			Category:      sug.Category,
			IsNewCategory: sug.IsNewCategory,
			Title:         strings.TrimSuffix(name, filepath.Ext(name)),
			Timestamp:     time.Now().Format(time.RFC3339),
		})
		processed++

		if !opts.DryRun {
			pending.Timestamp = time.Now().Format(time.RFC3339)
			if err := pending.SavePending(docDir); err != nil {
				return fmt.Errorf("checkpoint pending summaries: %w", err)
			}
		}
	}

	if opts.DryRun {
		fmt.Fprintf(out, "DRY RUN: would save %d summary/summaries\n", len(pending.Summaries))
		return nil
	}

	fmt.Fprintf(out, "Generated %d summary/summaries (%d failed)\n", processed, failed)
	if len(pending.Summaries) > 0 {
		fmt.Fprintf(out, "Saved to %s\n\nNext step:\n  Run: dms review\n", PendingPath(docDir))
	}
	return nil
}

// workItems flattens the scan report's new and changed sets into file
// references, re-stating size/mtime for changed entries.
func workItems(docDir string, report *scan.Report) []FileRef {
	var items []FileRef
	for _, f := range report.NewFiles {
		items = append(items, FileRef{Path: f.Path, Hash: f.Hash, Size: f.Size, FileMtime: f.FileMtime})
	}
	for _, f := range report.ChangedFiles {
		ref := FileRef{Path: f.Path, Hash: f.NewHash}
		if info, err := os.Stat(filepath.Join(docDir, strings.TrimPrefix(f.Path, "./"))); err == nil {
			ref.Size = info.Size()
			ref.FileMtime = info.ModTime().Format(time.RFC3339)
		}
		items = append(items, ref)
	}
	return items
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
