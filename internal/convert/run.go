package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ldmathes/dms/internal/config"
	"github.com/ldmathes/dms/internal/scan"
	"github.com/ldmathes/dms/internal/ui"
)

// Run converts every convertible file in the last scan report's new and
// changed sets. Existing outputs are skipped, so rerunning after a
// partial failure is safe and cheap.
func Run(ctx context.Context, log *slog.Logger, out io.Writer, cfg config.Config, docDir string) error {
	if _, err := os.Stat(docDir); err != nil {
		return fmt.Errorf("doc directory: %w", err)
	}

	report, err := scan.LoadReport(docDir)
	if err != nil {
		return err
	}

	var paths []string
	for _, f := range report.NewFiles {
		paths = append(paths, f.Path)
	}
	for _, f := range report.ChangedFiles {
		paths = append(paths, f.Path)
	}

	var targets []string
	for _, p := range paths {
		if IsConvertible(p) {
			targets = append(targets, p)
		}
	}

	fmt.Fprintf(out, "\n%s\n\n", ui.Header.Render("=== DMS CONVERT ==="))
	if len(targets) == 0 {
		fmt.Fprintln(out, "No convertible files in the last scan.")
		return nil
	}

	outDir := filepath.Join(docDir, scan.DerivedDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", scan.DerivedDir, err)
	}

	converted, skipped, failed := 0, 0, 0
	for _, rel := range targets {
		name := filepath.Base(rel)
		src := filepath.Join(docDir, strings.TrimPrefix(rel, "./"))
		dst := filepath.Join(outDir, OutputName(name))

		if _, err := os.Stat(dst); err == nil {
			fmt.Fprintf(out, "  = %s (already converted)\n", name)
			skipped++
			continue
		}

		conv, _ := ForFile(name)
		fileCtx, cancel := context.WithTimeout(ctx, cfg.ConvertTimeout)
		data, err := conv.Convert(fileCtx, src)
		cancel()
		if err != nil {
			log.Warn("conversion failed", "path", rel, "error", err)
			fmt.Fprintf(out, "  %s %s: %v\n", ui.Warn.Render("x"), name, err)
			failed++
			continue
		}

		if err := os.WriteFile(dst, data, 0o644); err != nil {
			log.Warn("write conversion output", "path", dst, "error", err)
			failed++
			continue
		}
		fmt.Fprintf(out, "  %s %s -> %s/%s\n", ui.OK.Render("+"), name, scan.DerivedDir, OutputName(name))
		converted++
	}

	fmt.Fprintf(out, "\nConverted: %d, skipped: %d, failed: %d\n", converted, skipped, failed)
	if converted > 0 || skipped > 0 {
		fmt.Fprintln(out, "\nNext step:\n  Run: dms summarize")
	}
	return nil
}
