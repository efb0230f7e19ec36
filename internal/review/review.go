// Package review is the human gate between model suggestions and the
// document store. Each pending summary is presented for approval,
// editing, or recategorization; nothing reaches the store without
// passing through here (or the explicit --all bypass).
package review

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ldmathes/dms/internal/state"
	"github.com/ldmathes/dms/internal/summarize"
	"github.com/ldmathes/dms/internal/ui"
)

// Run walks the pending summaries interactively. With all set, every
// pending summary is approved without prompting.
func Run(log *slog.Logger, docDir string, all bool, in io.Reader, out io.Writer) error {
	pending, err := summarize.LoadPending(docDir)
	if err != nil {
		return err
	}
	if len(pending.Summaries) == 0 {
		fmt.Fprintln(out, "No pending summaries to review. Run: dms summarize")
		return nil
	}

	st, err := state.LoadOrEmpty(docDir)
	if err != nil {
		return err
	}
	categories := st.CandidateCategories()

	approved, err := summarize.LoadApproved(docDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%s\n\n", ui.Header.Render("=== DMS REVIEW ==="))
	fmt.Fprintf(out, "Pending summaries: %d\n\n", len(pending.Summaries))

	if all {
		approved.Summaries = append(approved.Summaries, pending.Summaries...)
		approved.Timestamp = pending.Timestamp
		if err := approved.SaveApproved(docDir); err != nil {
			return err
		}
		if err := summarize.RemovePending(docDir); err != nil {
			return err
		}
		log.Info("bulk approval", "count", len(pending.Summaries))
		fmt.Fprintf(out, "Approved all %d summary/summaries.\n\nNext step:\n  Run: dms apply\n", len(pending.Summaries))
		return nil
	}

	reader := bufio.NewReader(in)
	var remaining []summarize.Pending
	approvedNow := 0
	quit := false

	for i, p := range pending.Summaries {
		if quit {
			remaining = append(remaining, p)
			continue
		}
		fmt.Fprintf(out, "%s\n\n", renderCard(i+1, len(pending.Summaries), p))

		item := p
	prompt:
		for {
			fmt.Fprint(out, "[a]pprove / [e]dit summary / [c]hange category / [s]kip / [q]uit [a]: ")
			choice, err := readLine(reader)
			if err != nil {
				// EOF behaves like quit so piped input cannot loop.
				quit = true
				remaining = append(remaining, item)
				break prompt
			}
			switch strings.ToLower(choice) {
			case "", "a":
				approved.Summaries = append(approved.Summaries, item)
				approvedNow++
				fmt.Fprintf(out, "%s approved\n\n", ui.OK.Render("+"))
				break prompt
			case "e":
				fmt.Fprint(out, "New summary: ")
				text, err := readLine(reader)
				if err != nil {
					quit = true
					remaining = append(remaining, item)
					break prompt
				}
				if text != "" {
					item.Summary = text
				}
			case "c":
				next, ok := pickCategory(reader, out, categories, item.Category)
				if !ok {
					quit = true
					remaining = append(remaining, item)
					break prompt
				}
				item.Category = next
				item.IsNewCategory = !st.HasCategory(next)
			case "s":
				remaining = append(remaining, item)
				fmt.Fprintf(out, "%s skipped\n\n", ui.Muted.Render("-"))
				break prompt
			case "q":
				quit = true
				remaining = append(remaining, item)
				break prompt
			default:
				fmt.Fprintln(out, "Unrecognized choice.")
			}
		}
	}

	if approvedNow > 0 {
		if err := approved.SaveApproved(docDir); err != nil {
			return err
		}
	}
	if len(remaining) == 0 {
		if err := summarize.RemovePending(docDir); err != nil {
			return err
		}
	} else {
		pending.Summaries = remaining
		if err := pending.SavePending(docDir); err != nil {
			return err
		}
	}

	log.Info("review pass", "approved", approvedNow, "remaining", len(remaining))
	fmt.Fprintf(out, "Approved: %d, remaining: %d\n", approvedNow, len(remaining))
	if approvedNow > 0 {
		fmt.Fprintln(out, "\nNext step:\n  Run: dms apply")
	}
	return nil
}

func renderCard(idx, total int, p summarize.Pending) string {
	name := filepath.Base(p.File.Path)
	var sb strings.Builder
	sb.WriteString(ui.Label.Render(fmt.Sprintf("[%d/%d] %s", idx, total, name)))
	sb.WriteString("\n\n")
	sb.WriteString(p.Summary)
	sb.WriteString("\n\n")
	sb.WriteString(ui.Muted.Render("Category: "))
	sb.WriteString(p.Category)
	if p.IsNewCategory {
		sb.WriteString(ui.Warn.Render("  (new category)"))
	}
	return ui.Card.Render(sb.String())
}

// pickCategory lets the reviewer choose an existing category by number
// or name, or type a brand-new one. ok is false on input EOF.
func pickCategory(reader *bufio.Reader, out io.Writer, categories []string, current string) (string, bool) {
	fmt.Fprintln(out, "Categories:")
	for i, c := range categories {
		marker := " "
		if c == current {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s %d. %s\n", marker, i+1, c)
	}
	fmt.Fprint(out, "Pick a number, or type a new category name: ")
	choice, err := readLine(reader)
	if err != nil {
		return "", false
	}
	if choice == "" {
		return current, true
	}
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(categories) {
		return categories[n-1], true
	}
	return choice, true
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
