package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// OCRConverter shells out to tesseract for image text extraction.
// tesseract appends ".txt" to the output base it is given, so the
// conversion goes through a temp base and the result is read back.
type OCRConverter struct{}

func (c *OCRConverter) Convert(ctx context.Context, src string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "dms-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)
	outBase := filepath.Join(tmpDir, "out")

	cmd := exec.CommandContext(ctx, "tesseract", src, outBase)
	if out, err := cmd.CombinedOutput(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("tesseract not found (install it to OCR images)")
		}
		msg := strings.TrimSpace(string(out))
		if len(msg) > 150 {
			msg = msg[:150]
		}
		return nil, fmt.Errorf("tesseract: %w: %s", err, msg)
	}

	data, err := os.ReadFile(outBase + ".txt")
	if err != nil {
		return nil, fmt.Errorf("read tesseract output: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, emptyOutputErr(src)
	}
	return data, nil
}
