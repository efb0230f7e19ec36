package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXConverter dumps spreadsheet cells as tab-separated text, one
// section per sheet. Enough structure for the summarizer; not a
// faithful rendering.
type XLSXConverter struct{}

func (c *XLSXConverter) Convert(_ context.Context, src string) ([]byte, error) {
	f, err := excelize.OpenFile(src)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "[%s]\n", sheet)
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		return nil, emptyOutputErr(src)
	}
	return []byte(sb.String()), nil
}
