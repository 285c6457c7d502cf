package tabular

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// NormalizeHeader folds a header cell for comparison.
func NormalizeHeader(raw string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", " ")))
}

// IndexOf returns the column index of name in headers or -1.
func IndexOf(headers []string, name string) int {
	want := NormalizeHeader(name)
	for i, h := range headers {
		if NormalizeHeader(h) == want {
			return i
		}
	}
	return -1
}

// IndexMatching returns the first column whose normalized header satisfies match.
func IndexMatching(headers []string, match func(string) bool) int {
	for i, h := range headers {
		if match(NormalizeHeader(h)) {
			return i
		}
	}
	return -1
}

// Missing lists the required headers absent from headers.
func Missing(headers []string, required []string) []string {
	var missing []string
	for _, name := range required {
		if IndexOf(headers, name) < 0 {
			missing = append(missing, name)
		}
	}
	return missing
}

// Cell returns row[idx] or "" when idx is out of range.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Header returns the header row of rows, or nil for an empty sheet.
func Header(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

// ColumnLetter converts a zero-based column index to A1 notation (0 -> A, 26 -> AA).
func ColumnLetter(idx int) string {
	if idx < 0 {
		return ""
	}
	var out []byte
	for n := idx + 1; n > 0; n = (n - 1) / 26 {
		out = append([]byte{byte('A' + (n-1)%26)}, out...)
	}
	return string(out)
}

// EnsureHeaders guarantees that ref exists and that its header row contains
// every entry of headers, creating the sheet or appending columns as needed.
// It returns the resulting header row.
func EnsureHeaders(ctx context.Context, store Store, ref TableRef, headers []string) ([]string, error) {
	sheets, err := store.ListSheets(ctx, ref.Workbook)
	if err != nil {
		return nil, fmt.Errorf("list sheets of %s: %w", ref.Workbook, err)
	}
	exists := false
	for _, title := range sheets {
		if title == ref.Sheet {
			exists = true
			break
		}
	}
	if !exists {
		if err := store.CreateSheet(ctx, ref, headers); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", ref.Sheet, err)
		}
		return append([]string(nil), headers...), nil
	}

	rows, err := store.ReadAll(ctx, ref)
	if err != nil && !errors.Is(err, ErrSheetNotFound) {
		return nil, fmt.Errorf("read sheet %s: %w", ref.Sheet, err)
	}
	current := Header(rows)
	if len(current) == 0 {
		updates := make([]CellUpdate, 0, len(headers))
		for i, h := range headers {
			updates = append(updates, CellUpdate{Row: 0, Col: i, Value: h})
		}
		if err := store.BatchUpdate(ctx, ref, updates); err != nil {
			return nil, fmt.Errorf("write header of %s: %w", ref.Sheet, err)
		}
		return append([]string(nil), headers...), nil
	}

	missing := Missing(current, headers)
	if len(missing) == 0 {
		return current, nil
	}
	result := append([]string(nil), current...)
	updates := make([]CellUpdate, 0, len(missing))
	for _, h := range missing {
		updates = append(updates, CellUpdate{Row: 0, Col: len(result), Value: h})
		result = append(result, h)
	}
	if err := store.BatchUpdate(ctx, ref, updates); err != nil {
		return nil, fmt.Errorf("extend header of %s: %w", ref.Sheet, err)
	}
	return result, nil
}
