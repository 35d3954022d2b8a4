package google

import (
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

var columns = []string{"ID", "Type", "Title", "Amount", "Category", "Description", "Date", "CreatedAt", "UpdatedAt"}

// rowIndex maps mirrored records to their 1-based sheet row.
type rowIndex struct {
	rows map[string]int
	refs []ports.RowRef
	// last is the highest row holding any value, header included.
	last int
}

func rowKey(kind core.Kind, id string) string {
	return string(kind) + ":" + id
}

// parseIndex reads an A:B values matrix. Rows with an unknown type or an
// empty id (the header, cleared rows) are skipped but still count towards last.
func parseIndex(values [][]interface{}) rowIndex {
	idx := rowIndex{rows: make(map[string]int)}
	for i, raw := range values {
		row := toStrings(raw)
		if len(row) > 0 {
			idx.last = i + 1
		}
		id := strings.TrimSpace(safeGet(row, 0))
		kind, err := core.ParseKind(safeGet(row, 1))
		if id == "" || err != nil {
			continue
		}
		key := rowKey(kind, id)
		if _, dup := idx.rows[key]; dup {
			continue
		}
		idx.rows[key] = i + 1
		idx.refs = append(idx.refs, ports.RowRef{Kind: kind, ID: id})
	}
	return idx
}

func headerRow() []interface{} {
	out := make([]interface{}, len(columns))
	for i, c := range columns {
		out[i] = c
	}
	return out
}

func formatRow(tx core.Transaction) []interface{} {
	return []interface{}{
		tx.ID,
		tx.Kind.String(),
		cellText(tx.Title),
		tx.Amount.String(),
		tx.Category,
		cellText(tx.Description),
		tx.Date.String(),
		tx.CreatedAt.UTC().Format(time.RFC3339),
		tx.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// cellText stops user text from being evaluated as a formula.
func cellText(s string) string {
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}
