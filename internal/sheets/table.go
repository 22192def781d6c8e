package sheets

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jredh-dev/hochzeit/pkg/models"
)

// Recognized header names, compared case-insensitively.
const (
	colID          = "id"
	colCategory    = "category"
	colTitle       = "title"
	colDescription = "description"
	colPrice       = "price"
	colParts       = "parts"
	colPayed       = "payed"
	colURL         = "url"
	colImageURL    = "imageurl"
)

type table struct {
	gifts    []models.Gift
	payedCol int // -1 when absent
}

// rowOf returns the sheet row currently holding the gift with id.
func (t *table) rowOf(id string) (int, bool) {
	for _, g := range t.gifts {
		if g.ID == id {
			return g.RowNumber, true
		}
	}
	return 0, false
}

// parseTable converts raw sheet values into gifts. Rows without an id are
// skipped; row numbers account for the header row.
func parseTable(values [][]interface{}) *table {
	tbl := &table{payedCol: -1}
	if len(values) == 0 {
		return tbl
	}

	index := make(map[string]int, len(values[0]))
	for i, h := range values[0] {
		key := strings.ToLower(strings.TrimSpace(cellString(h)))
		if _, dup := index[key]; !dup && key != "" {
			index[key] = i
		}
	}
	col := func(row []interface{}, key string) string {
		i, ok := index[key]
		if !ok || i >= len(row) {
			return ""
		}
		return cellString(row[i])
	}
	if i, ok := index[colPayed]; ok {
		tbl.payedCol = i
	}

	for offset, row := range values[1:] {
		id := strings.TrimSpace(col(row, colID))
		if id == "" {
			continue
		}

		total := int(math.Round(toNumber(col(row, colParts))))
		contributed := int(math.Round(toNumber(col(row, colPayed))))

		tbl.gifts = append(tbl.gifts, models.Gift{
			ID:               id,
			Category:         col(row, colCategory),
			Title:            col(row, colTitle),
			Description:      col(row, colDescription),
			Price:            col(row, colPrice),
			URL:              col(row, colURL),
			ImageURL:         col(row, colImageURL),
			TotalParts:       max(1, total),
			ContributedParts: max(0, contributed),
			RowNumber:        offset + 2,
		})
	}
	return tbl
}

// contributedFromCell reads a single payed cell the same way parseTable does.
func contributedFromCell(values [][]interface{}) int {
	if len(values) == 0 || len(values[0]) == 0 {
		return 0
	}
	return max(0, int(math.Round(toNumber(cellString(values[0][0])))))
}

// toNumber reads a sheet cell as a number, accepting a decimal comma.
// Anything unreadable is zero.
func toNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0
	}
	return n
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// ColumnLetter converts a zero-based column index to A1 notation (0 → A,
// 25 → Z, 26 → AA).
func ColumnLetter(index int) string {
	var name []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		name = append([]byte{byte('A' + (n-1)%26)}, name...)
	}
	return string(name)
}
