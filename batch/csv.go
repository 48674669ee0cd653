package batch

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/Mictilt/qrforge/content"
)

var (
	ErrEmptyCSV        = errors.New("batch: csv has no header row")
	ErrNoContentColumn = errors.New("batch: csv must have a 'content' column")
)

// ParseCSV reads rows from a CSV with a header. The "content" column is
// required; "type" and "label" are optional, and header names are matched
// case-insensitively. Rows may have fewer fields than the header. Rows whose
// content is blank are skipped and do not take an index.
func ParseCSV(r io.Reader) ([]Item, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyCSV
	}
	if err != nil {
		return nil, errors.Wrap(err, "batch: read csv header")
	}

	contentIdx, typeIdx, labelIdx := -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "content":
			contentIdx = i
		case "type":
			typeIdx = i
		case "label":
			labelIdx = i
		}
	}
	if contentIdx < 0 {
		return nil, ErrNoContentColumn
	}

	field := func(rec []string, i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var items []Item
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, errors.Wrapf(pe.Err, "batch: csv line %d", pe.StartLine)
			}
			return nil, errors.Wrap(err, "batch: read csv")
		}

		text := field(rec, contentIdx)
		if text == "" {
			continue
		}

		items = append(items, Item{
			Index:   len(items),
			Content: text,
			Type:    content.ParseType(field(rec, typeIdx), text),
			Label:   field(rec, labelIdx),
		})
	}

	return items, nil
}
