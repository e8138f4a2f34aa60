package service

import (
	"encoding/json"
	"sort"

	"healthlog/internal/model"
)

// resolveFields collapses duplicate field_name rows left behind by old schema
// migrations into one canonical, deterministically ordered field list.
//
// The first row seen for a name is kept; a later row replaces it only when it
// wins the tie-break: strictly smaller display_order, or on equal
// display_order a smaller id (a row with an id beats one without). The final
// list is sorted by (display_order, id) and option lists are decoded from
// their string-encoded JSON form. Running the resolver on its own output
// yields the same output, regardless of where duplicates sat in the input.
func resolveFields(raw []model.FieldDefinition) []model.FieldDefinition {
	byName := make(map[string]model.FieldDefinition, len(raw))
	for _, f := range raw {
		kept, seen := byName[f.FieldName]
		if !seen || candidateWins(f, kept) {
			byName[f.FieldName] = f
		}
	}

	fields := make([]model.FieldDefinition, 0, len(byName))
	for _, f := range byName {
		f.Options = decodeOptions(f.RawOptions)
		fields = append(fields, f)
	}
	sort.SliceStable(fields, func(i, j int) bool {
		if fields[i].DisplayOrder != fields[j].DisplayOrder {
			return fields[i].DisplayOrder < fields[j].DisplayOrder
		}
		if fields[i].ID != 0 && fields[j].ID != 0 {
			return fields[i].ID < fields[j].ID
		}
		return false
	})
	return fields
}

func candidateWins(candidate, kept model.FieldDefinition) bool {
	if candidate.DisplayOrder != kept.DisplayOrder {
		return candidate.DisplayOrder < kept.DisplayOrder
	}
	if candidate.ID != 0 && kept.ID != 0 {
		return candidate.ID < kept.ID
	}
	return candidate.ID != 0 && kept.ID == 0
}

// encodeOptions renders an option list into its storage form.
func encodeOptions(options []string) string {
	raw, err := json.Marshal(options)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

// decodeOptions parses a stored option list. Historical rows hold either a
// JSON array or a JSON string wrapping one.
func decodeOptions(raw *string) []string {
	if raw == nil || *raw == "" {
		return nil
	}
	var options []string
	if err := json.Unmarshal([]byte(*raw), &options); err == nil {
		return options
	}
	var nested string
	if err := json.Unmarshal([]byte(*raw), &nested); err == nil {
		if err := json.Unmarshal([]byte(nested), &options); err == nil {
			return options
		}
	}
	return nil
}
