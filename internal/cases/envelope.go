package cases

import (
	"encoding/json"
	"sort"
)

// List and detail endpoints have wrapped their payloads at different nesting
// depths and under different key names across backend versions. The
// extractors below locate the meaningful payload deterministically: explicit
// container keys win over incidental structural matches, and a depth bound
// keeps the search total on malformed payloads.
const maxEnvelopeDepth = 5

var listContainerKeys = []string{"cases", "items", "results", "data"}

var recordWrapperKeys = []string{"case", "item", "result", "data", "case_detail", "payload"}

const caseIDKey = "case_id"

// ExtractCaseList locates the first plausible array of case records inside
// an arbitrary list-endpoint payload. Finding no array is not an error: an
// empty case list is a normal, valid state. The only error is an undecodable
// body, which belongs to the transport rather than the envelope.
func ExtractCaseList(raw json.RawMessage) ([]Case, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	found, ok := findArrayDeep(payload, 0)
	if !ok {
		return []Case{}, nil
	}
	out := make([]Case, 0, len(found))
	for _, item := range found {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		record, err := decodeCase(obj)
		if err != nil {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

// ExtractCaseRecord unwraps a detail-style payload: a bare record carrying
// case_id, or one nested under a fixed list of wrapper keys. Anything else
// is ErrUnexpectedShape; a detail endpoint must answer with exactly one
// record.
func ExtractCaseRecord(raw json.RawMessage) (Case, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Case{}, ErrUnexpectedShape
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return Case{}, ErrUnexpectedShape
	}
	if _, ok := obj[caseIDKey]; ok {
		return decodeRecord(obj)
	}
	for _, key := range recordWrapperKeys {
		child, ok := obj[key].(map[string]any)
		if !ok {
			continue
		}
		if _, ok := child[caseIDKey]; ok {
			return decodeRecord(child)
		}
	}
	return Case{}, ErrUnexpectedShape
}

// findArrayDeep performs the bounded-depth search. Priority at each level:
// explicit container keys, then the record-like-values heuristic, then
// recursion into child values. Go maps enumerate in random order, so
// children are visited in sorted-key order to keep the search deterministic.
func findArrayDeep(value any, depth int) ([]any, bool) {
	if depth > maxEnvelopeDepth {
		return nil, false
	}
	if arr, ok := value.([]any); ok {
		return arr, true
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}

	for _, key := range listContainerKeys {
		if child, ok := obj[key]; ok {
			if found, ok := findArrayDeep(child, depth+1); ok {
				return found, true
			}
		}
	}

	// Known heuristic: an object whose own values all look record-like is
	// treated as a keyed collection. A legitimately record-shaped object
	// holding several case-like sub-objects would also match; the behavior
	// is preserved as-is.
	keys := sortedKeys(obj)
	if len(keys) > 0 && allRecordLike(obj, keys) {
		values := make([]any, 0, len(keys))
		for _, k := range keys {
			values = append(values, obj[k])
		}
		return values, true
	}

	for _, k := range keys {
		if found, ok := findArrayDeep(obj[k], depth+1); ok {
			return found, true
		}
	}

	return nil, false
}

func allRecordLike(obj map[string]any, keys []string) bool {
	for _, k := range keys {
		child, ok := obj[k].(map[string]any)
		if !ok {
			return false
		}
		if _, ok := child[caseIDKey]; !ok {
			return false
		}
	}
	return true
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// decodeRecord is decodeCase with shape-style error semantics: a record that
// cannot be decoded counts as no record at all.
func decodeRecord(obj map[string]any) (Case, error) {
	record, err := decodeCase(obj)
	if err != nil {
		return Case{}, ErrUnexpectedShape
	}
	return record, nil
}

func decodeCase(obj map[string]any) (Case, error) {
	blob, err := json.Marshal(obj)
	if err != nil {
		return Case{}, err
	}
	var record Case
	if err := json.Unmarshal(blob, &record); err != nil {
		return Case{}, err
	}
	return record, nil
}
