package shape

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// summarize computes the advisory per-field comment string for a field
// whose type was inferred as t, per §4.4. children is the complete,
// unfiltered list of observed values for the field (nulls included, in the
// order they were encountered across the input records) — this matches
// original_source, where a null among the observed values still shows up
// literally as "null" in a comma-joined comment.
func (c *Context) summarize(t TypeNode, field string, children []any) (string, bool) {
	switch n := t.(type) {
	case Array:
		switch inner := n.Element.(type) {
		case Array:
			if len(children) == 0 {
				return "", false
			}
			return jsonText(children[0]), true
		case Scalar:
			if c.isSkippedComment(field) {
				return firstSubArrayText(children)
			}
			return distinctSubArrayTexts(children), true
		case EnumRef:
			if c.isSkippedComment(field) {
				return firstSubArrayText(children)
			}
			if ed, ok := c.enums.get(inner.EnumID); ok {
				return ed.Comment, true
			}
			return "", false
		default:
			return "", false
		}
	case Scalar:
		if c.isSkippedComment(field) {
			if len(children) == 0 {
				return "", false
			}
			return rawValueText(children[0]), true
		}
		return uniqueValuesSummary(children), true
	case EnumRef:
		return distinctStringValues(children), true
	default:
		return "", false
	}
}

func firstSubArrayText(children []any) (string, bool) {
	if len(children) == 0 {
		return "", false
	}
	return jsonText(children[0]), true
}

// jsonText renders v the way serde_json's Display would: a string is
// rendered quoted, everything else (including null, via a literal nil) as
// its canonical JSON form.
func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// Comment synthesis is cosmetic; a marshal failure here can only
		// happen for values this package itself produced from decoded
		// JSON, which always round-trip.
		panic("shape: comment value failed to marshal: " + err.Error())
	}
	return string(b)
}

// rawValueText renders a single observed value the way the skip_comments
// "first value only" rule wants it: strings quoted with "...", everything
// else as JSON.
func rawValueText(v any) string {
	if s, ok := v.(string); ok {
		return `"` + s + `"`
	}
	return jsonText(v)
}

// uniqueValuesSummary comma-joins the distinct raw-text renderings of
// children (strings unquoted, everything else as JSON), preserving the
// order each distinct value was first observed.
func uniqueValuesSummary(children []any) string {
	seen := make(map[string]struct{})
	var items []string
	for _, v := range children {
		var text string
		if s, ok := v.(string); ok {
			text = s
		} else {
			text = jsonText(v)
		}
		if _, dup := seen[text]; !dup {
			seen[text] = struct{}{}
			items = append(items, text)
		}
	}
	return strings.Join(items, ", ")
}

// distinctSubArrayTexts comma-joins the distinct JSON texts of each
// sub-array observed for the field, sorted for determinism.
func distinctSubArrayTexts(children []any) string {
	seen := make(map[string]struct{})
	for _, v := range children {
		arr, ok := v.([]any)
		if !ok {
			continue
		}
		seen[jsonText(arr)] = struct{}{}
	}
	texts := make([]string, 0, len(seen))
	for t := range seen {
		texts = append(texts, t)
	}
	sort.Strings(texts)
	return strings.Join(texts, ", ")
}

// distinctStringValues comma-joins the distinct observed string values
// among children (non-strings, including null, are simply excluded),
// sorted for determinism.
func distinctStringValues(children []any) string {
	seen := make(map[string]struct{})
	for _, v := range children {
		if s, ok := v.(string); ok {
			seen[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}

// renderComment applies the emit-time transform of §4.4: a comment that
// looks like raw JSON array text (starts with '[') is inserted verbatim;
// otherwise it is split on ',', trimmed, and re-sorted so that numeric
// tokens sort numerically and after every non-numeric token.
func renderComment(comment string) string {
	if strings.HasPrefix(comment, "[") {
		return comment
	}

	parts := strings.Split(comment, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		items = append(items, strings.TrimSpace(p))
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, errA := strconv.ParseInt(items[i], 10, 64)
		b, errB := strconv.ParseInt(items[j], 10, 64)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return false // i is numeric, j is not: numeric sorts after
		case errB == nil:
			return true // j is numeric, i is not: i sorts first
		default:
			return items[i] < items[j]
		}
	})

	return strings.Join(items, ", ")
}
