package shape

import (
	"sort"
	"strings"
)

// typeSig is the inductive type signature used inside a structural or enum
// signature (§4.3).
func typeSig(t TypeNode) string {
	switch n := t.(type) {
	case Scalar:
		return "S" + n.Kind.String()
	case EnumRef:
		return "E" + n.EnumID
	case Array:
		return "A[" + typeSig(n.Element) + "]"
	case RecordRef:
		return "O" + n.RecordID
	case Any:
		return "Any"
	default:
		panic("shape: unknown TypeNode variant")
	}
}

// recordSignature computes the structural signature of a candidate record's
// fields: per-field "<original_name>:<type_sig><optional_marker>", sorted
// lexicographically and joined with "|". Two records with identical
// signatures are the same declaration (I2).
func recordSignature(fields []FieldDef) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		marker := ""
		if f.Optional {
			marker = "?"
		}
		parts = append(parts, f.OriginalName+":"+typeSig(f.Type)+marker)
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

// stringEnumSignature is the shared signature for a string enum with the
// given sorted, distinct variants. It is used both when a scalar string
// field is promoted to an enum and when a one-dimensional array of strings
// is promoted to Array(EnumRef(...)) — the two cases must reuse the same
// enum if the variant sets match (P4).
func stringEnumSignature(sortedVariants []string) string {
	return "StringEnum:" + strings.Join(sortedVariants, "|")
}

// scalarMixEnumSignature is the signature for a scalar-mix enum: "E" plus
// the sorted one-letter codes of the observed kinds.
func scalarMixEnumSignature(kinds map[ScalarKind]struct{}) string {
	codes := make([]byte, 0, len(kinds))
	for k := range kinds {
		codes = append(codes, k.code())
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return "E" + string(codes)
}
