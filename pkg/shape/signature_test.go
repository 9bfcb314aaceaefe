package shape

import "testing"

func TestRecordSignatureOrderIndependent(t *testing.T) {
	a := []FieldDef{
		{OriginalName: "a", Type: Scalar{Kind: ScalarInt}},
		{OriginalName: "b", Type: Scalar{Kind: ScalarString}, Optional: true},
	}
	b := []FieldDef{
		{OriginalName: "b", Type: Scalar{Kind: ScalarString}, Optional: true},
		{OriginalName: "a", Type: Scalar{Kind: ScalarInt}},
	}
	if recordSignature(a) != recordSignature(b) {
		t.Fatalf("signatures differ for the same field set in different order")
	}
}

func TestRecordSignatureDistinguishesOptionality(t *testing.T) {
	required := []FieldDef{{OriginalName: "a", Type: Scalar{Kind: ScalarInt}}}
	optional := []FieldDef{{OriginalName: "a", Type: Scalar{Kind: ScalarInt}, Optional: true}}
	if recordSignature(required) == recordSignature(optional) {
		t.Fatalf("expected different signatures for required vs optional field")
	}
}

func TestRecordSignatureNestedTypes(t *testing.T) {
	fields := []FieldDef{
		{OriginalName: "tags", Type: Array{Element: Scalar{Kind: ScalarString}}},
		{OriginalName: "child", Type: RecordRef{RecordID: "Child"}},
		{OriginalName: "status", Type: EnumRef{EnumID: "StatusEnum"}},
		{OriginalName: "extra", Type: Any{}},
	}
	got := recordSignature(fields)
	want := "child:OChild|extra:Any|status:EStatusEnum|tags:A[SString]"
	if got != want {
		t.Fatalf("recordSignature = %q, want %q", got, want)
	}
}

func TestStringEnumSignatureSharedAcrossFields(t *testing.T) {
	sigA := stringEnumSignature([]string{"blue", "green", "red"})
	sigB := stringEnumSignature([]string{"blue", "green", "red"})
	if sigA != sigB {
		t.Fatalf("expected identical signature for identical variant sets")
	}
	sigC := stringEnumSignature([]string{"blue", "green"})
	if sigA == sigC {
		t.Fatalf("expected different signatures for different variant sets")
	}
}

func TestScalarMixEnumSignatureSortsCodes(t *testing.T) {
	kinds := map[ScalarKind]struct{}{
		ScalarString: {},
		ScalarBool:   {},
	}
	got := scalarMixEnumSignature(kinds)
	if got != "EBS" {
		t.Fatalf("scalarMixEnumSignature = %q, want %q", got, "EBS")
	}
}
