package shape

import (
	"fmt"
	"strings"
	"text/template"
)

// emitRust renders the collected RecordDefs and EnumDefs as Rust source,
// in the shape of §4.5: a serialization import, enum declarations (or, in
// adapter mode, an import of them from a companion module), struct
// declarations with rename/optional markers, and — in adapter mode — one
// `From<...>` conversion per record.
func emitRust(ctx *Context, cfg Config) (string, error) {
	var out strings.Builder

	out.WriteString("use serde::{Serialize, Deserialize};\n")
	records := ctx.records.ordered()
	enums := ctx.enums.ordered()

	if usesAnyValue(records) {
		out.WriteString("use serde_json::Value;\n")
	}
	out.WriteString("\n")

	if cfg.GenerateAdapter {
		if err := emitEnumImport(&out, enums, cfg.EnumsImportPath); err != nil {
			return "", err
		}
	} else {
		out.WriteString("use strum_macros::Display;\n\n")
		for _, e := range enums {
			text, err := renderEnum(e)
			if err != nil {
				return "", err
			}
			out.WriteString(text)
			ctx.observer.DeclarationEmitted(e.Name)
		}
	}

	for _, rec := range records {
		text, err := renderStruct(rec)
		if err != nil {
			return "", err
		}
		out.WriteString(text)

		if cfg.GenerateAdapter {
			adapterText, err := renderAdapter(rec, cfg.AdapterSourceModule)
			if err != nil {
				return "", err
			}
			out.WriteString(adapterText)
		}

		ctx.observer.DeclarationEmitted(rec.Name)
	}

	return out.String(), nil
}

func emitEnumImport(out *strings.Builder, enums []*EnumDef, importPath string) error {
	if len(enums) == 0 {
		return nil
	}
	names := make([]string, len(enums))
	for i, e := range enums {
		names[i] = e.Name
	}
	fmt.Fprintf(out, "use %s::{%s};\n\n", importPath, strings.Join(names, ", "))
	return nil
}

// --- enum rendering ---

var enumTemplate = template.Must(template.New("enum").Funcs(template.FuncMap{
	"variantName":     rustEnumVariantName,
	"comment":         rustDocComment,
	"isFirst":         func(variants []string, v string) bool { return len(variants) > 0 && variants[0] == v },
	"rustKindPayload": rustKindPayload,
}).Parse(`{{if .Comment}}{{comment .Comment}}{{end -}}
#[derive(Debug, Serialize, Deserialize, Clone, Display{{if .IsStringEnum}}, Default{{end}})]
pub enum {{.Name}} {
{{- $variants := .Variants}}
{{- range $variants}}
{{- if $.IsStringEnum}}
    #[serde(rename = "{{.}}")]
{{- if isFirst $variants .}}
    #[default]
{{- end}}
    {{variantName .}},
{{- else}}
    {{.}}({{rustKindPayload .}}),
{{- end}}
{{- end}}
}
{{if not .IsStringEnum}}
impl Default for {{.Name}} {
    fn default() -> Self {
        {{.Name}}::Int(0)
    }
}
{{end}}
`)).Option("missingkey=error")

func rustKindPayload(variant string) string {
	switch variant {
	case "Bool":
		return "bool"
	case "Int":
		return "i64"
	case "Float":
		return "f64"
	case "String":
		return "String"
	default:
		return "Value"
	}
}

func renderEnum(e *EnumDef) (string, error) {
	var b strings.Builder
	if err := enumTemplate.Execute(&b, struct {
		Name         string
		Variants     []string
		Comment      string
		IsStringEnum bool
	}{e.Name, e.Variants, e.Comment, e.IsStringEnum}); err != nil {
		return "", fmt.Errorf("shape: rendering enum %q: %w", e.Name, err)
	}
	return b.String(), nil
}

// rustEnumVariantName derives the Rust variant identifier for a string
// enum's original value: UpperCamel-cased, prefixed with "Enum" when the
// original text begins with a digit (§4.5).
func rustEnumVariantName(original string) string {
	name := UpperCamel(original)
	if startsWithDigit(original) {
		name = "Enum" + name
	}
	return name
}

func rustDocComment(comment string) string {
	return "/// " + renderComment(comment) + "\n"
}

// --- struct rendering ---

var structTemplate = template.Must(template.New("struct").Funcs(template.FuncMap{
	"fieldComment":  rustFieldComment,
	"rustFieldType": rustFieldType,
}).Parse(`#[derive(Debug, Serialize, Deserialize, Default, Clone)]
pub struct {{.Name}} {
{{- range .Fields}}
{{- if .NeedsRenameMark}}
{{- if .Optional}}
    #[serde(rename = "{{.OriginalName}}", skip_serializing_if = "Option::is_none")]
{{- else}}
    #[serde(rename = "{{.OriginalName}}")]
{{- end}}
{{- else if .Optional}}
    #[serde(skip_serializing_if = "Option::is_none")]
{{- end}}
    pub {{.EmittedName}}: {{rustFieldType .}},{{fieldComment .}}
{{- end}}
}

`))

func renderStruct(r *RecordDef) (string, error) {
	var b strings.Builder
	if err := structTemplate.Execute(&b, r); err != nil {
		return "", fmt.Errorf("shape: rendering struct %q: %w", r.Name, err)
	}
	return b.String(), nil
}

func rustFieldComment(f FieldDef) string {
	if !f.HasComment {
		return ""
	}
	return " /* " + renderComment(f.Comment) + " */"
}

// rustFieldType renders a FieldDef's type, wrapping it in Option<...> when
// optional (§4.5).
func rustFieldType(f FieldDef) string {
	base := rustType(f.Type)
	if f.Optional {
		return "Option<" + base + ">"
	}
	return base
}

// rustType renders a bare TypeNode (never wrapped in Option — optionality
// is a FieldDef-level concern).
func rustType(t TypeNode) string {
	switch n := t.(type) {
	case Scalar:
		switch n.Kind {
		case ScalarString:
			return "String"
		case ScalarBool:
			return "bool"
		case ScalarInt:
			return "i64"
		case ScalarFloat:
			return "f64"
		default:
			panic("shape: unknown scalar kind")
		}
	case EnumRef:
		return n.EnumID
	case Array:
		return "Vec<" + rustType(n.Element) + ">"
	case RecordRef:
		return n.RecordID
	case Any:
		return "Value"
	default:
		panic("shape: unknown TypeNode variant")
	}
}

func usesAnyValue(records []*RecordDef) bool {
	for _, r := range records {
		for _, f := range r.Fields {
			if typeContainsAny(f.Type) {
				return true
			}
		}
	}
	return false
}

func typeContainsAny(t TypeNode) bool {
	switch n := t.(type) {
	case Any:
		return true
	case Array:
		return typeContainsAny(n.Element)
	default:
		return false
	}
}

// --- adapter rendering ---

// renderAdapter emits an `impl From<sourceModule::Name> for Name` for the
// record, descending into optionals, arrays, and arrays-of-arrays with
// element-wise conversion. Scalar leaves (bool, i64, f64, String, Value)
// pass through directly (§4.5).
func renderAdapter(r *RecordDef, sourceModule string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "impl From<%s::%s> for %s {\n", sourceModule, r.Name, r.Name)
	fmt.Fprintf(&b, "    fn from(obj: %s::%s) -> Self {\n", sourceModule, r.Name)
	fmt.Fprintf(&b, "        %s {\n", r.Name)
	for _, f := range r.Fields {
		fmt.Fprintf(&b, "            %s: %s,\n", f.EmittedName, adapterAssignment(f))
	}
	b.WriteString("        }\n    }\n}\n\n")
	return b.String(), nil
}

// adapterAssignment computes the right-hand side of a field assignment in
// a generated From impl, per the conversion rules in original_source: a
// scalar leaf passes straight through; otherwise .into()/map(Into::into) is
// threaded through Option and Vec wrappers, recursing for Vec<Vec<_>>.
func adapterAssignment(f FieldDef) string {
	expr := "obj." + f.EmittedName
	return convertExpr(expr, f.Type, f.Optional)
}

func convertExpr(expr string, t TypeNode, optional bool) string {
	if isScalarLeaf(t) {
		return expr
	}
	if optional {
		inner := convertExprOwned(t, "v")
		if inner == "v" {
			return expr
		}
		return expr + ".map(|v| " + inner + ")"
	}
	return convertExprOwned(t, expr)
}

// convertExprOwned converts an owned (non-Option) value of type t, bound to
// the expression expr (which may itself be a closure parameter name).
func convertExprOwned(t TypeNode, expr string) string {
	switch n := t.(type) {
	case Array:
		// A Vec nested to any depth over a scalar leaf (Vec<Scalar>,
		// Vec<Vec<Scalar>>, ...) passes straight through, matching
		// original_source's type_to_rust: it strips every Vec< layer down
		// to the leaf and only converts when that leaf isn't a scalar.
		if isScalarLeaf(arrayLeafType(n.Element)) {
			return expr
		}
		if nested, ok := n.Element.(Array); ok {
			return expr + ".into_iter().map(|inner_vec| " + convertExprOwned(nested, "inner_vec") + ").collect()"
		}
		return expr + ".into_iter().map(Into::into).collect()"
	case RecordRef, EnumRef:
		return expr + ".into()"
	default:
		return expr
	}
}

// arrayLeafType unwraps nested Array layers down to the innermost element
// type.
func arrayLeafType(t TypeNode) TypeNode {
	for {
		arr, ok := t.(Array)
		if !ok {
			return t
		}
		t = arr.Element
	}
}

func isScalarLeaf(t TypeNode) bool {
	switch t.(type) {
	case Scalar, Any:
		return true
	default:
		return false
	}
}
