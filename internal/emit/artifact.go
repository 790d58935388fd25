package emit

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/roach88/relc/internal/querysql"
)

// Kind selects the artifact representation.
type Kind string

const (
	KindGo  Kind = "go"
	KindSQL Kind = "sql"
)

// ParseKind recognizes an artifact kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindGo:
		return KindGo, nil
	case KindSQL:
		return KindSQL, nil
	}
	return "", fmt.Errorf("unknown artifact kind %q (want go or sql)", s)
}

// Artifact is a compiled query ready to be rendered.
type Artifact struct {
	Query       querysql.Query
	Fingerprint string
	BuildID     string
}

//go:embed runner.go.tmpl
var runnerTmplText string

var runnerTmpl = template.Must(template.New("runner").Parse(runnerTmplText))

// Render produces the artifact bytes for the given kind. Rendering is
// deterministic: equal artifacts render to equal bytes.
func Render(kind Kind, a Artifact) ([]byte, error) {
	switch kind {
	case KindGo:
		return renderGo(a)
	case KindSQL:
		return renderSQL(a)
	default:
		return nil, fmt.Errorf("unknown artifact kind %q", kind)
	}
}

func renderGo(a Artifact) ([]byte, error) {
	params := make([]string, len(a.Query.Params))
	for i, p := range a.Query.Params {
		lit, err := goLiteral(p)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		params[i] = lit
	}
	columns := make([]string, len(a.Query.Columns))
	for i, c := range a.Query.Columns {
		columns[i] = strconv.Quote(c)
	}

	var buf bytes.Buffer
	err := runnerTmpl.Execute(&buf, map[string]any{
		"BuildID":     a.BuildID,
		"Fingerprint": a.Fingerprint,
		// Pre-quoted so the template can splice it as a Go string literal.
		"SQL":     strconv.Quote(a.Query.SQL),
		"Params":  params,
		"Columns": columns,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering runner: %w", err)
	}
	return buf.Bytes(), nil
}

func renderSQL(a Artifact) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "-- Code generated by relc. DO NOT EDIT.\n")
	fmt.Fprintf(&buf, "-- build-id: %s\n", a.BuildID)
	fmt.Fprintf(&buf, "-- spec-fingerprint: %s\n", a.Fingerprint)
	fmt.Fprintf(&buf, "-- columns: %s\n", strings.Join(a.Query.Columns, ", "))
	for i, p := range a.Query.Params {
		manifest, err := paramManifest(p)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		fmt.Fprintf(&buf, "-- param %d: %s\n", i+1, manifest)
	}
	fmt.Fprintf(&buf, "%s;\n", a.Query.SQL)
	return buf.Bytes(), nil
}

// goLiteral renders a bound parameter as a Go expression for the generated
// runner's parameter slice.
func goLiteral(p any) (string, error) {
	switch v := p.(type) {
	case string:
		return strconv.Quote(v), nil
	case int64:
		return fmt.Sprintf("int64(%d)", v), nil
	case float64:
		return fmt.Sprintf("float64(%s)", strconv.FormatFloat(v, 'g', -1, 64)), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "nil", nil
	default:
		return "", fmt.Errorf("no Go literal form for parameter type %T", p)
	}
}

// paramManifest renders a bound parameter for the SQL artifact's comment
// header: value plus type, for the operator running the query by hand.
func paramManifest(p any) (string, error) {
	switch v := p.(type) {
	case string:
		return fmt.Sprintf("%s (text)", strconv.Quote(v)), nil
	case int64:
		return fmt.Sprintf("%d (int)", v), nil
	case float64:
		return fmt.Sprintf("%s (float)", strconv.FormatFloat(v, 'g', -1, 64)), nil
	case bool:
		return fmt.Sprintf("%t (bool)", v), nil
	case nil:
		return "null", nil
	default:
		return "", fmt.Errorf("no manifest form for parameter type %T", p)
	}
}
