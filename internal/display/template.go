package display

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

var (
	templateFuncs = sprig.TxtFuncMap()

	templateMu    sync.Mutex
	templateCache = map[string]*template.Template{}
)

// ExpandTemplate expands tmplStr against data. Templates access fields via
// {{ .FieldName }} and may use any sprig function. Parsed templates are
// cached by their source text.
func ExpandTemplate(tmplStr string, data any) (string, error) {
	tmpl, err := parseTemplate(tmplStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// MustExpand is ExpandTemplate for templates compiled into the binary.
func MustExpand(tmplStr string, data any) string {
	out, err := ExpandTemplate(tmplStr, data)
	if err != nil {
		panic(err)
	}
	return out
}

func parseTemplate(tmplStr string) (*template.Template, error) {
	templateMu.Lock()
	defer templateMu.Unlock()

	if tmpl, ok := templateCache[tmplStr]; ok {
		return tmpl, nil
	}
	tmpl, err := template.New("").Funcs(templateFuncs).Parse(tmplStr)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	templateCache[tmplStr] = tmpl
	return tmpl, nil
}
