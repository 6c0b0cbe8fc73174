package helper

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/go-sprout/sprout"
	"github.com/go-sprout/sprout/group/all"
)

// sprout registry funcs, available to every --template
var templateFuncs = func() template.FuncMap {
	handler := sprout.New()
	handler.AddGroups(all.RegistryGroup())
	return handler.Build()
}()

// Template is a text/template with the sprout funcs.
type Template struct {
	*template.Template
}

// Exec renders the template and trims surrounding spaces.
func (t *Template) Exec(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Template.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// GetTemplate parses tpl. "@file" reads the template from file.
// strict makes a missing map key an execution error.
func GetTemplate(tpl string, strict bool) (*Template, error) {
	if name, ok := strings.CutPrefix(tpl, "@"); ok {
		contents, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		tpl = string(contents)
	}
	t := template.New("template").Funcs(templateFuncs)
	if strict {
		t = t.Option("missingkey=error")
	}
	t, err := t.Parse(tpl)
	if err != nil {
		return nil, err
	}
	return &Template{Template: t}, nil
}
