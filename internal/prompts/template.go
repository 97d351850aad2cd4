package prompts

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"text/template"
)

// actionPattern matches template actions such as {{.Employee}} or {{if .Employee}}.
var actionPattern = regexp.MustCompile(`\{\{-?(.*?)-?\}\}`)

// fieldPattern matches field references inside an action, including nested
// fields like .Code.Type. Fields referenced inside range blocks are reported too.
var fieldPattern = regexp.MustCompile(`(?:^|[\s(|])\.([A-Za-z_][A-Za-z0-9_.]*)`)

// funcs are available to every prompt template.
var funcs = template.FuncMap{
	"join":  strings.Join,
	"lower": strings.ToLower,
	"quote": func(s string) string { return fmt.Sprintf("%q", s) },
}

// ExtractVariables lists the field names a template references, sorted.
// For example, "Hello {{.Name}}{{if .Count}}!{{end}}" returns ["Count", "Name"].
func ExtractVariables(text string) []string {
	seen := make(map[string]bool)
	var vars []string

	for _, action := range actionPattern.FindAllStringSubmatch(text, -1) {
		for _, field := range fieldPattern.FindAllStringSubmatch(action[1], -1) {
			if !seen[field[1]] {
				seen[field[1]] = true
				vars = append(vars, field[1])
			}
		}
	}

	sort.Strings(vars)
	return vars
}

// HashText returns a SHA256 hash of the text for change detection.
func HashText(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// Render executes text as a Go template against data.
// Missing map keys are an error so a broken override fails loudly.
func Render(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}
