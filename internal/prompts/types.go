// Package prompts manages extraction prompts: embedded .tmpl defaults that
// can be replaced per key from configuration.
//
// Resolution order for a key:
//  1. Override text from configuration (prompts.overrides.<key>)
//  2. Embedded default (from .tmpl files in code)
package prompts

// EmbeddedPrompt represents a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   // Hierarchical key: extraction.system
	Text        string   // The prompt text (Go template)
	Description string   // Human-readable description
	Variables   []string // Extracted template variables
	Hash        string   // SHA256 hash of the text for change detection
}

// ResolvedPrompt is the text that will actually be rendered for a key.
type ResolvedPrompt struct {
	Key         string   `json:"key" yaml:"key"`
	Text        string   `json:"text" yaml:"text"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Variables   []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	IsOverride  bool     `json:"is_override" yaml:"is_override"`
	Hash        string   `json:"hash" yaml:"hash"`
}
