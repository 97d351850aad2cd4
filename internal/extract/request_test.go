package extract

import (
	"strings"
	"testing"

	"github.com/jackzampolin/shiftparse/internal/document"
	"github.com/jackzampolin/shiftparse/internal/prompts"
	"github.com/jackzampolin/shiftparse/internal/prompts/extraction"
	"github.com/jackzampolin/shiftparse/internal/providers"
	"github.com/jackzampolin/shiftparse/internal/schedule"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n")

func TestRequestBuilder_Build(t *testing.T) {
	b := NewRequestBuilder(nil, Options{Model: "test-model"})
	doc := document.New(samplePDF, "plan.pdf")

	req, err := b.Build(doc, "")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if req.Model != "test-model" {
		t.Errorf("Model = %q", req.Model)
	}
	if req.RequestID == "" {
		t.Error("expected a request id")
	}
	if len(req.Messages) != 2 {
		t.Fatalf("len(Messages) = %d, want 2", len(req.Messages))
	}

	system, user := req.Messages[0], req.Messages[1]
	if system.Role != "system" || !strings.Contains(system.Content, "YYYY-MM-DD") {
		t.Errorf("unexpected system message: %q", system.Content)
	}
	if strings.Contains(system.Content, "Employee filter") {
		t.Error("filter section present without a filter")
	}
	if user.Role != "user" || len(user.Parts) != 2 {
		t.Fatalf("unexpected user message: %+v", user)
	}
	if user.Parts[0].Type != providers.PartText || !strings.Contains(user.Parts[0].Text, "weekday") {
		t.Errorf("unexpected text part: %+v", user.Parts[0])
	}
	file := user.Parts[1]
	if file.Type != providers.PartFile || file.File == nil {
		t.Fatalf("unexpected file part: %+v", file)
	}
	if file.File.Filename != "plan.pdf" {
		t.Errorf("Filename = %q", file.File.Filename)
	}

	data, mediaType, err := document.DecodeDataURI(file.File.FileData)
	if err != nil {
		t.Fatalf("DecodeDataURI() error = %v", err)
	}
	if mediaType != document.MediaTypePDF || string(data) != string(samplePDF) {
		t.Errorf("file part does not round-trip: %s %q", mediaType, data)
	}
}

func TestRequestBuilder_EmployeeFilter(t *testing.T) {
	const name = "Max Mustermann"
	b := NewRequestBuilder(nil, Options{})

	req, err := b.Build(document.New(samplePDF, "plan.pdf"), name)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	system := req.Messages[0].Content

	for _, line := range strings.Split(system, "\n") {
		if strings.HasPrefix(line, "- Only extract records") || strings.HasPrefix(line, "- Exclude the records") {
			if n := strings.Count(line, name); n != 1 {
				t.Errorf("directive embeds filter %d times: %q", n, line)
			}
		}
	}
	if n := strings.Count(system, name); n != 2 {
		t.Errorf("filter appears %d times, want 2", n)
	}
}

func TestRequestBuilder_DefaultFilter(t *testing.T) {
	b := NewRequestBuilder(nil, Options{EmployeeFilter: "  Jane Doe "})
	if got := b.Filter(""); got != "Jane Doe" {
		t.Errorf("Filter(\"\") = %q", got)
	}
	if got := b.Filter("Max"); got != "Max" {
		t.Errorf("Filter(\"Max\") = %q", got)
	}
}

func TestRequestBuilder_LanguageAndCodes(t *testing.T) {
	b := NewRequestBuilder(nil, Options{Language: "de"})
	system, err := b.SystemPrompt("")
	if err != nil {
		t.Fatalf("SystemPrompt() error = %v", err)
	}
	if !strings.Contains(system, "Montag") {
		t.Error("expected German weekday names")
	}
	if !strings.Contains(system, `"U" means vacation`) {
		t.Error("expected German default absence codes")
	}

	custom := NewRequestBuilder(nil, Options{AbsenceCodes: []schedule.AbsenceCode{
		{Code: "HOL", Type: schedule.TypeVacation},
	}})
	system, err = custom.SystemPrompt("")
	if err != nil {
		t.Fatalf("SystemPrompt() error = %v", err)
	}
	if !strings.Contains(system, `"HOL" means vacation`) {
		t.Error("expected configured absence code")
	}
	if strings.Contains(system, `"SICK"`) {
		t.Error("configured codes should replace the defaults")
	}
}

func TestRequestBuilder_Override(t *testing.T) {
	r := prompts.NewResolver(nil)
	extraction.RegisterPrompts(r)
	r.SetOverrides(map[string]string{
		extraction.UserPromptKey: "Extract {{.Filename}} please.",
	})

	b := NewRequestBuilder(r, Options{})
	user, err := b.UserPrompt("march.pdf")
	if err != nil {
		t.Fatalf("UserPrompt() error = %v", err)
	}
	if user != "Extract march.pdf please." {
		t.Errorf("UserPrompt() = %q", user)
	}
}
