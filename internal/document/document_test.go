package document

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var samplePDF = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func TestDataURI_RoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"pdf":    samplePDF,
		"binary": {0x00, 0xff, 0x10, 0x80, 0x7f, 0x00, 0x00},
		"large":  bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 256*1024),
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			doc := New(data, name+".pdf")
			uri := doc.DataURI()

			got, mediaType, err := DecodeDataURI(uri)
			if err != nil {
				t.Fatalf("DecodeDataURI() error = %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Error("round trip did not reproduce the original bytes")
			}
			if mediaType != doc.MediaType {
				t.Errorf("media type = %q, want %q", mediaType, doc.MediaType)
			}
		})
	}
}

func TestDataURI_Format(t *testing.T) {
	doc := New(samplePDF, "plan.pdf")
	uri := doc.DataURI()
	if !strings.HasPrefix(uri, "data:application/pdf;base64,") {
		t.Errorf("unexpected prefix: %.40s", uri)
	}
}

func TestDetectMediaType(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     string
	}{
		{"pdf content", "schedule.pdf", samplePDF, MediaTypePDF},
		{"pdf content without extension", "upload", samplePDF, MediaTypePDF},
		{"png content", "schedule.pdf", []byte("\x89PNG\r\n\x1a\n0000"), "image/png"},
		{"text with pdf extension", "schedule.pdf", []byte("hello"), MediaTypePDF},
		{"text with txt extension", "notes.txt", []byte("hello"), "text/plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectMediaType(tt.filename, tt.data); got != tt.want {
				t.Errorf("DetectMediaType() = %q, want %q", got, tt.want)
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestRead(t *testing.T) {
	t.Run("reads to completion", func(t *testing.T) {
		doc, err := Read(bytes.NewReader(samplePDF), "plan.pdf")
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if !bytes.Equal(doc.Data, samplePDF) {
			t.Error("data mismatch")
		}
		if doc.MediaType != MediaTypePDF {
			t.Errorf("MediaType = %q", doc.MediaType)
		}
	})

	t.Run("read failure is a ReadError", func(t *testing.T) {
		_, err := Read(failingReader{}, "plan.pdf")
		if !errors.Is(err, ErrRead) {
			t.Fatalf("expected ErrRead, got %v", err)
		}
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("expected cause to be preserved, got %v", err)
		}
	})
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "march.pdf")
	if err := os.WriteFile(path, samplePDF, 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if doc.Filename != "march.pdf" {
		t.Errorf("Filename = %q, want march.pdf", doc.Filename)
	}

	_, err = ReadFile(filepath.Join(dir, "missing.pdf"))
	if !errors.Is(err, ErrRead) {
		t.Errorf("expected ErrRead for missing file, got %v", err)
	}
}

func TestInspect(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		limits  Limits
		wantErr bool
	}{
		{"pdf accepted", New(samplePDF, "a.pdf"), Limits{}, false},
		{"empty file", New(nil, "a.pdf"), Limits{}, true},
		{"png rejected", New([]byte("\x89PNG\r\n\x1a\n0000"), "a.png"), Limits{}, true},
		{"too large", New(samplePDF, "a.pdf"), Limits{MaxBytes: 10}, true},
		{"png allowed explicitly", New([]byte("\x89PNG\r\n\x1a\n0000"), "a.png"), Limits{AcceptedTypes: []string{"image/png"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Inspect(tt.doc, tt.limits)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Inspect() error = %v", err)
			}
			if info.Size != len(tt.doc.Data) {
				t.Errorf("Size = %d", info.Size)
			}
		})
	}
}

func TestInspect_UnreadablePDF(t *testing.T) {
	doc := New([]byte("%PDF-1.4\nthis is not a real pdf body\n"), "broken.pdf")
	_, err := Inspect(doc, Limits{CountPages: true})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
