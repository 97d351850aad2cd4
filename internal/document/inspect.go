package document

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Limits bounds what Inspect accepts.
type Limits struct {
	// AcceptedTypes lists allowed media types (default: application/pdf).
	AcceptedTypes []string
	// MaxBytes rejects larger files when > 0.
	MaxBytes int64
	// CountPages parses PDFs to count pages and reject unreadable files.
	CountPages bool
	// MaxPages rejects longer PDFs when > 0. Requires CountPages.
	MaxPages int
}

// Info describes an accepted document.
type Info struct {
	Filename  string `json:"filename" yaml:"filename"`
	MediaType string `json:"media_type" yaml:"media_type"`
	Size      int    `json:"size" yaml:"size"`
	Pages     int    `json:"pages,omitempty" yaml:"pages,omitempty"`
}

var disableConfigDir sync.Once

// Inspect checks d against limits and returns an *InvalidInputError when the
// document must not be sent for extraction.
func Inspect(d *Document, limits Limits) (*Info, error) {
	accepted := limits.AcceptedTypes
	if len(accepted) == 0 {
		accepted = []string{MediaTypePDF}
	}

	if len(d.Data) == 0 {
		return nil, &InvalidInputError{Filename: d.Filename, Reason: "file is empty"}
	}
	if !slices.Contains(accepted, d.MediaType) {
		return nil, &InvalidInputError{
			Filename: d.Filename,
			Reason:   fmt.Sprintf("unsupported media type %s (accepted: %v)", d.MediaType, accepted),
		}
	}
	if limits.MaxBytes > 0 && int64(len(d.Data)) > limits.MaxBytes {
		return nil, &InvalidInputError{
			Filename: d.Filename,
			Reason:   fmt.Sprintf("file is %d bytes, limit is %d", len(d.Data), limits.MaxBytes),
		}
	}

	info := &Info{Filename: d.Filename, MediaType: d.MediaType, Size: len(d.Data)}

	if limits.CountPages && d.MediaType == MediaTypePDF {
		pages, err := PageCount(d.Data)
		if err != nil {
			return nil, &InvalidInputError{Filename: d.Filename, Reason: fmt.Sprintf("unreadable PDF: %v", err)}
		}
		if limits.MaxPages > 0 && pages > limits.MaxPages {
			return nil, &InvalidInputError{
				Filename: d.Filename,
				Reason:   fmt.Sprintf("PDF has %d pages, limit is %d", pages, limits.MaxPages),
			}
		}
		info.Pages = pages
	}

	return info, nil
}

// PageCount returns the number of pages in a PDF held in memory.
func PageCount(data []byte) (int, error) {
	disableConfigDir.Do(api.DisableConfigDir)
	return api.PageCount(bytes.NewReader(data), nil)
}
