// Package document reads uploaded schedule files and encodes them as data
// URIs for embedding in a JSON request body.
package document

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/vincent-petithory/dataurl"
)

// MediaTypePDF is the only media type accepted by default.
const MediaTypePDF = "application/pdf"

const fallbackMediaType = "application/octet-stream"

var (
	// ErrRead is matched by every ReadError.
	ErrRead = errors.New("failed to read document")
	// ErrInvalidInput is matched by every InvalidInputError.
	ErrInvalidInput = errors.New("invalid input document")
)

// ReadError reports a failed or aborted local read.
type ReadError struct {
	Filename string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Filename, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func (e *ReadError) Is(target error) bool { return target == ErrRead }

// InvalidInputError reports a file that is not an acceptable document.
type InvalidInputError struct {
	Filename string
	Reason   string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid document %s: %s", e.Filename, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// Document is a file read fully into memory.
type Document struct {
	Filename  string
	MediaType string
	Data      []byte
}

// New wraps data already in memory.
func New(data []byte, filename string) *Document {
	return &Document{
		Filename:  filename,
		MediaType: DetectMediaType(filename, data),
		Data:      data,
	}
}

// Read consumes r to completion. Any read failure, including cancellation
// surfaced by the reader, is returned as a *ReadError.
func Read(r io.Reader, filename string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ReadError{Filename: filename, Err: err}
	}
	return New(data, filename), nil
}

// ReadFile reads the file at path.
func ReadFile(path string) (*Document, error) {
	name := filepath.Base(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Filename: name, Err: err}
	}
	defer f.Close()
	return Read(f, name)
}

// DetectMediaType identifies the document from its content and falls back
// to the file extension when sniffing is inconclusive. Parameters such as
// charset are dropped.
func DetectMediaType(filename string, data []byte) string {
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	if sniffed != "" && sniffed != "text/plain" && sniffed != fallbackMediaType {
		return sniffed
	}
	if byExt, _, err := mime.ParseMediaType(mime.TypeByExtension(filepath.Ext(filename))); err == nil && byExt != "" {
		return byExt
	}
	if sniffed != "" {
		return sniffed
	}
	return fallbackMediaType
}

// DataURI returns the self-describing base64 data URI for the document.
func (d *Document) DataURI() string {
	mediaType := d.MediaType
	if mediaType == "" {
		mediaType = fallbackMediaType
	}
	return dataurl.New(d.Data, mediaType).String()
}

// DecodeDataURI reverses DataURI, returning the bytes and media type.
func DecodeDataURI(uri string) ([]byte, string, error) {
	du, err := dataurl.DecodeString(uri)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode data URI: %w", err)
	}
	return du.Data, du.MediaType.ContentType(), nil
}
