package render

import (
	"bytes"
	"context"
	"time"

	"github.com/reportkit/go-docfill/pkg/docfill/fonts"
	"github.com/reportkit/go-docfill/pkg/docfill/xml"
)

// MediaSource resolves the relationship id of an embedded picture to its
// bytes and content type.
type MediaSource interface {
	Media(relID string) (data []byte, contentType string, ok bool)
}

// Input is what the engine hands to a Renderer.
type Input struct {
	// Document is the filled main document part.
	Document *xml.Document
	// Media resolves pictures referenced by the document. May be nil when the
	// document has none.
	Media MediaSource
	// Fonts is the resolved font mapping. It must be set.
	Fonts *fonts.Mapping
	// Paper is used when the document carries no page size.
	Paper Paper
	// DefaultFont is the family used for text without explicit run fonts.
	DefaultFont string
	// Title for the PDF document metadata
	Title string
	// Timeout overrides the renderer's default timeout
	Timeout time.Duration
}

// Result contains the output from PDF rendering
type Result struct {
	// PDF is the raw PDF file content
	PDF []byte
	// PageCount is the number of pages in the PDF
	PageCount int
	// Duration is how long the rendering took
	Duration time.Duration
}

// Renderer produces a PDF from a filled document.
type Renderer interface {
	// Render converts the document to PDF
	Render(ctx context.Context, in *Input) (*Result, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeFontsUnset    = "FONTS_UNSET"
	ErrCodeInvalidPaper  = "INVALID_PAPER_SIZE"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Validate checks that in can be rendered.
func Validate(in *Input) error {
	if in == nil {
		return NewRenderError(ErrCodeInvalidInput, "render input is nil", nil)
	}
	if in.Document == nil {
		return NewRenderError(ErrCodeInvalidInput, "render input has no document", nil)
	}
	if in.Fonts == nil {
		return NewRenderError(ErrCodeFontsUnset, "font mapping must be set before rendering", nil)
	}
	if in.Paper != "" && !in.Paper.IsValid() {
		return NewRenderError(ErrCodeInvalidPaper, "invalid paper size: "+string(in.Paper), nil)
	}
	return nil
}

// CountPages estimates the page count of a PDF by counting page objects.
func CountPages(pdf []byte) int {
	count := bytes.Count(pdf, []byte("/Type /Page"))
	// "/Type /Pages" also matches the prefix above
	count -= bytes.Count(pdf, []byte("/Type /Pages"))
	return max(count, 1)
}
