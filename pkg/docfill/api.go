package docfill

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reportkit/go-docfill/pkg/docfill/fonts"
	"github.com/reportkit/go-docfill/pkg/docfill/render"
)

// OutputFormat selects what Generate produces.
type OutputFormat string

const (
	FormatPDF  OutputFormat = "pdf"
	FormatDOCX OutputFormat = "docx"
)

// ParseOutputFormat parses "pdf" or "docx", case-insensitively. An empty
// string means PDF.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pdf":
		return FormatPDF, nil
	case "docx":
		return FormatDOCX, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// ContentType returns the media type of the format.
func (f OutputFormat) ContentType() string {
	if f == FormatDOCX {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/pdf"
}

// Extension returns the file extension of the format, without the dot.
func (f OutputFormat) Extension() string {
	if f == FormatDOCX {
		return "docx"
	}
	return "pdf"
}

// Request is one report to generate.
type Request struct {
	// Template is the DOCX template.
	Template []byte
	// Data holds the text and image values by placeholder key. It is cloned;
	// the caller's map is not modified.
	Data DataMap
	// Records are the table rows, in order.
	Records []TableRecord
	// Columns maps record fields to table headers, in column order.
	Columns ColumnMapping
	// IncludeTable enables table injection.
	IncludeTable bool
	// Format defaults to PDF.
	Format OutputFormat
	// Title is passed to the renderer for the PDF metadata.
	Title string
}

// Report describes a generated artifact. It is only meaningful when the
// accompanying error is nil.
type Report struct {
	RequestID string
	Format    OutputFormat
	// Output is the PDF or DOCX bytes.
	Output []byte
	// PageCount is set for PDF output.
	PageCount int

	Placeholders      []string
	Defaulted         []string
	TextReplacements  int
	ImagesPlaced      int
	Table             TableResult
	AlignedParagraphs int
	Fonts             fonts.Mapping

	// Warnings collects per-key image failures and a missing table. They
	// did not stop the report from being produced.
	Warnings []error
}

// Empty reports whether the report carries no artifact.
func (r Report) Empty() bool {
	return len(r.Output) == 0
}

// Engine generates reports. It holds only configuration and collaborators
// that are safe for concurrent use, so one Engine can serve many requests.
type Engine struct {
	config   Config
	renderer render.Renderer
	fonts    fonts.Store
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRenderer sets the PDF renderer. Without one only DOCX output works.
func WithRenderer(r render.Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithFontStore sets the store fonts are resolved against.
func WithFontStore(s fonts.Store) Option {
	return func(e *Engine) { e.fonts = s }
}

// WithLogger sets the logger. The default is the package logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithConfig replaces the default configuration.
func WithConfig(c Config) Option {
	return func(e *Engine) { e.config = c }
}

// New creates an engine.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		config: DefaultConfig(),
		logger: GetLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	return e, nil
}

// Fill loads the template and runs every fill stage, leaving the filled
// package in memory. The returned report has no Output.
func (e *Engine) Fill(req Request) (pkg *Package, report Report, err error) {
	report.RequestID = uuid.NewString()
	log := e.logger.With(zap.String("request_id", report.RequestID))
	return e.fill(req, report, log)
}

func (e *Engine) fill(req Request, report Report, log *zap.Logger) (pkg *Package, out Report, err error) {
	pkg, err = OpenPackage(req.Template)
	if err != nil {
		log.Error("template could not be loaded", zap.Error(err))
		return nil, Report{}, NewGenerationError(StageLoad, err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = NewGenerationError(StageFill, RecoverError(r))
			log.Error("fill failed", zap.Error(err))
			pkg, out = nil, Report{}
		}
	}()

	f := &filler{
		cfg:    e.config,
		pkg:    pkg,
		doc:    pkg.Document(),
		store:  e.fonts,
		logger: log,
	}
	f.run(req, &report)
	return pkg, report, nil
}

// Generate fills the template and produces the requested output. On error
// the report is the zero value.
func (e *Engine) Generate(ctx context.Context, req Request) (Report, error) {
	format := req.Format
	switch format {
	case "":
		format = FormatPDF
	case FormatPDF, FormatDOCX:
	default:
		return Report{}, NewGenerationError(StageLoad, fmt.Errorf("unknown output format %q", format))
	}

	report := Report{RequestID: uuid.NewString(), Format: format}
	log := e.logger.With(zap.String("request_id", report.RequestID))
	log.Info("generating report", zap.String("format", string(format)))

	pkg, report, err := e.fill(req, report, log)
	if err != nil {
		return Report{}, err
	}

	if format == FormatDOCX {
		out, err := pkg.Bytes()
		if err != nil {
			log.Error("document could not be saved", zap.Error(err))
			return Report{}, NewGenerationError(StageSave, err)
		}
		report.Output = out
	} else {
		if e.renderer == nil {
			return Report{}, NewGenerationError(StageRender, errors.New("no renderer configured"))
		}
		mapping := report.Fonts
		res, err := e.renderer.Render(ctx, &render.Input{
			Document:    pkg.Document(),
			Media:       pkg,
			Fonts:       &mapping,
			DefaultFont: e.config.FallbackFont,
			Title:       req.Title,
		})
		if err != nil {
			log.Error("render failed", zap.Error(err))
			return Report{}, NewGenerationError(StageRender, err)
		}
		report.Output = res.PDF
		report.PageCount = res.PageCount
	}

	log.Info("report generated",
		zap.Int("bytes", len(report.Output)),
		zap.Int("placeholders", len(report.Placeholders)),
		zap.Int("images", report.ImagesPlaced),
		zap.Bool("table", report.Table.Injected),
		zap.Int("warnings", len(report.Warnings)))
	return report, nil
}
