// Package service assembles report requests from stored inputs and hands
// them to the docfill engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"path"

	"go.uber.org/zap"

	"github.com/reportkit/go-docfill/internal/config"
	"github.com/reportkit/go-docfill/internal/payload"
	"github.com/reportkit/go-docfill/internal/storage"
	"github.com/reportkit/go-docfill/pkg/docfill"
)

// ErrInvalidInput marks failures caused by the caller's inputs rather than
// by the service.
var ErrInvalidInput = errors.New("invalid input")

// Generator is the part of the engine the service drives.
type Generator interface {
	Generate(ctx context.Context, req docfill.Request) (docfill.Report, error)
}

// Inputs are the raw inputs of one report.
type Inputs struct {
	Template []byte
	// Payload is a JSON or YAML document, see package payload.
	Payload []byte
	// Images are added to the payload values by placeholder key.
	Images map[string]docfill.Image
	// Format overrides the configured output format when set.
	Format string
}

// ReportService produces reports from uploaded or stored inputs.
type ReportService struct {
	engine Generator
	store  storage.Store
	cfg    config.ReportConfig
	logger *zap.Logger
}

// New creates a report service. store may be nil when only Generate is used.
func New(engine Generator, store storage.Store, cfg config.ReportConfig, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		engine: engine,
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// Config returns the report configuration.
func (s *ReportService) Config() config.ReportConfig {
	return s.cfg
}

// Generate builds a request from in and generates the report.
func (s *ReportService) Generate(ctx context.Context, in Inputs) (docfill.Report, error) {
	req, err := s.buildRequest(in)
	if err != nil {
		return docfill.Report{}, err
	}
	return s.engine.Generate(ctx, req)
}

// GenerateConfigured loads the configured template, payload and images from
// the store, generates the report and, when an output key is configured,
// stores the result under it.
func (s *ReportService) GenerateConfigured(ctx context.Context) (docfill.Report, error) {
	if s.store == nil {
		return docfill.Report{}, errors.New("no storage configured")
	}

	template, err := s.store.Get(ctx, s.cfg.Template)
	if err != nil {
		return docfill.Report{}, fmt.Errorf("failed to load template: %w", err)
	}
	data, err := s.store.Get(ctx, s.cfg.Payload)
	if err != nil {
		return docfill.Report{}, fmt.Errorf("failed to load payload: %w", err)
	}

	var missing []error
	images := make(map[string]docfill.Image, len(s.cfg.Images))
	for _, ic := range s.cfg.Images {
		img, err := s.store.Get(ctx, ic.Object)
		if err != nil {
			// The placeholder is blanked like any key without data.
			s.logger.Warn("image could not be loaded", zap.String("key", ic.Key), zap.String("object", ic.Object), zap.Error(err))
			missing = append(missing, &docfill.ImageError{Key: ic.Key, Cause: err})
			continue
		}
		images[ic.Key] = docfill.Image{Name: path.Base(ic.Object), Data: img}
	}

	report, err := s.Generate(ctx, Inputs{Template: template, Payload: data, Images: images})
	if err != nil {
		return docfill.Report{}, err
	}
	report.Warnings = append(missing, report.Warnings...)

	if s.cfg.Output != "" {
		if err := s.store.Put(ctx, s.cfg.Output, report.Output, report.Format.ContentType()); err != nil {
			return docfill.Report{}, fmt.Errorf("failed to store report: %w", err)
		}
		s.logger.Info("report stored", zap.String("request_id", report.RequestID), zap.String("key", s.cfg.Output))
	}
	return report, nil
}

func (s *ReportService) buildRequest(in Inputs) (docfill.Request, error) {
	if len(in.Template) == 0 {
		return docfill.Request{}, fmt.Errorf("%w: template is required", ErrInvalidInput)
	}

	formatName := s.cfg.Format
	if in.Format != "" {
		formatName = in.Format
	}
	format, err := docfill.ParseOutputFormat(formatName)
	if err != nil {
		return docfill.Request{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	data := docfill.DataMap{}
	var records []docfill.TableRecord
	columns := s.cfg.ColumnMapping()
	if len(in.Payload) > 0 {
		p, err := payload.Decode(in.Payload, payload.Options{TableKey: s.cfg.TableKey})
		if err != nil {
			return docfill.Request{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		if len(p.Skipped) > 0 {
			s.logger.Debug("payload fields without a scalar value were ignored", zap.Strings("fields", p.Skipped))
		}
		data = p.Values
		records = p.Records
		if len(p.Columns) > 0 {
			columns = p.Columns
		}
	}
	for key, img := range in.Images {
		data[key] = img
	}

	return docfill.Request{
		Template:     in.Template,
		Data:         data,
		Records:      records,
		Columns:      columns,
		IncludeTable: s.cfg.IncludeTable,
		Format:       format,
		Title:        s.cfg.Title,
	}, nil
}
