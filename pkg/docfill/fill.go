package docfill

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/reportkit/go-docfill/pkg/docfill/fonts"
	"github.com/reportkit/go-docfill/pkg/docfill/xml"
)

// filler carries the state of one request through the fill stages. It is
// never shared between requests.
type filler struct {
	cfg    Config
	pkg    *Package
	doc    *xml.Document
	store  fonts.Store
	logger *zap.Logger
}

// run executes the fill stages in order and records what each did.
func (f *filler) run(req Request, report *Report) {
	data := req.Data.Clone()

	report.Placeholders = Scan(f.doc)
	report.Defaulted = ApplyDefaults(report.Placeholders, data, f.cfg.BlankDefault)
	if len(report.Defaulted) > 0 {
		f.logger.Info("placeholders without data were blanked",
			zap.Strings("keys", report.Defaulted))
	}

	texts, images := Partition(data)

	merged := PrepareRuns(f.doc)
	report.TextReplacements = SubstituteText(f.doc, texts)
	f.logger.Debug("text substituted",
		zap.Int("merged_runs", merged),
		zap.Int("replacements", report.TextReplacements))

	placed, warnings := f.substituteImages(images)
	report.ImagesPlaced = placed

	if req.IncludeTable && len(req.Columns) > 0 {
		var err error
		report.Table, err = f.injectTable(req.Records, req.Columns)
		warnings = multierr.Append(warnings, err)
	}
	report.Warnings = multierr.Errors(warnings)

	if f.cfg.NormalizeAlignment {
		report.AlignedParagraphs = NormalizeAlignment(f.doc)
	}

	families := f.pkg.FontFamilies()
	report.Fonts = *fonts.Resolve(families, f.store, f.cfg.FallbackFont)
	if len(report.Fonts.Unmapped) > 0 {
		f.logger.Warn("fonts without a physical face",
			zap.Strings("families", report.Fonts.Unmapped))
	}
	if len(report.Fonts.Substituted) > 0 {
		f.logger.Info("fonts substituted with fallback",
			zap.Strings("families", report.Fonts.Substituted),
			zap.String("fallback", f.cfg.FallbackFont))
	}
}
