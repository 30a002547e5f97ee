package docfill

import (
	"errors"

	"github.com/reportkit/go-docfill/pkg/docfill/fonts"
)

// Config contains the engine's tunables. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	// BlankDefault is inserted for placeholders the data map does not cover.
	BlankDefault string
	// FallbackFont is substituted for families the font store lacks.
	FallbackFont string
	// FreeImageWidth and FreeImageHeight size images outside tables, and
	// cell images whose width is unknown, in pixels.
	FreeImageWidth  int
	FreeImageHeight int
	// CellImageMargin is subtracted from the cell width for cell images.
	CellImageMargin int
	// MinTableRows is the row count a table must exceed before the row after
	// the injected block is evicted.
	MinTableRows int
	// NormalizeAlignment turns justified body paragraphs to left aligned.
	NormalizeAlignment bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BlankDefault:       "      ",
		FallbackFont:       fonts.DefaultFallback,
		FreeImageWidth:     200,
		FreeImageHeight:    100,
		CellImageMargin:    10,
		MinTableRows:       5,
		NormalizeAlignment: true,
	}
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if c.FreeImageWidth <= 0 || c.FreeImageHeight <= 0 {
		return errors.New("free image size must be positive")
	}
	if c.CellImageMargin < 0 {
		return errors.New("cell image margin cannot be negative")
	}
	if c.MinTableRows < 0 {
		return errors.New("min table rows cannot be negative")
	}
	return nil
}
