package docfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "      ", cfg.BlankDefault)
	assert.Equal(t, "Times New Roman", cfg.FallbackFont)
	assert.Equal(t, 200, cfg.FreeImageWidth)
	assert.Equal(t, 100, cfg.FreeImageHeight)
	assert.Equal(t, 10, cfg.CellImageMargin)
	assert.Equal(t, 5, cfg.MinTableRows)
	assert.True(t, cfg.NormalizeAlignment)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{name: "empty blank is allowed", modify: func(c *Config) { c.BlankDefault = "" }, ok: true},
		{name: "zero margin", modify: func(c *Config) { c.CellImageMargin = 0 }, ok: true},
		{name: "zero width", modify: func(c *Config) { c.FreeImageWidth = 0 }},
		{name: "negative height", modify: func(c *Config) { c.FreeImageHeight = -1 }},
		{name: "negative margin", modify: func(c *Config) { c.CellImageMargin = -1 }},
		{name: "negative min rows", modify: func(c *Config) { c.MinTableRows = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}
