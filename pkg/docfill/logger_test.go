package docfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLogger(t *testing.T) {
	orig := GetLogger()
	t.Cleanup(func() { SetLogger(orig) })

	core, logs := observer.New(zap.InfoLevel)
	SetLogger(zap.New(core))

	engine, err := New()
	assert.NoError(t, err)
	engine.logger.Info("hello")
	assert.Equal(t, 1, logs.FilterMessage("hello").Len())

	SetLogger(nil)
	assert.NotNil(t, GetLogger())
	GetLogger().Info("dropped")
	assert.Equal(t, 1, logs.Len())
}

func TestWithLoggerOverridesPackageLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	engine, err := New(WithLogger(zap.New(core)), WithLogger(nil))
	assert.NoError(t, err)

	engine.logger.Debug("engine")
	assert.Equal(t, 1, logs.Len())
}
