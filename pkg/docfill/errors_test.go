package docfill

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "generation",
			err:  NewGenerationError(StageRender, cause),
			want: "generation failed at render: boom",
		},
		{
			name: "generation without cause",
			err:  &GenerationError{Stage: StageLoad},
			want: "generation failed at load",
		},
		{
			name: "document with path",
			err:  NewDocumentError("save", "output.docx", cause),
			want: "document error during save of 'output.docx': boom",
		},
		{
			name: "document without path",
			err:  NewDocumentError("write", "", cause),
			want: "document error during write: boom",
		},
		{
			name: "image",
			err:  &ImageError{Key: "logo", Cause: cause},
			want: `image "logo": boom`,
		},
		{
			name: "structure",
			err:  newStructureError(KindNoMatch, "no text node equals %s", "${logo}"),
			want: "structure mismatch (no_match): no text node equals ${logo}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}

func TestErrorChains(t *testing.T) {
	structural := newStructureError(KindUnsupportedParent, "paragraph parent is w:sdtContent")
	image := &ImageError{Key: "logo", Cause: structural}
	doc := NewDocumentError("open", "", errors.New("bad zip"))
	gen := NewGenerationError(StageLoad, doc)
	wrapped := fmt.Errorf("request 7: %w", gen)

	assert.True(t, IsImageError(image))
	assert.True(t, IsStructureError(image))
	assert.False(t, IsDocumentError(image))

	assert.True(t, IsGenerationError(wrapped))
	assert.True(t, IsDocumentError(wrapped))
	assert.False(t, IsStructureError(wrapped))
	assert.Equal(t, StageLoad, StageOf(wrapped))
	assert.Equal(t, Stage(""), StageOf(image))

	var se *StructureError
	assert.True(t, errors.As(image, &se))
	assert.Equal(t, KindUnsupportedParent, se.Kind)
}

func TestRecoverError(t *testing.T) {
	cause := errors.New("nil map")
	assert.ErrorIs(t, RecoverError(cause), cause)
	assert.EqualError(t, RecoverError("oops"), "panic recovered: oops")
	assert.EqualError(t, RecoverError(42), "panic recovered: 42")
}
