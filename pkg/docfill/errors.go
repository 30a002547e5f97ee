package docfill

import (
	"errors"
	"fmt"
)

// Stage names the pipeline step a GenerationError came from.
type Stage string

const (
	StageLoad   Stage = "load"
	StageFill   Stage = "fill"
	StageRender Stage = "render"
	StageSave   Stage = "save"
)

// GenerationError is returned when a report could not be produced. No partial
// output accompanies it.
type GenerationError struct {
	Stage Stage
	Cause error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed at %s: %v", e.Stage, e.Cause)
	}
	return fmt.Sprintf("generation failed at %s", e.Stage)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// NewGenerationError creates a new generation error
func NewGenerationError(stage Stage, cause error) error {
	return &GenerationError{
		Stage: stage,
		Cause: cause,
	}
}

// DocumentError represents an error during document operations
type DocumentError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *DocumentError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("document error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("document error during %s of '%s'", e.Operation, e.Path)
	} else if e.Cause != nil {
		return fmt.Sprintf("document error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("document error during %s", e.Operation)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// NewDocumentError creates a new document error
func NewDocumentError(operation, path string, cause error) error {
	return &DocumentError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// ImageError reports a failure to place the image for one key.
type ImageError struct {
	Key   string
	Cause error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image %q: %v", e.Key, e.Cause)
}

func (e *ImageError) Unwrap() error {
	return e.Cause
}

// StructureKind classifies a template that does not have the expected shape.
type StructureKind string

const (
	// KindNoMatch: no text node holds the placeholder on its own.
	KindNoMatch StructureKind = "no_match"
	// KindUnsupportedParent: the placeholder paragraph is neither in the
	// body nor directly in a table cell.
	KindUnsupportedParent StructureKind = "unsupported_parent"
	// KindNotInCell: the cell does not contain the matched run.
	KindNotInCell StructureKind = "not_in_cell"
	// KindNoTable: no table has a header the column mapping recognizes.
	KindNoTable StructureKind = "no_table"
)

// StructureError describes a structural mismatch between the template and
// what a step expects. The step is skipped.
type StructureError struct {
	Kind   StructureKind
	Detail string
}

func (e *StructureError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("structure mismatch (%s): %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("structure mismatch (%s)", e.Kind)
}

func newStructureError(kind StructureKind, format string, args ...any) error {
	return &StructureError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// RecoverError converts a panic recovery value to an error
func RecoverError(r interface{}) error {
	switch v := r.(type) {
	case error:
		return fmt.Errorf("panic recovered: %w", v)
	case string:
		return fmt.Errorf("panic recovered: %s", v)
	default:
		return fmt.Errorf("panic recovered: %v", v)
	}
}

// IsGenerationError checks if an error is a generation error
func IsGenerationError(err error) bool {
	var target *GenerationError
	return errors.As(err, &target)
}

// IsDocumentError checks if an error is a document error
func IsDocumentError(err error) bool {
	var target *DocumentError
	return errors.As(err, &target)
}

// IsImageError checks if an error is an image error
func IsImageError(err error) bool {
	var target *ImageError
	return errors.As(err, &target)
}

// IsStructureError checks if an error is a structure error
func IsStructureError(err error) bool {
	var target *StructureError
	return errors.As(err, &target)
}

// StageOf returns the stage of a GenerationError in err's chain, or "".
func StageOf(err error) Stage {
	var target *GenerationError
	if errors.As(err, &target) {
		return target.Stage
	}
	return ""
}
