package docfill

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPartition(t *testing.T) {
	img := Image{Name: "a.png", Data: []byte{1, 2}}
	ptr := &Image{Name: "b.png", Data: []byte{3}}
	var nilImage *Image

	texts, images := Partition(DataMap{
		"name":  Text("Ada"),
		"empty": Text(""),
		"a":     img,
		"b":     ptr,
		"nil":   nilImage,
	})

	assert.Equal(t, map[string]string{"name": "Ada", "empty": ""}, texts)
	assert.Equal(t, map[string]Image{"a": img, "b": *ptr}, images)
}

func TestPartitionEmpty(t *testing.T) {
	texts, images := Partition(nil)
	assert.Empty(t, texts)
	assert.Empty(t, images)
}

func TestDataMapClone(t *testing.T) {
	orig := DataMap{"a": Text("1")}
	clone := orig.Clone()
	clone["b"] = Text("2")

	assert.Len(t, orig, 1)
	assert.Len(t, clone, 2)
	assert.NotNil(t, DataMap(nil).Clone())
}

func TestTextOf(t *testing.T) {
	tests := []struct {
		in   any
		want Text
		ok   bool
	}{
		{in: "x", want: "x", ok: true},
		{in: true, want: "true", ok: true},
		{in: 42, want: "42", ok: true},
		{in: int64(-7), want: "-7", ok: true},
		{in: uint64(7), want: "7", ok: true},
		{in: 1.5, want: "1.5", ok: true},
		{in: float64(3), want: "3", ok: true},
		{in: float32(0.25), want: "0.25", ok: true},
		{in: 90 * time.Second, want: "1m30s", ok: true},
		{in: nil, ok: false},
		{in: []string{"a"}, ok: false},
		{in: map[string]any{}, ok: false},
	}

	for _, tt := range tests {
		got, ok := TextOf(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestColumnMapping(t *testing.T) {
	cols := ColumnMapping{{Field: "sn", Header: "S/N"}, {Field: "name", Header: "Full Name"}}

	assert.True(t, cols.HasHeader("S/N"))
	assert.True(t, cols.HasHeader("Full Name"))
	assert.False(t, cols.HasHeader("full name"))
	assert.False(t, cols.HasHeader("sn"))
	assert.Equal(t, []string{"S/N", "Full Name"}, cols.Headers())
}
