package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_SimpleTuple(t *testing.T) {
	got := Normalize(Tuple{1, 2, 3})

	require.IsType(t, []any{}, got)
	assert.Equal(t, []any{1, 2, 3}, got)
}

func TestNormalize_NestedTuple(t *testing.T) {
	got := Normalize(Tuple{Tuple{1, 2}, Tuple{3, 4}})

	seq, ok := got.([]any)
	require.True(t, ok)
	require.Len(t, seq, 2)
	assert.IsType(t, []any{}, seq[0])
	assert.Equal(t, []any{[]any{1, 2}, []any{3, 4}}, got)
}

func TestNormalize_GoArrays(t *testing.T) {
	got := Normalize([3]int{124, 500, 686})
	assert.Equal(t, []any{124, 500, 686}, got)

	got = Normalize([][2]int{{1, 2}, {3, 4}})
	assert.Equal(t, []any{[]any{1, 2}, []any{3, 4}}, got)
}

func TestNormalize_MapWithTuples(t *testing.T) {
	in := map[string]any{
		"shapes": []any{Tuple{124, 500, 686}, Tuple{124, 500, 686}},
		"nested": map[string]any{"inner": Tuple{1, 2, 3}},
	}

	want := map[string]any{
		"shapes": []any{[]any{124, 500, 686}, []any{124, 500, 686}},
		"nested": map[string]any{"inner": []any{1, 2, 3}},
	}

	if diff := cmp.Diff(want, Normalize(in)); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_MultipleKeyShapes(t *testing.T) {
	shapes := map[string][]Tuple{
		"image":    {{124, 500, 686}},
		"image_sc": {{64, 250, 343}},
	}

	got, ok := Normalize(shapes).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{[]any{124, 500, 686}}, got["image"])
	assert.Equal(t, []any{[]any{64, 250, 343}}, got["image_sc"])
}

func TestNormalize_MapSlicePreservesOrder(t *testing.T) {
	in := MapSlice{
		{Key: "folder_path", Value: "/data"},
		{Key: "primary_key", Value: "image"},
		{Key: "files", Value: []any{}},
		{Key: "file_shapes", Value: MapSlice{{Key: "image", Value: []any{Tuple{1, 2}}}}},
	}

	got, ok := Normalize(in).(MapSlice)
	require.True(t, ok)
	assert.Equal(t, []string{"folder_path", "primary_key", "files", "file_shapes"}, got.Keys())

	shapes, ok := got.Get("file_shapes")
	require.True(t, ok)
	assert.Equal(t, MapSlice{{Key: "image", Value: []any{[]any{1, 2}}}}, shapes)
}

func TestNormalize_ListUnchanged(t *testing.T) {
	got := Normalize([]any{1, 2, 3})

	require.IsType(t, []any{}, got)
	assert.Equal(t, []any{1, 2, 3}, got)
}

func TestNormalize_PrimitivesUnchanged(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{name: "int", in: 42},
		{name: "string", in: "hello"},
		{name: "float", in: 3.14},
		{name: "bool", in: true},
		{name: "nil", in: nil},
		{name: "bytes", in: []byte("raw")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.in, Normalize(tt.in))
		})
	}
}

func TestNormalize_Pointers(t *testing.T) {
	n := 7
	assert.Equal(t, 7, Normalize(&n))

	var nilPtr *int
	assert.Nil(t, Normalize(nilPtr))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []any{
		Tuple{1, Tuple{2, 3}},
		map[string]any{"a": [2]int{1, 2}, "b": []string{"x", "y"}},
		MapSlice{{Key: "k", Value: Tuple{Tuple{}}}},
		"scalar",
		[]any{},
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("Normalize() not idempotent for %#v (-once +twice):\n%s", in, diff)
		}
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	inner := Tuple{1, 2}
	in := map[string]any{"shape": inner}

	_ = Normalize(in)

	assert.IsType(t, Tuple{}, in["shape"])
	assert.Equal(t, Tuple{1, 2}, inner)
}
