package areafs_test

import (
	"testing"

	"github.com/brettbedarf/areafs"
	"github.com/brettbedarf/areafs/internal/mocks"
	"github.com/brettbedarf/areafs/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NOTE: tests touching the process-wide default area are not parallel

func TestForge_ExplicitArea(t *testing.T) {
	t.Parallel()

	area := &mocks.MockArea{}
	f, err := areafs.Forge("/docs/report.txt", area, nil)

	require.NoError(t, err)
	assert.Equal(t, "/docs/report.txt", f.Path())
	assert.Same(t, area, f.Area())
	assert.False(t, f.Readonly())
	assert.False(t, f.Deleted())
	area.AssertExpectations(t) // construction must not touch the area
}

func TestForge_DefaultArea(t *testing.T) {
	def := &mocks.MockArea{}
	areafs.SetDefaultArea(def)
	t.Cleanup(func() { areafs.SetDefaultArea(nil) })

	f, err := areafs.Forge("a.txt", nil, nil)
	require.NoError(t, err)
	assert.Same(t, def, f.Area())
}

func TestForge_NoDefaultArea(t *testing.T) {
	areafs.SetDefaultArea(nil)

	_, err := areafs.Forge("a.txt", nil, nil)
	assert.ErrorIs(t, err, areafs.ErrNoDefaultArea)
	assert.Nil(t, areafs.DefaultArea())
}

func TestForge_TypedNilArea(t *testing.T) {
	t.Parallel()

	var nilArea *mocks.MockArea
	_, err := areafs.Forge("a.txt", nilArea, nil)

	var invalid *areafs.InvalidAreaError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Got, "MockArea")
}

func TestForge_OverrideOnlyFillsEmpty(t *testing.T) {
	t.Parallel()

	explicit := &mocks.MockArea{}
	other := &mocks.MockArea{}
	override := &areafs.Override{
		Path:     util.Pointer("/from/config.txt"),
		Area:     other,
		Readonly: util.Pointer(true),
	}

	f, err := areafs.Forge("/explicit.txt", explicit, override)
	require.NoError(t, err)
	assert.Equal(t, "/explicit.txt", f.Path(), "explicit path must win")
	assert.Same(t, explicit, f.Area(), "explicit area must win")
	assert.True(t, f.Readonly(), "unset readonly is filled from override")
}

func TestForge_OverrideFillsEmptyPathAndArea(t *testing.T) {
	t.Parallel()

	other := &mocks.MockArea{}
	override := &areafs.Override{
		Path: util.Pointer("/from/config.txt"),
		Area: other,
	}

	f, err := areafs.Forge("", nil, override)
	require.NoError(t, err)
	assert.Equal(t, "/from/config.txt", f.Path())
	assert.Same(t, other, f.Area())
	assert.False(t, f.Readonly())
}

func TestForgeMap_InvalidArea(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc string
		cfg  map[string]any
		area any
	}{
		{"string argument", nil, "not-an-area"},
		{"int argument", nil, 42},
		{"string in config", map[string]any{"area": "not-an-area"}, nil},
		{"typed nil argument", nil, (*mocks.MockArea)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()
			f, err := areafs.ForgeMap("a.txt", tt.cfg, tt.area)

			var invalid *areafs.InvalidAreaError
			require.ErrorAs(t, err, &invalid)
			assert.Nil(t, f)
		})
	}
}

func TestForgeMap_ConfigDoesNotOverrideArgs(t *testing.T) {
	t.Parallel()

	explicit := &mocks.MockArea{}
	cfgArea := &mocks.MockArea{}
	cfg := map[string]any{
		"path":     "/config/path.txt",
		"area":     cfgArea,
		"readonly": "true", // weakly typed input
		"unknown":  123,
	}

	f, err := areafs.ForgeMap("/docs/report.txt", cfg, explicit)
	require.NoError(t, err)
	assert.Equal(t, "/docs/report.txt", f.Path())
	assert.Same(t, explicit, f.Area())
	assert.True(t, f.Readonly())
}

func TestForgeMap_ConfigAreaUsedWhenArgMissing(t *testing.T) {
	t.Parallel()

	cfgArea := &mocks.MockArea{}
	f, err := areafs.ForgeMap("/docs/report.txt", map[string]any{"area": cfgArea}, nil)

	require.NoError(t, err)
	assert.Same(t, cfgArea, f.Area())
}

func TestForgeMap_BadConfigType(t *testing.T) {
	t.Parallel()

	_, err := areafs.ForgeMap("a.txt", map[string]any{"readonly": map[string]int{"a": 1}}, &mocks.MockArea{})
	assert.Error(t, err)
}
