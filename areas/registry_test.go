package areas

import (
	"fmt"
	"sync"
	"testing"

	"github.com/brettbedarf/areafs"
	"github.com/brettbedarf/areafs/config"
	"github.com/brettbedarf/areafs/internal/mocks"
	"github.com/brettbedarf/areafs/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Factory(t *testing.T) {
	t.Parallel()

	mockArea := &mocks.MockArea{}
	var gotRaw []byte
	Register("test-factory", func(raw []byte) (areafs.Area, error) {
		gotRaw = raw
		return mockArea, nil
	})

	cfg := []byte(`{"type":"test-factory","opt":1}`)
	a, err := NewArea(cfg)
	require.NoError(t, err)
	assert.Same(t, mockArea, a)
	assert.Equal(t, cfg, gotRaw, "factory receives the full raw config")
}

func TestRegister_Concurrent(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Go(func() {
			areaType := fmt.Sprintf("concurrent%d", i)
			mockArea := &mocks.MockArea{}
			Register(areaType, func([]byte) (areafs.Area, error) { return mockArea, nil })
			a, err := NewArea(fmt.Appendf(nil, `{"type":%q}`, areaType))
			assert.NoError(t, err)
			assert.Same(t, mockArea, a)
		})
	}
	wg.Wait()
}

func TestNewArea_MissingTypeField(t *testing.T) {
	t.Parallel()

	_, err := NewArea([]byte(`{"foo":"bar"}`))
	assert.Error(t, err)
}

func TestNewArea_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := NewArea([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestNewArea_UnregisteredType(t *testing.T) {
	t.Parallel()

	_, err := NewArea([]byte(`{"type":"foo"}`))
	assert.ErrorContains(t, err, "foo")
}

func TestNewArea_FactoryError(t *testing.T) {
	t.Parallel()

	expErr := fmt.Errorf("test error")
	Register("test-error", func([]byte) (areafs.Area, error) { return nil, expErr })

	_, err := NewArea([]byte(`{"type":"test-error"}`))
	assert.Equal(t, expErr, err)
}

func TestInstances(t *testing.T) {
	t.Parallel()

	a := &mocks.MockArea{}
	Set("instances-b", a)
	Set("instances-a", a)

	got, ok := Get("instances-b")
	require.True(t, ok)
	assert.Same(t, a, got)

	_, ok = Get("instances-missing")
	assert.False(t, ok)

	names := Names()
	assert.Subset(t, names, []string{"instances-a", "instances-b"})
	assert.IsIncreasing(t, names)
}

// NOTE: not parallel since it sets the process-wide default area
func TestLoadConfig(t *testing.T) {
	RegisterBuiltins(MemoryAreaType, LocalAreaType)
	t.Cleanup(func() { areafs.SetDefaultArea(nil) })

	cfg := config.NewConfig(&config.ConfigOverride{
		DefaultArea: util.Pointer("scratch"),
		Areas: map[string]config.AreaConfig{
			config.DefaultAreaName: {"type": "local", "root": t.TempDir()},
			"scratch":              {"type": "memory", "base_url": "https://scratch.test"},
		},
	})

	require.NoError(t, LoadConfig(cfg))

	scratch, ok := Get("scratch")
	require.True(t, ok)
	assert.IsType(t, &BillyArea{}, scratch)
	assert.Same(t, scratch, areafs.DefaultArea())

	f, err := areafs.Forge("/a.txt", nil, nil)
	require.NoError(t, err)
	assert.Same(t, scratch, f.Area())
}

func TestLoadConfig_Errors(t *testing.T) {
	RegisterBuiltins(MemoryAreaType)

	t.Run("unknown type", func(t *testing.T) {
		cfg := &config.Config{
			DefaultArea: "x",
			Areas:       map[string]config.AreaConfig{"x": {"type": "nope"}},
		}
		assert.Error(t, LoadConfig(cfg))
	})
	t.Run("missing default", func(t *testing.T) {
		cfg := &config.Config{
			DefaultArea: "absent",
			Areas:       map[string]config.AreaConfig{"present": {"type": "memory"}},
		}
		assert.ErrorContains(t, LoadConfig(cfg), "absent")
	})
}
