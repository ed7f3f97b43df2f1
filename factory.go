package areafs

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/brettbedarf/areafs/internal/util"
	"github.com/go-viper/mapstructure/v2"
)

// areaBox lets atomic.Pointer carry an interface value
type areaBox struct{ area Area }

var defaultArea atomic.Pointer[areaBox]

// SetDefaultArea sets the process-wide area used when Forge is called
// without one. Passing nil clears it.
func SetDefaultArea(a Area) {
	if a == nil {
		defaultArea.Store(nil)
		return
	}
	defaultArea.Store(&areaBox{area: a})
}

// DefaultArea returns the process-wide default area or nil if unset
func DefaultArea() Area {
	if b := defaultArea.Load(); b != nil {
		return b.area
	}
	return nil
}

// Override uses pointer fields to distinguish between unset and zero values.
// Its fields are only applied to handle fields that are still empty after
// the explicit Forge arguments were set.
type Override struct {
	Path     *string
	Area     Area
	Readonly *bool
}

// mapOverride is the loosely typed form decoded from config maps
type mapOverride struct {
	Path     *string `mapstructure:"path"`
	Readonly *bool   `mapstructure:"readonly"`
	Area     any     `mapstructure:"area"`
}

// Forge creates a handle for path within area. A nil area resolves to the
// override's area and then to [DefaultArea].
//
// The file is not required to exist.
func Forge(path string, area Area, override *Override) (*File, error) {
	if err := validateArea(area); err != nil {
		return nil, err
	}
	if override != nil {
		if err := validateArea(override.Area); err != nil {
			return nil, err
		}
	}

	f := &File{path: path, area: area}
	f.fillUnset(override)

	if f.area == nil {
		f.area = DefaultArea()
		if f.area == nil {
			return nil, ErrNoDefaultArea
		}
	}
	return f, nil
}

// ForgeMap is the loosely typed variant of [Forge] used for handles built
// from decoded config. Recognised cfg keys are "path", "area" and "readonly";
// anything else is ignored.
//
// Returns an [*InvalidAreaError] if area, or cfg["area"], is non-nil and does
// not implement [Area].
func ForgeMap(path string, cfg map[string]any, area any) (*File, error) {
	logger := util.GetLogger("ForgeMap")

	a, err := asArea(area)
	if err != nil {
		return nil, err
	}

	var override *Override
	if len(cfg) > 0 {
		var raw mapOverride
		var md mapstructure.Metadata
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &raw,
			Metadata:         &md,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("forge: decode config: %w", err)
		}
		if len(md.Unused) > 0 {
			logger.Debug().Strs("keys", md.Unused).Str("path", path).Msg("Ignoring unknown config keys")
		}

		cfgArea, err := asArea(raw.Area)
		if err != nil {
			return nil, err
		}
		override = &Override{Path: raw.Path, Area: cfgArea, Readonly: raw.Readonly}
	}

	return Forge(path, a, override)
}

// asArea converts an untyped value to an Area. nil passes through.
func asArea(v any) (Area, error) {
	if v == nil {
		return nil, nil
	}
	a, ok := v.(Area)
	if !ok {
		return nil, &InvalidAreaError{Got: fmt.Sprintf("%T", v)}
	}
	if err := validateArea(a); err != nil {
		return nil, err
	}
	return a, nil
}

// validateArea rejects non-nil interfaces wrapping a nil pointer, which
// would otherwise only fail on first use.
func validateArea(a Area) error {
	if a == nil {
		return nil
	}
	v := reflect.ValueOf(a)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if v.IsNil() {
			return &InvalidAreaError{Got: fmt.Sprintf("nil %T", a)}
		}
	}
	return nil
}
