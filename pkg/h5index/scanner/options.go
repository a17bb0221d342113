// Package scanner builds, caches and reloads the metadata manifest of a
// directory of array-container files.
package scanner

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/jamesainslie/h5index/pkg/h5index/container"
	"github.com/jamesainslie/h5index/pkg/h5index/logging"
)

// Options configures a single directory scan.
type Options struct {
	// Key is the primary key every file should contain. Empty means no key;
	// that is only allowed for a forced rescan that is not persisted.
	Key string `mapstructure:"key"`

	// KeyForLength restricts shape collection to this entry. Empty collects
	// the shape of every entry that has one.
	KeyForLength string `mapstructure:"key_for_length"`

	// ForceRescan ignores an existing manifest.
	ForceRescan bool `mapstructure:"force_rescan"`

	// Persist writes the manifest after a fresh scan.
	Persist bool `mapstructure:"persist"`

	// ReadOnly never writes, regardless of Persist.
	ReadOnly bool `mapstructure:"read_only"`

	// Extensions are the recognised container extensions, scanned in order.
	Extensions []string `mapstructure:"extensions" validate:"omitempty,dive,startswith=."`

	// Opener reads container files. Nil uses container.HDF5.
	Opener container.Opener `mapstructure:"-"`

	// Logger receives scan diagnostics. Nil uses the "scanner" component.
	Logger *logging.Logger `mapstructure:"-"`
}

// DefaultOptions returns the defaults: persist fresh scans, reuse cached
// manifests, scan .h5 then .hdf5 files through the HDF5 library.
func DefaultOptions() Options {
	return Options{
		Persist:    true,
		Extensions: append([]string(nil), container.DefaultExtensions...),
		Opener:     container.HDF5{},
	}
}

// legacyNames maps the option names used by older dataset tooling onto the
// current ones.
var legacyNames = map[string]string{
	"redo":                 "force_rescan",
	"write":                "persist",
	"hdf5_key_for_length":  "key_for_length",
	"search_file_tree_key": "key",
}

// Merge returns a copy of o with overrides applied on top. Override keys use
// the mapstructure names of Options ("force_rescan", "persist", ...); values
// may be strings, as read from config files or flags. Unknown keys are
// rejected with ErrInvalidArgument.
func (o Options) Merge(overrides map[string]any) (Options, error) {
	if len(overrides) == 0 {
		return o, nil
	}

	input := make(map[string]any, len(overrides))
	for k, v := range overrides {
		name := strings.ToLower(strings.ReplaceAll(k, "-", "_"))
		if canonical, ok := legacyNames[name]; ok {
			name = canonical
		}
		input[name] = v
	}

	merged := o
	merged.Extensions = append([]string(nil), o.Extensions...)

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &merged,
		TagName:          "mapstructure",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return o, err
	}
	if err := dec.Decode(input); err != nil {
		return o, fmt.Errorf("%w: scan options %s: %v", ErrInvalidArgument, overrideKeys(overrides), err)
	}
	return merged, nil
}

var validate = validator.New()

// Validate checks the key requirement and the option values.
func (o *Options) Validate() error {
	if o.Key == "" && (!o.ForceRescan || o.Persist) {
		return fmt.Errorf("%w: the 'key' argument is required unless a rescan is forced and the manifest is not persisted; "+
			"this key is needed for validation and determining file structure", ErrInvalidArgument)
	}
	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s must start with '.' (value: %v)", ErrInvalidArgument, verrs[0].Namespace(), verrs[0].Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}

// writes reports whether a fresh scan is written back to disk.
func (o *Options) writes() bool {
	return o.Persist && !o.ReadOnly
}

func (o Options) withDefaults() Options {
	if o.Opener == nil {
		o.Opener = container.HDF5{}
	}
	if len(o.Extensions) == 0 {
		o.Extensions = append([]string(nil), container.DefaultExtensions...)
	}
	if o.Logger == nil {
		o.Logger = logging.Get("scanner")
	}
	return o
}

func overrideKeys(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "[" + strings.Join(keys, " ") + "]"
}
