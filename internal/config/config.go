// Package config loads generation profiles from TOML files.
//
// A profile sets any subset of the generator parameters:
//
//	levels = 4
//	max_sub_dirs = 8
//	size_budget = 1073741824
//	file_content = "compressible"
//
// Keys missing from the file keep the values of the base spec. Unknown keys
// are rejected so that typos do not silently fall back to defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ivoronin/randtree/internal/generator"
	"github.com/ivoronin/randtree/internal/types"
)

// Load decodes the profile at path on top of base.
func Load(path string, base generator.Spec) (generator.Spec, error) {
	spec := base
	md, err := toml.DecodeFile(path, &spec)
	if err != nil {
		return base, fmt.Errorf("read profile %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return base, fmt.Errorf("%w: unknown keys in profile %s: %s",
			types.ErrInvalidArgument, path, strings.Join(keys, ", "))
	}
	return spec, nil
}
