package config

import (
	"github.com/mitchellh/mapstructure"

	"github.com/comfortlab/comfortcast/pkg/util/exception"
)

// Bind decodes an untyped configuration map into a typed struct, honoring
// yaml tags and coercing weakly typed YAML scalars (e.g. "630" into an int).
func Bind(properties interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return exception.NewPipelineError(moduleName, "failed to create property decoder", err, false, false)
	}
	if err := decoder.Decode(properties); err != nil {
		return exception.NewPipelineError(moduleName, "failed to decode properties", err, false, false)
	}
	return nil
}
