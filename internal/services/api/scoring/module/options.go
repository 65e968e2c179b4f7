package module

import (
	"prsentinel/internal/platform/config"
	"prsentinel/internal/services/api/scoring/service"
)

// Options selects the served model
type Options struct {
	ModelID  string `env:"CORE_API_MODEL_ID"`
	ModelURI string `env:"CORE_API_MODEL_URI"`
}

// FromConfig reads CORE_API_MODEL_ID (default latest) and CORE_API_MODEL_URI
func FromConfig(cfg config.Conf) Options {
	in := cfg.Prefix("CORE_API_")
	return Options{
		ModelID:  in.MayString("MODEL_ID", "latest"),
		ModelURI: in.MayString("MODEL_URI", ""),
	}
}

// Source converts the options into a load source
func (o Options) Source() service.Source {
	return service.Source{ID: o.ModelID, URI: o.ModelURI}
}
