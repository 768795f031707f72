package pkg

import (
	"fmt"

	"go-simpler.org/env"
)

type AdkctlConf struct {
	ManifestDir  string `env:"ADKCTL_MANIFEST_DIR" default:"manifests"`
	Registry     string `env:"ADKCTL_REGISTRY"`
	ChartName    string `env:"ADKCTL_CHART_NAME" default:"webui-adk"`
	ExpandStrict bool   `env:"ADKCTL_EXPAND_STRICT" default:"true"`
}

var (
	Settings *AdkctlConf
)

func LoadSettings() (*AdkctlConf, error) {
	settings := AdkctlConf{}
	err := env.Load(&settings, nil)
	//TODO: add lazy execution with once..
	if err != nil {
		return &settings, fmt.Errorf("improperly configured: %v", err)
	}
	Settings = &settings
	return Settings, nil
}
