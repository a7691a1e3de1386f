package perturb

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/viper"
)

var (
	cfgOnce sync.Once
	config  = _perturbconfig{}
)

// _perturbconfig is a "hidden" struct, just use `perturbConfig`.
type _perturbconfig struct {
	VSOP87    bool
	VSOP87Dir string
	outputDir string
}

// perturbConfig returns the package configuration, loaded once from the
// conf.toml of the directory named by the PERTURB_CONFIG environment
// variable. Without the variable, every optional feature stays disabled and
// exports go to the working directory, so the library is usable without any
// configuration. A set but unreadable configuration panics.
func perturbConfig() _perturbconfig {
	cfgOnce.Do(func() {
		config.outputDir = "."
		confPath := os.Getenv("PERTURB_CONFIG")
		if confPath == "" {
			return
		}
		viper.SetConfigName("conf")
		viper.AddConfigPath(confPath)
		if err := viper.ReadInConfig(); err != nil {
			panic(fmt.Errorf("%s/conf.toml not found", confPath))
		}

		config.VSOP87 = viper.GetBool("VSOP87.enabled")
		config.VSOP87Dir = viper.GetString("VSOP87.directory")
		if out := viper.GetString("general.output_path"); out != "" {
			config.outputDir = out
		}
	})
	return config
}
