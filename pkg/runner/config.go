// Copyright 2024 The Solaris Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package runner

import (
	"encoding/json"
	"fmt"

	"github.com/solarisdb/promissory/golibs/config"
	"github.com/solarisdb/promissory/golibs/logging"
	"github.com/solarisdb/promissory/pkg/dispatch"
)

type (
	// Config defines the promissory runner configuration
	Config struct {
		// Dispatch specifies the executors and timers settings
		Dispatch *dispatch.Config `json:"dispatch"`
		// LogLevel is one of the logging levels: ERROR, WARN, INFO, DEBUG or TRACE
		LogLevel string `json:"logLevel"`
	}
)

// EnvPrefix is the prefix of the environment variables, which override the config values
const EnvPrefix = "PROMISSORY"

// getDefaultConfig returns the default runner config
func getDefaultConfig() *Config {
	return &Config{
		Dispatch: dispatch.GetDefaultConfig(),
		LogLevel: logging.INFO.String(),
	}
}

// BuildConfig returns the config built from the defaults, the cfgFile (which
// may be empty) and the PROMISSORY_ environment variables, in that order.
func BuildConfig(cfgFile string) (*Config, error) {
	log := logging.NewLogger("promissory.ConfigBuilder")
	log.Infof("trying to build config. cfgFile=%s", cfgFile)
	e := config.NewEnricher(*getDefaultConfig())
	fe := config.NewEnricher(Config{})
	err := fe.LoadFromFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("could not read data from the file %s: %w", cfgFile, err)
	}
	// overwrite default
	_ = e.ApplyOther(fe)
	_ = e.ApplyEnvVariables(EnvPrefix, "_")
	cfg := e.Value()
	return &cfg, nil
}

// String implements fmt.Stringify interface in a pretty console form
func (c *Config) String() string {
	b, _ := json.MarshalIndent(*c, "", "  ")
	return string(b)
}
