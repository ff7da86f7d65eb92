package configuration

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/openvasp/openvasp-host/directory"
	"github.com/openvasp/openvasp-host/fileoperations"
	"github.com/openvasp/openvasp-host/localcache"
	"github.com/openvasp/openvasp-host/registry"
	"github.com/openvasp/openvasp-host/relay"
	"github.com/openvasp/openvasp-host/repohelper"
	"github.com/openvasp/openvasp-host/webserver"
	"github.com/openvasp/openvasp-host/zincadapter"
)

// Configuration is the main configuration of the application that corresponds to the *.yaml file
// that holds the configuration.
type Configuration struct {
	Local         directory.Entry       `yaml:"local"`
	Server        webserver.Config      `yaml:"server"`
	Database      repohelper.Config     `yaml:"database"`
	Relay         relay.Config          `yaml:"relay"`
	Registry      registry.Config       `yaml:"registry"`
	Directory     directory.Config      `yaml:"directory"`
	Cache         localcache.Config     `yaml:"cache"`
	FileOperator  fileoperations.Config `yaml:"file_operator"`
	ZincLogger    zincadapter.Config    `yaml:"zinc_logger"`
	TelemetryPort int                   `yaml:"telemetry_port"`
}

// Read reads the configuration from the file and returns the Configuration with set fields according to the yaml setup.
func Read(path string) (Configuration, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, err
	}

	var main Configuration
	err = yaml.Unmarshal(buf, &main)
	if err != nil {
		return Configuration{}, fmt.Errorf("in file %q: %w", path, err)
	}

	return main, err
}
