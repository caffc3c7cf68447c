package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/urfave/cli/v3"
)

const envPrefix = "OGCFILTER"

// settings are read from OGCFILTER_* variables and then overridden by
// the global flags that are set on the command line.
type settings struct {
	WFSVersion  string `envconfig:"WFS_VERSION" default:"2.0"`
	FilterNS    string `envconfig:"FILTER_NS" default:""`
	GMLVersion  string `envconfig:"GML_VERSION" default:""`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"console"`
	InputFormat string `envconfig:"INPUT_FORMAT" default:"json"`
	Workers     int    `envconfig:"WORKERS" default:"4"`
}

func loadSettings(cmd *cli.Command) (settings, error) {
	var s settings
	if err := envconfig.Process(envPrefix, &s); err != nil {
		return s, fmt.Errorf("unable to parse configuration: %w", err)
	}

	override(cmd, wfsVersionFlag, &s.WFSVersion)
	override(cmd, nsFlag, &s.FilterNS)
	override(cmd, gmlVersionFlag, &s.GMLVersion)
	override(cmd, logLevelFlag, &s.LogLevel)
	override(cmd, logFormatFlag, &s.LogFormat)
	override(cmd, inputFormatFlag, &s.InputFormat)

	switch s.InputFormat {
	case inputJSON, inputMsgpack:
	default:
		return s, fmt.Errorf("unsupported input format %q", s.InputFormat)
	}
	if s.Workers < 1 {
		return s, fmt.Errorf("workers must be positive, got %d", s.Workers)
	}
	return s, nil
}

func override(cmd *cli.Command, name string, dst *string) {
	if cmd.IsSet(name) {
		*dst = cmd.String(name)
	}
}
