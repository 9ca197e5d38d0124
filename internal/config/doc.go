// Package config loads sensorwatch configuration from YAML.
//
// Configuration is optional: Default() carries the reference deployment's
// settings and Load layers a YAML file on top of them, so a config file only
// needs the fields it changes. ${VAR_NAME} references in the file are
// expanded from the environment before parsing, and interval fields accept
// Go duration strings ("1s", "60s", "15m").
package config
