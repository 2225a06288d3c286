// Package config provides the configuration of dupman.
//
// A Config is created with NewConfig (built-in defaults), optionally merged
// with a YAML file (LoadConfigFile / Load) and validated once with Validate.
// It is then passed by pointer to every component; nothing in the module
// reads configuration from global state.
//
// The package also owns the eligibility rules shared by the scanner and the
// index: extension and substring exclusions, size bounds, and the text and
// image extension sets.
package config
