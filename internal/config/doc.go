// Package config defines packaging defaults shared by build runs and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the default build target, the staging and output
// directories and the extra files staged into every package.
package config
