// Package packager drives a complete build: it loads packaging settings,
// reads the application manifest, stages the application directory,
// generates the configuration descriptors and archives the result.
//
// The staging tree lives under <build-dir>/<architecture>/<app-name> and is
// replaced on every run. The finished archive is copied to the output
// directory.
package packager
