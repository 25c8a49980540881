// Package conf derives the generated configuration descriptors that ship
// inside a package: package.conf from the fixed parameter table, cgi.conf
// from the manifest httpConfig list and param.conf from paramConfig.
//
// package.conf resolution runs in three passes: the special parameters
// (version triplet, vendor homepage link, CGI path flag), the generic
// source-or-default pass in table order, and two late fallbacks that
// depend on the build target and the resolved application name.
package conf
