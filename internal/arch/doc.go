// Package arch defines the closed set of supported target CPU architectures.
//
// Each architecture has a canonical lowercase name used in manifests and
// package file names, and a GNU compiler triple used only for display.
package arch
