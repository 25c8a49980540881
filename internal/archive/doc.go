// Package archive turns a finished staging tree into the final package
// archive. The heavy lifting is delegated to the system tar binary with
// flags pinned for reproducible output; this package validates the staged
// manifest, resolves the package descriptor, derives the archive name,
// orders the members and verifies that exactly one archive came out.
package archive
