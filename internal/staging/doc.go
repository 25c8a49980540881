// Package staging assembles the on-disk layout of a package before it is
// archived. A Tree owns one staging directory: mandatory members go in at
// creation, optional directories and files are added afterwards, and every
// top-level name is claimed exactly once so that two sources can never
// silently overwrite each other.
package staging
