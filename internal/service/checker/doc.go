// Package checker verifies finished package archives. It walks the archive
// members and checks the invariants a device relies on: exactly one
// root-level manifest that passes the schema, well-formed generated
// descriptors, the presence of the executable and the license, and root
// ownership on every member.
package checker
