// Package integrity detects in-place mutation of values that are supposed to
// be immutable.
//
// Go has no way to freeze memory, so instead of rejecting writes the package
// fingerprints everything reachable from a value when it is sealed and
// compares fingerprints later:
//
//	s := integrity.Make(items)
//	items[0] = "changed"
//	if err := s.Verify(items); err != nil {
//	    // *MutationError
//	}
//
// Fingerprints are xxhash digests of a reflection walk. Unexported fields are
// included, map entries are combined independently of iteration order, and
// pointer cycles terminate. Channels and functions contribute only their
// identity.
package integrity
