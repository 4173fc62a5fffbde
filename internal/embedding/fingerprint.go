package embedding

import "github.com/cespare/xxhash/v2"

// Fingerprint returns a stable 64-bit digest of normalized text. Equal
// strings always produce equal fingerprints; at cache scale (tens of
// thousands of entries) the collision probability of xxhash64 is negligible.
// The sync flow also uses fingerprints to detect changed checklist items
// without comparing full text.
func Fingerprint(text string) uint64 {
	return xxhash.Sum64String(text)
}
