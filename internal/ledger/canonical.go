package ledger

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CanonicalID normalizes a participant identifier (ledger account id or
// DID) for use as a comparison and storage key.
//
// Identifiers arrive from several producers (wallet extensions, the web
// app, the provisioning service) and occasionally differ only in Unicode
// representation or surrounding whitespace. NFC normalization makes the
// store's actor indexes and the resolver's cache keys agree byte-wise.
func CanonicalID(id string) string {
	return norm.NFC.String(strings.TrimSpace(id))
}
