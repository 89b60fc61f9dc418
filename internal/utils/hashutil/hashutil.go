package hashutil

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// Blake3Hash returns the hex-encoded blake3 digest of data. Used as a stable
// content fingerprint when correlating log lines about the same image.
func Blake3Hash(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}
