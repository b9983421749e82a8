package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"rpi-index-lab/internal/domain"
)

// DataVersionLength is the number of hex characters kept from the hash.
const DataVersionLength = 12

// ComputeDataVersion computes a deterministic short version for rendered series data.
// Formula: SHA256(base_label|rebased|series)
// Returns the first DataVersionLength hex characters.
func ComputeDataVersion(base domain.Period, rebased bool, series string) string {
	data := fmt.Sprintf("%s|%t|%s", base.Label(), rebased, series)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:DataVersionLength]
}
