package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// IdeaKey identifies a cached generation.
// Hash is the hex sha256 of the idea's UTF-8 bytes.
type IdeaKey struct {
	VersionID string
	Hash      string
}

// String converts the key into the form stored in the cache map.
func (k IdeaKey) String() string {
	// idea:<VERSION_ID>:<HASH_HEX>
	return fmt.Sprintf("idea:%s:%s", k.VersionID, k.Hash)
}

// BuildIdeaKey hashes idea as-is; callers trim it first so that the key
// matches what is sent upstream. versionID namespaces keys so a deploy can
// invalidate everything by bumping it.
func BuildIdeaKey(idea, versionID string) IdeaKey {
	sum := sha256.Sum256([]byte(idea))
	return IdeaKey{
		VersionID: strings.TrimSpace(versionID),
		Hash:      hex.EncodeToString(sum[:]),
	}
}

// parseIdeaKey is the inverse of IdeaKey.String.
func parseIdeaKey(key string) (IdeaKey, bool) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 || parts[0] != "idea" {
		return IdeaKey{}, false
	}
	return IdeaKey{VersionID: parts[1], Hash: parts[2]}, true
}
