package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Namespace shared by both tiers. Flush targets this prefix.
const Namespace = "rag"

// SchemaVersion tags every key; bump it to invalidate all cached entries
// when the serialized bundle shape changes.
const SchemaVersion = "v2"

// corpusTag identifies which corpora a bundle covers. Retrieval always
// fetches all three, so a single tag is in use today.
const corpusTag = "both"

// CombinedKey builds the key for a whole normalized symptom set:
// rag:both:<fingerprint>:v2. The fingerprint hashes the comma-joined sorted
// set, so sets differing only in input order or case collide on purpose.
func CombinedKey(symptoms []string) string {
	return fmt.Sprintf("%s:%s:%s:%s", Namespace, corpusTag, fingerprint(strings.Join(symptoms, ",")), SchemaVersion)
}

// PerSymptomKey builds the key for a single normalized symptom:
// rag:per:both:<fingerprint>:v2.
func PerSymptomKey(symptom string) string {
	return fmt.Sprintf("%s:per:%s:%s:%s", Namespace, corpusTag, fingerprint(symptom), SchemaVersion)
}

func fingerprint(material string) string {
	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:])
}

// --- helpers for parsing keys back into fields for logging ---

type keyParts struct {
	tier      string // "combined" | "per_symptom"
	corpusTag string
	hash      string
	version   string
}

func parseKey(key string) (keyParts, bool) {
	parts := strings.Split(key, ":")
	switch {
	case len(parts) == 4 && parts[0] == Namespace:
		return keyParts{tier: "combined", corpusTag: parts[1], hash: parts[2], version: parts[3]}, true
	case len(parts) == 5 && parts[0] == Namespace && parts[1] == "per":
		return keyParts{tier: "per_symptom", corpusTag: parts[2], hash: parts[3], version: parts[4]}, true
	default:
		return keyParts{}, false
	}
}
