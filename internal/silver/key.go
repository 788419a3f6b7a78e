package silver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"cinelake/internal/contracts"
	"cinelake/internal/textutil"
)

// movieKey derives the cross-provider record identity. A contract that
// declares an explicit key field uses the provider-supplied value,
// namespaced per provider so keys from different providers never collide
// by accident. Everything else derives a stable hash from the normalized
// title and year.
func movieKey(contract contracts.Contract, provider string, fields map[string]any, title string, year int) (string, bool) {
	if keySpec, ok := contract.KeyField(); ok {
		value, present := fields[keySpec.Name]
		text := strings.TrimSpace(fmt.Sprintf("%v", value))
		if !present || text == "" {
			return "", false
		}
		return provider + ":" + text, true
	}
	if title == "" {
		return "", false
	}
	return DeriveKey(title, year), true
}

// DeriveKey hashes a normalized title/year pair into the 16-hex-char key
// used when no provider supplies an explicit identity.
func DeriveKey(title string, year int) string {
	normalized := strings.ToLower(textutil.CollapseWhitespace(title))
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", normalized, year)))
	return hex.EncodeToString(sum[:])[:16]
}
