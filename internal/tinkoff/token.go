package tinkoff

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// GenToken signs fields the way the gateway does: add Password, sort by key,
// concatenate the values and hash with SHA-256.
func (c *Client) GenToken(fields map[string]string) string {
	return genToken(fields, c.secretKey)
}

func genToken(fields map[string]string, password string) string {
	keys := make([]string, 0, len(fields)+1)
	for k := range fields {
		if k == "Password" {
			continue
		}
		keys = append(keys, k)
	}
	keys = append(keys, "Password")
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		if k == "Password" {
			b.WriteString(password)
			continue
		}
		b.WriteString(fields[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
