// Package identity maps guest e-mail addresses to a stable key, so that
// repeat RSVPs from the same guest land on the same record.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// gmailDomains ignore dots and "+tag" suffixes in the local part.
var gmailDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
}

// NormalizeEmail lowercases and trims an address. For Gmail it also drops
// dots and any "+tag" from the local part and folds googlemail.com into
// gmail.com. Input without an "@" is returned lowercased and trimmed.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	local, domain, ok := cutLast(email, "@")
	if !ok || !gmailDomains[domain] {
		return email
	}

	if tag := strings.IndexByte(local, '+'); tag >= 0 {
		local = local[:tag]
	}
	return strings.ReplaceAll(local, ".", "") + "@gmail.com"
}

// GuestKey returns the hex SHA-256 of the normalized address.
func GuestKey(email string) string {
	sum := sha256.Sum256([]byte(NormalizeEmail(email)))
	return hex.EncodeToString(sum[:])
}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}
