package authtrust

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

const backupCodeBytes = 4

// GenerateBackupCodes returns n recovery codes in XXXX-XXXX form, eight
// uppercase hex characters each. Codes are unique within the batch; a
// colliding draw is discarded and redrawn.
func GenerateBackupCodes(n int) ([]string, error) {
	if n <= 0 {
		return nil, ErrInvalidCodeCount
	}

	codes := make([]string, 0, n)
	seen := make(map[string]struct{}, n)

	for len(codes) < n {
		var raw [backupCodeBytes]byte
		if _, err := rand.Read(raw[:]); err != nil {
			return nil, err
		}

		code := formatBackupCode(raw[:])
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	return codes, nil
}

// HashBackupCode returns the SHA-256 digest of a recovery code. Input is
// canonicalized first, so "ab12-cd34" and "AB12CD34" hash identically.
// Only hashes should be persisted.
func HashBackupCode(code string) [32]byte {
	return sha256.Sum256([]byte(canonicalBackupCode(code)))
}

// VerifyBackupCode reports whether input matches any stored hash. Every
// stored hash is compared in constant time; the scan never exits early on
// a match.
func VerifyBackupCode(input string, stored [][32]byte) bool {
	_, ok := matchBackupCode(input, stored)
	return ok
}

// ConsumeBackupCode verifies input against stored and, on a match, returns
// the remaining hashes with the matched one removed. The original slice is
// not modified.
func ConsumeBackupCode(input string, stored [][32]byte) ([][32]byte, bool) {
	idx, ok := matchBackupCode(input, stored)
	if !ok {
		return stored, false
	}

	remaining := make([][32]byte, 0, len(stored)-1)
	remaining = append(remaining, stored[:idx]...)
	remaining = append(remaining, stored[idx+1:]...)
	return remaining, true
}

func matchBackupCode(input string, stored [][32]byte) (int, bool) {
	h := HashBackupCode(input)

	matched := -1
	for i := range stored {
		if subtle.ConstantTimeCompare(h[:], stored[i][:]) == 1 && matched < 0 {
			matched = i
		}
	}
	return matched, matched >= 0
}

func formatBackupCode(raw []byte) string {
	hexed := strings.ToUpper(hex.EncodeToString(raw))
	return hexed[:4] + "-" + hexed[4:]
}

func canonicalBackupCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, "-", "")
	return strings.ReplaceAll(code, " ", "")
}
