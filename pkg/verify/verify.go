// Package verify checks downloaded artifacts against their expected SHA256
// digest before anything touches persistent state.
package verify

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/halfdome/devkit/pkg/errors"
)

// File hashes the file at path and compares it against expectedHex.
// Comparison is case-insensitive on the hex digest. Returns a
// VERIFICATION_FAILED error on mismatch.
func File(path, expectedHex string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "opening artifact %s", path)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "hashing artifact %s", path)
	}

	return compare(h.Sum(nil), expectedHex)
}

// Bytes compares an in-memory artifact against expectedHex.
func Bytes(data []byte, expectedHex string) error {
	sum := sha256.Sum256(data)
	return compare(sum[:], expectedHex)
}

func compare(sum []byte, expectedHex string) error {
	got := hex.EncodeToString(sum)
	want := strings.ToLower(strings.TrimSpace(expectedHex))
	if got != want {
		return errors.Newf(errors.ErrVerificationFailed, "digest mismatch: got %s, want %s", got, want)
	}
	return nil
}
