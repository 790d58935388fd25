package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// DomainSpec is the domain prefix for spec fingerprints. The version suffix
// enables future algorithm migration without colliding with old hashes.
const DomainSpec = "relc/spec/v1"

// buildIDNamespace is the fixed UUID namespace for deterministic build IDs.
var buildIDNamespace = uuid.MustParse("5a0c8f9e-1d24-4f6b-9c37-b51f0a6e2d8c")

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents domain/data
// boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content-addressed identity of a QuerySpec from
// its canonical encoding. The fingerprint is stable across compiler runs and
// across the three front ends: equivalent specs share a fingerprint.
func Fingerprint(spec *QuerySpec) (string, error) {
	canonical, err := MarshalCanonical(spec)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSpec, canonical), nil
}

// BuildID derives a deterministic UUID (version 5, name-based) from the
// canonical encoding of a QuerySpec. Compiling the same spec twice yields
// the same build ID, which keeps emitted artifacts byte-identical.
func BuildID(spec *QuerySpec) (string, error) {
	canonical, err := MarshalCanonical(spec)
	if err != nil {
		return "", fmt.Errorf("BuildID: failed to marshal: %w", err)
	}
	return uuid.NewSHA1(buildIDNamespace, canonical).String(), nil
}
