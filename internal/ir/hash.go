package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainSnapshot = "tenpair/snapshot/v1"
	DomainEdits    = "tenpair/edits/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotHash identifies a snapshot by content.
// Journals store it after every reconciliation so replays can be checked
// without storing whole boards.
func SnapshotHash(s Snapshot) (string, error) {
	canonical, err := MarshalCanonical(s.ToIR())
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// EditsHash identifies an ordered edit stream by content.
func EditsHash(edits []Edit) (string, error) {
	canonical, err := MarshalCanonical(EditsToIR(edits))
	if err != nil {
		return "", fmt.Errorf("EditsHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEdits, canonical), nil
}
