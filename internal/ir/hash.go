package ir

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// DomainProgram is the domain prefix for program fingerprints. The
// version suffix enables future algorithm migration.
const DomainProgram = "mdsl/ir/v1"

// Fingerprint computes a content-addressed identity for a lowered
// program. Identical IR always yields an identical fingerprint, which
// is what the emitter determinism tests pin down.
//
// Serialization is canonical: struct field order is fixed by the type
// definitions, HTML escaping is disabled, and the byte stream is NFC
// normalized before hashing so visually identical source text cannot
// produce diverging fingerprints.
func Fingerprint(p *Program) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return "", fmt.Errorf("fingerprint: marshal program: %w", err)
	}

	canonical := norm.NFC.Bytes(buf.Bytes())

	h := sha256.New()
	h.Write([]byte(DomainProgram))
	h.Write([]byte{0x00}) // domain/data separator
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
