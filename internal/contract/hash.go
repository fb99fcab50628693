package contract

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/text/unicode/norm"
)

// DomainRecord is the domain prefix for manifest record identity.
// Version suffix enables future algorithm migration.
const DomainRecord = "eiffelgen/record/v1"

// RecordHash computes the content-addressed identity of one generated
// wrapper pair. The hash covers the source location, the parsed directive
// and the rendered pair, so two runs over identical input produce identical
// record IDs (determinism is a tested property of synthesis).
//
// Strings are NFC-normalized and length-prefixed before hashing so that
// visually identical Unicode identifiers hash equally and field boundaries
// stay unambiguous.
func RecordHash(file, receiver, method string, spec AttributeSpec, pair []byte) string {
	h := sha256.New()
	h.Write([]byte(DomainRecord))
	h.Write([]byte{0x00}) // Null separator between domain and payload

	writeField(h, file)
	writeField(h, receiver)
	writeField(h, method)
	writeField(h, spec.InvariantName)
	writeField(h, spec.Timing.String())
	writeBytes(h, pair)

	return hex.EncodeToString(h.Sum(nil))
}

type hashWriter interface {
	Write(p []byte) (int, error)
}

func writeField(h hashWriter, s string) {
	writeBytes(h, []byte(norm.NFC.String(s)))
}

func writeBytes(h hashWriter, b []byte) {
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(b)))
	h.Write(length[:])
	h.Write(b)
}
