package bytecode

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// wireConstant is the canonical encoding of one constant-table entry.
type wireConstant struct {
	Kind Kind   `cbor:"1,keyasint"`
	Bits uint64 `cbor:"2,keyasint,omitempty"`
	Str  string `cbor:"3,keyasint,omitempty"`
}

type wireChunk struct {
	Constants []wireConstant `cbor:"1,keyasint"`
	Code      []uint32       `cbor:"2,keyasint"`
}

// Fingerprint returns the SHA-256 of the chunk's canonical CBOR encoding.
// Only constants and code contribute, so the same program compiled twice
// has the same fingerprint regardless of source layout. Chunks holding a
// native function constant cannot be fingerprinted.
func (c *Chunk) Fingerprint() ([32]byte, error) {
	w := wireChunk{
		Constants: make([]wireConstant, len(c.Constants)),
		Code:      make([]uint32, len(c.Code)),
	}
	for i, v := range c.Constants {
		if v.kind == KindNative {
			return [32]byte{}, fmt.Errorf("bytecode: constant %d is a native function", i)
		}
		w.Constants[i] = wireConstant{Kind: v.kind, Bits: v.bits, Str: v.str}
	}
	for i, ins := range c.Code {
		w.Code[i] = uint32(ins)
	}

	data, err := cborEncMode.Marshal(w)
	if err != nil {
		return [32]byte{}, fmt.Errorf("bytecode: encode chunk: %w", err)
	}
	return sha256.Sum256(data), nil
}

// FingerprintHex returns the fingerprint as a lowercase hex string.
func (c *Chunk) FingerprintHex() (string, error) {
	sum, err := c.Fingerprint()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum[:]), nil
}
