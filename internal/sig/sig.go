package sig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Specialization tags a structural variant of an operation's implementation.
type Specialization string

const (
	// SpecializationNone is the default (general) implementation.
	SpecializationNone Specialization = ""

	// OperandsIdentical marks the variant where all operands are wired to
	// the same value (e.g. x+x instead of x+y).
	OperandsIdentical Specialization = "operands_identical"

	// HasLiteralOperand marks the variant where one operand is a constant.
	HasLiteralOperand Specialization = "has_literal_operand"
)

// Valid reports whether s is a recognized specialization tag.
func (s Specialization) Valid() bool {
	switch s {
	case SpecializationNone, OperandsIdentical, HasLiteralOperand:
		return true
	}
	return false
}

// Operand describes one operand of a parameterized operation.
// ElementCount is 0 for scalar (bits-typed) operands; for array operands it
// holds the total number of elements across all array dimensions.
type Operand struct {
	BitCount     int64 `yaml:"bit_count"`
	ElementCount int64 `yaml:"element_count,omitempty"`
}

// Signature is the canonical identity of a sample parameterization.
type Signature struct {
	Op             string         `yaml:"op"`
	ResultWidth    int64          `yaml:"result_width"`
	Operands       []Operand      `yaml:"operands"`
	Specialization Specialization `yaml:"specialization,omitempty"`
}

// Key is a canonical signature key: a domain-separated SHA-256 over the
// deterministic field encoding, hex encoded.
type Key string

// Domain prefix for signature keys. Version suffix enables future
// algorithm migration.
const domainSignature = "fmax/signature/v1"

// Key computes the canonical key for the signature. Pure and side-effect
// free: equal signatures always produce equal keys, and any field change
// produces a different key.
func (s Signature) Key() Key {
	var buf bytes.Buffer
	// Operation names are authored by humans; normalize to NFC so that
	// visually identical names hash identically.
	buf.WriteString(norm.NFC.String(s.Op))
	fmt.Fprintf(&buf, "\x00%d", s.ResultWidth)
	for _, op := range s.Operands {
		fmt.Fprintf(&buf, "\x00%d:%d", op.BitCount, op.ElementCount)
	}
	if s.Specialization != SpecializationNone {
		buf.WriteByte(0x00)
		buf.WriteString(string(s.Specialization))
	}

	h := sha256.New()
	h.Write([]byte(domainSignature))
	h.Write([]byte{0x00}) // null separator prevents domain/data boundary ambiguity
	h.Write(buf.Bytes())
	return Key(hex.EncodeToString(h.Sum(nil)))
}

// String renders the signature for log lines and diagnostics.
func (s Signature) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %d <-", s.Op, s.ResultWidth)
	for _, op := range s.Operands {
		if op.ElementCount > 0 {
			fmt.Fprintf(&buf, " %dx%d", op.BitCount, op.ElementCount)
		} else {
			fmt.Fprintf(&buf, " %d", op.BitCount)
		}
	}
	if s.Specialization != SpecializationNone {
		fmt.Fprintf(&buf, " (%s)", s.Specialization)
	}
	return buf.String()
}
