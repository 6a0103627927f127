package sig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignature_Key_Deterministic(t *testing.T) {
	s := Signature{
		Op:          "kAdd",
		ResultWidth: 8,
		Operands:    []Operand{{BitCount: 8}, {BitCount: 8}},
	}
	assert.Equal(t, s.Key(), s.Key(), "key must be a pure function of the fields")

	same := Signature{
		Op:          "kAdd",
		ResultWidth: 8,
		Operands:    []Operand{{BitCount: 8}, {BitCount: 8}},
	}
	assert.Equal(t, s.Key(), same.Key(), "equal signatures must produce equal keys")
}

func TestSignature_Key_FieldSensitivity(t *testing.T) {
	base := Signature{
		Op:          "kAdd",
		ResultWidth: 8,
		Operands:    []Operand{{BitCount: 8}, {BitCount: 8}},
	}

	variants := map[string]Signature{
		"different op": {
			Op: "kSub", ResultWidth: 8,
			Operands: []Operand{{BitCount: 8}, {BitCount: 8}},
		},
		"different result width": {
			Op: "kAdd", ResultWidth: 16,
			Operands: []Operand{{BitCount: 8}, {BitCount: 8}},
		},
		"different operand width": {
			Op: "kAdd", ResultWidth: 8,
			Operands: []Operand{{BitCount: 8}, {BitCount: 16}},
		},
		"fewer operands": {
			Op: "kAdd", ResultWidth: 8,
			Operands: []Operand{{BitCount: 8}},
		},
		"element count": {
			Op: "kAdd", ResultWidth: 8,
			Operands: []Operand{{BitCount: 8, ElementCount: 4}, {BitCount: 8}},
		},
		"specialization": {
			Op: "kAdd", ResultWidth: 8,
			Operands:       []Operand{{BitCount: 8}, {BitCount: 8}},
			Specialization: OperandsIdentical,
		},
	}

	for name, v := range variants {
		assert.NotEqual(t, base.Key(), v.Key(), "variant %q must change the key", name)
	}
}

func TestSignature_Key_OperandOrderMatters(t *testing.T) {
	a := Signature{Op: "kShll", ResultWidth: 16, Operands: []Operand{{BitCount: 16}, {BitCount: 4}}}
	b := Signature{Op: "kShll", ResultWidth: 16, Operands: []Operand{{BitCount: 4}, {BitCount: 16}}}
	assert.NotEqual(t, a.Key(), b.Key(), "operand order is part of the identity")
}

func TestSignature_Key_NoFieldBleed(t *testing.T) {
	// Field values must not be able to shift across encoding boundaries:
	// result 81 with operand 8 vs result 8 with operand 18, etc.
	a := Signature{Op: "kAdd", ResultWidth: 81, Operands: []Operand{{BitCount: 8}}}
	b := Signature{Op: "kAdd", ResultWidth: 8, Operands: []Operand{{BitCount: 18}}}
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestSpecialization_Valid(t *testing.T) {
	assert.True(t, SpecializationNone.Valid())
	assert.True(t, OperandsIdentical.Valid())
	assert.True(t, HasLiteralOperand.Valid())
	assert.False(t, Specialization("bogus").Valid())
}

func TestSignature_String(t *testing.T) {
	s := Signature{
		Op:          "kArrayIndex",
		ResultWidth: 8,
		Operands: []Operand{
			{BitCount: 8, ElementCount: 16},
			{BitCount: 4},
		},
		Specialization: OperandsIdentical,
	}
	assert.Equal(t, "kArrayIndex 8 <- 8x16 4 (operands_identical)", s.String())
}
