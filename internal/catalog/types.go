package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/fmax/internal/sig"
)

// OperandElements gives the array dimensions of one operand.
type OperandElements struct {
	OperandNumber int64   `json:"operand_number"`
	ElementCounts []int64 `json:"element_counts"`
}

// TotalElements returns the product of all dimension counts.
func (e OperandElements) TotalElements() int64 {
	total := int64(1)
	for _, c := range e.ElementCounts {
		total *= c
	}
	return total
}

// Parameterization is one sample point: the widths (and optional array
// dimensions) to instantiate an operation with.
type Parameterization struct {
	ResultWidth          int64             `json:"result_width"`
	OperandWidths        []int64           `json:"operand_widths"`
	ResultElementCounts  []int64           `json:"result_element_counts,omitempty"`
	OperandElementCounts []OperandElements `json:"operand_element_counts,omitempty"`
}

// Signature builds the canonical identity for this parameterization under
// the group's operation and specialization.
func (p Parameterization) Signature(op string, specialization sig.Specialization) sig.Signature {
	operands := make([]sig.Operand, len(p.OperandWidths))
	for i, w := range p.OperandWidths {
		operands[i] = sig.Operand{BitCount: w}
	}
	for _, oe := range p.OperandElementCounts {
		if oe.OperandNumber >= 0 && oe.OperandNumber < int64(len(operands)) {
			operands[oe.OperandNumber].ElementCount = oe.TotalElements()
		}
	}
	return sig.Signature{
		Op:             op,
		ResultWidth:    p.ResultWidth,
		Operands:       operands,
		Specialization: specialization,
	}
}

// OpSamples is one operation group: the operation, its structural variant,
// an optional attribute, and the ordered sample points.
type OpSamples struct {
	Op             string             `json:"op"`
	Specialization sig.Specialization `json:"specialization,omitempty"`

	// Attributes is at most one "key=value" pair forwarded to the module
	// generator; the value may contain the %r placeholder, resolved to
	// the sample's result width.
	Attributes string `json:"attributes,omitempty"`

	Points []Parameterization `json:"points"`
}

// Attribute resolves the group's attribute for a given result width.
// Returns empty key and value when the group has no attribute.
func (g OpSamples) Attribute(resultWidth int64) (key, value string, err error) {
	if g.Attributes == "" {
		return "", "", nil
	}
	key, value, ok := strings.Cut(g.Attributes, "=")
	if !ok {
		return "", "", fmt.Errorf("attribute %q: want key=value", g.Attributes)
	}
	value = strings.ReplaceAll(value, "%r", strconv.FormatInt(resultWidth, 10))
	return key, value, nil
}

// Catalog is the ordered list of operation groups.
type Catalog struct {
	Samples []OpSamples `json:"samples"`
}

// PointCount returns the total number of parameterizations.
func (c *Catalog) PointCount() int {
	n := 0
	for _, g := range c.Samples {
		n += len(g.Points)
	}
	return n
}
