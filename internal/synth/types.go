package synth

import (
	"context"
	"fmt"
	"strings"
)

// CompileRequest asks the synthesis service to synthesize a module at a
// target frequency.
type CompileRequest struct {
	TargetFrequencyHz int64  `json:"target_frequency_hz"`
	ModuleText        string `json:"module_text"`
	TopModuleName     string `json:"top_module_name"`
}

// CompileResponse is the service's timing verdict. MaxFrequencyHz is the
// service's own estimate of the achievable fmax; 0 means unknown.
type CompileResponse struct {
	SlackPs        int64  `json:"slack_ps"`
	MaxFrequencyHz int64  `json:"max_frequency_hz"`
	Netlist        string `json:"netlist"`
}

// GenerateRequest asks the module generator for a synthesizable hardware
// description of a single operation.
type GenerateRequest struct {
	OpName       string   `json:"op_name"`
	ResultType   string   `json:"result_type"`
	OperandTypes []string `json:"operand_types"`

	// At most one attribute key/value pair.
	AttributeKey   string `json:"attribute_key,omitempty"`
	AttributeValue string `json:"attribute_value,omitempty"`

	// LiteralOperand, if set, is the operand number to replace with a
	// literal. RepeatedOperand, if set, is the operand number every other
	// operand is wired to (the operands-identical specialization).
	LiteralOperand  *int64 `json:"literal_operand,omitempty"`
	RepeatedOperand *int64 `json:"repeated_operand,omitempty"`
}

// GenerateResponse carries the generated module text.
type GenerateResponse struct {
	ModuleText string `json:"module_text"`
}

// Service is the combined external collaborator surface the driver needs.
// Both calls block until the remote side answers; no timeout is imposed at
// this layer, so an unresponsive service stalls the run.
type Service interface {
	Compile(ctx context.Context, req CompileRequest) (CompileResponse, error)
	GenerateModule(ctx context.Context, req GenerateRequest) (string, error)
}

// TypeDescriptor builds the generator's type string for a width and optional
// array dimensions: bits[8], bits[8][4], bits[32][4][2], ...
func TypeDescriptor(bitCount int64, elementCounts []int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "bits[%d]", bitCount)
	for _, count := range elementCounts {
		fmt.Fprintf(&b, "[%d]", count)
	}
	return b.String()
}
