package catalog

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// Error codes for catalog loading.
const (
	ErrCodeNotFound = "E_NOT_FOUND"
	ErrCodeParse    = "E_PARSE"
	ErrCodeInvalid  = "E_INVALID"
)

// LoadError is a catalog load or validation failure with a stable code.
type LoadError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads and validates a CUE catalog file. Fail-fast: the first error
// wins, and a bad catalog is never worked around.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalog not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: cueerrors.Details(err, nil)}
	}

	samplesVal := v.LookupPath(cue.ParsePath("samples"))
	if !samplesVal.Exists() {
		return nil, &LoadError{Code: ErrCodeInvalid, Message: "catalog must define a samples list"}
	}

	var c Catalog
	if err := samplesVal.Decode(&c.Samples); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: cueerrors.Details(err, nil)}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// validate checks structural constraints the CUE decode cannot express.
func (c *Catalog) validate() error {
	if len(c.Samples) == 0 {
		return &LoadError{Code: ErrCodeInvalid, Message: "samples list is empty"}
	}
	for gi, g := range c.Samples {
		where := fmt.Sprintf("samples[%d] (%s)", gi, g.Op)
		if g.Op == "" {
			return &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("samples[%d]: op is required", gi)}
		}
		if _, ok := GeneratorName(g.Op); !ok {
			return &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("%s: unknown operation", where)}
		}
		if !g.Specialization.Valid() {
			return &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("%s: unknown specialization %q", where, g.Specialization)}
		}
		if len(g.Points) == 0 {
			return &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("%s: at least one point is required", where)}
		}
		if g.Attributes != "" {
			if _, _, err := g.Attribute(1); err != nil {
				return &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("%s: %v", where, err)}
			}
		}
		for pi, p := range g.Points {
			if p.ResultWidth <= 0 {
				return &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("%s points[%d]: result_width must be positive", where, pi)}
			}
			for _, w := range p.OperandWidths {
				if w <= 0 {
					return &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("%s points[%d]: operand widths must be positive", where, pi)}
				}
			}
			for _, oe := range p.OperandElementCounts {
				if oe.OperandNumber < 0 || oe.OperandNumber >= int64(len(p.OperandWidths)) {
					return &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("%s points[%d]: operand_number %d out of range", where, pi, oe.OperandNumber)}
				}
			}
		}
	}
	return nil
}
