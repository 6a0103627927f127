package catalog

// generatorNames maps catalog operation ids (enum-style) to the module
// generator's operation names.
var generatorNames = map[string]string{
	"kAdd":             "add",
	"kAnd":             "and",
	"kAndReduce":       "and_reduce",
	"kArray":           "array",
	"kArrayConcat":     "array_concat",
	"kArrayIndex":      "array_index",
	"kArraySlice":      "array_slice",
	"kArrayUpdate":     "array_update",
	"kBitSlice":        "bit_slice",
	"kBitSliceUpdate":  "bit_slice_update",
	"kConcat":          "concat",
	"kDecode":          "decode",
	"kDynamicBitSlice": "dynamic_bit_slice",
	"kEncode":          "encode",
	"kEq":              "eq",
	"kGate":            "gate",
	"kIdentity":        "identity",
	"kLiteral":         "literal",
	"kNand":            "nand",
	"kNe":              "ne",
	"kNeg":             "neg",
	"kNor":             "nor",
	"kNot":             "not",
	"kOneHot":          "one_hot",
	"kOneHotSel":       "one_hot_sel",
	"kOr":              "or",
	"kOrReduce":        "or_reduce",
	"kPrioritySel":     "priority_sel",
	"kReverse":         "reverse",
	"kSDiv":            "sdiv",
	"kSGe":             "sge",
	"kSGt":             "sgt",
	"kSLe":             "sle",
	"kSLt":             "slt",
	"kSMod":            "smod",
	"kSMul":            "smul",
	"kSMulp":           "smulp",
	"kSel":             "sel",
	"kShll":            "shll",
	"kShra":            "shra",
	"kShrl":            "shrl",
	"kSignExt":         "sign_ext",
	"kSub":             "sub",
	"kTuple":           "tuple",
	"kTupleIndex":      "tuple_index",
	"kUDiv":            "udiv",
	"kUGe":             "uge",
	"kUGt":             "ugt",
	"kULe":             "ule",
	"kULt":             "ult",
	"kUMod":            "umod",
	"kUMul":            "umul",
	"kUMulp":           "umulp",
	"kXor":             "xor",
	"kXorReduce":       "xor_reduce",
	"kZeroExt":         "zero_ext",
}

// GeneratorName returns the module generator's name for a catalog op id.
func GeneratorName(op string) (string, bool) {
	name, ok := generatorNames[op]
	return name, ok
}
