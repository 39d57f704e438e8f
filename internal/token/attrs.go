package token

// Attrs is the compact set of boolean flags a Token carries (spec §3,
// Token "attribute flags"). It is stored by value inside each arena
// record and returned by pointer from [Token.Attrs] so callers can flip
// individual bits without a full record rewrite.
type Attrs struct {
	IsUnsigned            bool
	IsLong                bool
	IsStandardType         bool
	IsCast                bool
	IsAttributePacked      bool
	IsAttributeNoreturn    bool
	IsAttributePure        bool
	IsAttributeConst       bool
	IsAttributeNodiscard   bool
	IsAttributeUnused      bool
	IsAttributeMaybeUnused bool
	IsExpandedMacro        bool
	IsExternC              bool
	IsInline               bool
	IsConstexpr            bool
	IsSplittedVarDeclComma bool
	IsSplittedVarDeclEq    bool
	IsImplicitInt          bool
	IsAtAddress            bool
	IsTemplate             bool
	IsOperatorKeyword      bool

	// Bits is the bitfield width in bits, or 0 if this token is not a
	// bitfield declarator width.
	Bits int
}

// ValueRecord is one entry of a token's "value set" (spec §3): a
// known-value record produced by the (external) value-flow collaborator.
// The tokenizer treats these as opaque payloads it merely stores and
// preserves across splices/copies, in source order.
type ValueRecord struct {
	Kind        string // e.g. "int", "tok", "uninit" -- opaque to the core.
	Int         int64
	Float       float64
	Str         string
	Inconclusive bool
}
