package sourcemap

// NoID marks an absent SourceID or NameID on a Token. It is an internal
// sentinel only and never appears in encoded output.
const NoID = ^uint32(0)

// A Token records one mapping entry: a position in the generated output
// and, unless it is a pure segment, the position it maps to in an
// original source. Tokens are 24-byte values; consumers may take copies
// freely. Lines and columns are 0-based, columns counted in UTF-16 code
// units.
type Token struct {
	DstLine  uint32
	DstCol   uint32
	SrcLine  uint32
	SrcCol   uint32
	SourceID uint32
	NameID   uint32
}

// NewToken returns a token mapping (dstLine, dstCol) to
// (srcLine, srcCol) in the source sourceID. Pass NoID for sourceID or
// nameID to leave them absent; a token without a source must not carry
// a name, and its srcLine and srcCol are meaningless.
func NewToken(dstLine, dstCol, srcLine, srcCol, sourceID, nameID uint32) Token {
	return Token{
		DstLine:  dstLine,
		DstCol:   dstCol,
		SrcLine:  srcLine,
		SrcCol:   srcCol,
		SourceID: sourceID,
		NameID:   nameID,
	}
}

// HasSource reports whether the token carries an original position.
// A token without one is a pure segment: it marks "no mapping at or
// after this column".
func (t Token) HasSource() bool { return t.SourceID != NoID }

// HasName reports whether the token carries a symbol name.
func (t Token) HasName() bool { return t.NameID != NoID }

// A TokenChunk delimits a half-open token range [Start, End) together
// with the encoder state left behind by the preceding chunk, so that
// chunks can be VLQ-encoded independently and concatenated. PrevDstCol
// only carries across a chunk boundary when the chunk starts on the
// same generated line the previous chunk ended on; a chunk that starts
// on a later line re-derives it from the emitted semicolons.
type TokenChunk struct {
	Start        uint32
	End          uint32
	PrevDstLine  uint32
	PrevDstCol   uint32
	PrevSrcLine  uint32
	PrevSrcCol   uint32
	PrevNameID   uint32
	PrevSourceID uint32
}

// A SourceViewToken pairs a token with its map so the interned source
// URL, content, and name can be resolved without further lookups.
type SourceViewToken struct {
	Token Token

	sm *SourceMap
}

// Source returns the token's source URL. The second result is false for
// pure segments and for null "sources" entries.
func (v SourceViewToken) Source() (string, bool) {
	if !v.Token.HasSource() {
		return "", false
	}
	return v.sm.Source(v.Token.SourceID)
}

// SourceContent returns the embedded content of the token's source.
func (v SourceViewToken) SourceContent() (string, bool) {
	if !v.Token.HasSource() {
		return "", false
	}
	return v.sm.SourceContent(v.Token.SourceID)
}

// Name returns the token's symbol name.
func (v SourceViewToken) Name() (string, bool) {
	if !v.Token.HasName() {
		return "", false
	}
	return v.sm.Name(v.Token.NameID)
}
