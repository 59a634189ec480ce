package sourcemap

// A ConcatInput pairs a map with the first generated line its output
// occupies in the concatenated text.
type ConcatInput struct {
	Map        *SourceMap
	LineOffset uint32
}

// A ConcatSourceMapBuilder splices existing source maps end-to-end into
// a single map whose generated content is the concatenation of the
// inputs' generated texts. Sources and names are joined by disjoint
// append: each contribution's tables are appended without value
// deduplication and its token ids are shifted by the bases in effect
// when it was added. The zero value is ready to use.
type ConcatSourceMapBuilder struct {
	names          []string
	sources        []*string
	sourceContents []*string
	tokens         []Token
	tokenChunks    []TokenChunk
	ignoreList     []uint32

	prevSourceID uint32
	prevNameID   uint32
}

// ConcatSourceMaps returns a builder pre-sized for and populated with
// the given contributions, in order.
func ConcatSourceMaps(inputs []ConcatInput) *ConcatSourceMapBuilder {
	var namesLen, sourcesLen, tokensLen int
	for _, in := range inputs {
		namesLen += len(in.Map.names)
		sourcesLen += len(in.Map.sources)
		tokensLen += len(in.Map.tokens)
	}
	b := &ConcatSourceMapBuilder{
		names:          make([]string, 0, namesLen),
		sources:        make([]*string, 0, sourcesLen),
		sourceContents: make([]*string, 0, sourcesLen),
		tokens:         make([]Token, 0, tokensLen),
		tokenChunks:    make([]TokenChunk, 0, len(inputs)),
	}
	for _, in := range inputs {
		b.AddSourceMap(in.Map, in.LineOffset)
	}
	return b
}

// AddSourceMap appends one contribution. lineOffset is the generated
// line at which the contribution's output begins; it must not precede
// the previous contribution's lines. A contribution with zero tokens
// still advances the source and name id bases by its table sizes.
func (b *ConcatSourceMapBuilder) AddSourceMap(m *SourceMap, lineOffset uint32) {
	sourceIDBase := uint32(len(b.sources))
	nameIDBase := uint32(len(b.names))

	// Record the chunk before translating tokens: its entry state is
	// whatever the previous contribution left behind.
	start := uint32(len(b.tokens))
	chunk := TokenChunk{Start: start, End: start + uint32(len(m.tokens))}
	if start > 0 {
		last := b.tokens[start-1]
		chunk.PrevDstLine = last.DstLine
		chunk.PrevDstCol = last.DstCol
		// Pure segments leave the encoder's source position untouched,
		// so it comes from the last token that has a source.
		for j := int(start) - 1; j >= 0; j-- {
			if b.tokens[j].HasSource() {
				chunk.PrevSrcLine = b.tokens[j].SrcLine
				chunk.PrevSrcCol = b.tokens[j].SrcCol
				break
			}
		}
		chunk.PrevNameID = b.prevNameID
		chunk.PrevSourceID = b.prevSourceID
	}
	b.tokenChunks = append(b.tokenChunks, chunk)

	// Sources, contents, and names transfer by alias; contents are
	// padded so the two tables stay parallel.
	b.sources = append(b.sources, m.sources...)
	b.sourceContents = append(b.sourceContents, m.sourceContents...)
	for i := len(m.sourceContents); i < len(m.sources); i++ {
		b.sourceContents = append(b.sourceContents, nil)
	}
	b.names = append(b.names, m.names...)

	for _, id := range m.ignoreList {
		b.ignoreList = append(b.ignoreList, id+sourceIDBase)
	}

	for _, t := range m.tokens {
		nt := Token{
			DstLine:  t.DstLine + lineOffset,
			DstCol:   t.DstCol,
			SrcLine:  t.SrcLine,
			SrcCol:   t.SrcCol,
			SourceID: NoID,
			NameID:   NoID,
		}
		if t.SourceID != NoID {
			nt.SourceID = t.SourceID + sourceIDBase
			b.prevSourceID = nt.SourceID
		}
		if t.NameID != NoID {
			nt.NameID = t.NameID + nameIDBase
			b.prevNameID = nt.NameID
		}
		b.tokens = append(b.tokens, nt)
	}
}

// Build consumes the builder and returns the spliced map. The recorded
// per-contribution token chunks are kept so encoding can run chunk by
// chunk.
func (b *ConcatSourceMapBuilder) Build() *SourceMap {
	m := &SourceMap{
		names:          b.names,
		sources:        b.sources,
		sourceContents: b.sourceContents,
		tokens:         b.tokens,
		tokenChunks:    b.tokenChunks,
		ignoreList:     b.ignoreList,
	}
	*b = ConcatSourceMapBuilder{}
	return m
}
