package sourcemap

// A SourceMapBuilder accumulates tokens emitted by a code generator.
// The zero value is ready to use. Tokens must be added in ascending
// (DstLine, DstCol) order; the builder does not validate after the
// fact. A builder is single-owner and not safe for concurrent use.
type SourceMapBuilder struct {
	file           *string
	sourceRoot     *string
	debugID        string
	names          []string
	namesMap       map[string]uint32
	sources        []*string
	sourcesMap     map[string]uint32
	sourceContents []*string
	tokens         []Token
	tokenChunks    []TokenChunk
}

// SetFile sets the generated filename.
func (b *SourceMapBuilder) SetFile(file string) {
	b.file = &file
}

// SetSourceRoot sets the source root prefix.
func (b *SourceMapBuilder) SetSourceRoot(root string) {
	b.sourceRoot = &root
}

// SetDebugID sets the debug id; see SourceMap.SetDebugID for the
// accepted forms.
func (b *SourceMapBuilder) SetDebugID(id string) error {
	var m SourceMap
	if err := m.SetDebugID(id); err != nil {
		return err
	}
	b.debugID = m.debugID
	return nil
}

// AddSource interns a source URL and returns its id. Adding a URL that
// is already interned returns the existing id.
func (b *SourceMapBuilder) AddSource(source string) uint32 {
	id, ok := b.sourcesMap[source]
	if ok {
		return id
	}
	return b.internSource(source, nil)
}

// AddSourceAndContent interns a source URL together with its embedded
// content and returns the source id. The content is recorded only the
// first time the URL is seen.
func (b *SourceMapBuilder) AddSourceAndContent(source, content string) uint32 {
	id, ok := b.sourcesMap[source]
	if ok {
		return id
	}
	return b.internSource(source, &content)
}

// internSource is the shared miss path: one insert, one allocation of
// the interned value.
func (b *SourceMapBuilder) internSource(source string, content *string) uint32 {
	id := uint32(len(b.sources))
	if b.sourcesMap == nil {
		b.sourcesMap = make(map[string]uint32)
	}
	b.sourcesMap[source] = id
	src := source
	b.sources = append(b.sources, &src)
	b.sourceContents = append(b.sourceContents, content)
	return id
}

// SetSourceContent sets the embedded content for an existing source id,
// extending the contents table with absent entries as needed.
func (b *SourceMapBuilder) SetSourceContent(sourceID uint32, content string) {
	for int(sourceID) >= len(b.sourceContents) {
		b.sourceContents = append(b.sourceContents, nil)
	}
	b.sourceContents[sourceID] = &content
}

// AddName interns a symbol name and returns its id.
func (b *SourceMapBuilder) AddName(name string) uint32 {
	id, ok := b.namesMap[name]
	if ok {
		return id
	}
	id = uint32(len(b.names))
	if b.namesMap == nil {
		b.namesMap = make(map[string]uint32)
	}
	b.namesMap[name] = id
	b.names = append(b.names, name)
	return id
}

// AddToken appends one token. Pass NoID for sourceID to record a pure
// segment (srcLine, srcCol, and nameID are then ignored), and NoID for
// nameID when the token has no symbol name.
func (b *SourceMapBuilder) AddToken(dstLine, dstCol, srcLine, srcCol, sourceID, nameID uint32) {
	if sourceID == NoID {
		srcLine, srcCol, nameID = 0, 0, NoID
	}
	b.tokens = append(b.tokens, Token{
		DstLine:  dstLine,
		DstCol:   dstCol,
		SrcLine:  srcLine,
		SrcCol:   srcCol,
		SourceID: sourceID,
		NameID:   nameID,
	})
}

// SetTokenChunks records chunk boundaries so the encoder can serialize
// the mappings string chunk by chunk, in parallel. Each chunk must
// carry the encoder state left behind by its predecessor.
func (b *SourceMapBuilder) SetTokenChunks(chunks []TokenChunk) {
	b.tokenChunks = chunks
}

// Build consumes the builder and returns the finished map.
func (b *SourceMapBuilder) Build() *SourceMap {
	m := &SourceMap{
		file:           b.file,
		sourceRoot:     b.sourceRoot,
		sources:        b.sources,
		sourceContents: b.sourceContents,
		names:          b.names,
		tokens:         b.tokens,
		tokenChunks:    b.tokenChunks,
		debugID:        b.debugID,
	}
	*b = SourceMapBuilder{}
	return m
}
