// Package sourcemap reads, builds, concatenates, and writes Source Map
// v3 artifacts: the JSON-encoded mapping that relates positions in a
// generated text to positions in one or more original sources.
package sourcemap

import (
	"encoding/base64"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// A SourceMap is a column-sorted table of tokens together with the
// interned sources, source contents, and names they refer to. Maps are
// produced by Parse, SourceMapBuilder, or ConcatSourceMapBuilder. A
// fully built map is safe for concurrent reads; the explicit Set*
// mutators are not.
type SourceMap struct {
	file           *string
	sourceRoot     *string
	sources        []*string
	sourceContents []*string
	names          []string
	tokens         []Token
	tokenChunks    []TokenChunk
	ignoreList     []uint32
	debugID        string

	mu        sync.Mutex
	lineIndex [][]int32
}

// File returns the generated filename, if set.
func (m *SourceMap) File() (string, bool) {
	if m.file == nil {
		return "", false
	}
	return *m.file, true
}

// SetFile sets the generated filename.
func (m *SourceMap) SetFile(file string) {
	m.file = &file
	m.invalidate()
}

// SourceRoot returns the source root prefix, if set.
func (m *SourceMap) SourceRoot() (string, bool) {
	if m.sourceRoot == nil {
		return "", false
	}
	return *m.sourceRoot, true
}

// SetSourceRoot sets the source root prefix.
func (m *SourceMap) SetSourceRoot(root string) {
	m.sourceRoot = &root
	m.invalidate()
}

// DebugID returns the debug id in canonical UUID form, if set.
func (m *SourceMap) DebugID() (string, bool) {
	return m.debugID, m.debugID != ""
}

// SetDebugID sets the debug id. Canonical, braced, urn, and bare
// 32-hex-digit forms are accepted; the id is stored canonically.
func (m *SourceMap) SetDebugID(id string) error {
	u, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	m.debugID = u.String()
	m.invalidate()
	return nil
}

// IgnoreList returns the source ids marked as third-party via
// x_google_ignoreList, or nil.
func (m *SourceMap) IgnoreList() []uint32 { return m.ignoreList }

// SetIgnoreList replaces the x_google_ignoreList entries.
func (m *SourceMap) SetIgnoreList(ids []uint32) {
	m.ignoreList = ids
	m.invalidate()
}

// SourceCount returns the number of entries in the sources table,
// counting null entries.
func (m *SourceMap) SourceCount() int { return len(m.sources) }

// NameCount returns the number of entries in the names table.
func (m *SourceMap) NameCount() int { return len(m.names) }

// Len returns the number of tokens.
func (m *SourceMap) Len() int { return len(m.tokens) }

// Token returns the i-th token in generated-position order.
func (m *SourceMap) Token(i int) (Token, bool) {
	if i < 0 || i >= len(m.tokens) {
		return Token{}, false
	}
	return m.tokens[i], true
}

// Tokens returns the token table in generated-position order. The
// returned slice is shared with the map and must not be modified.
func (m *SourceMap) Tokens() []Token { return m.tokens }

// Source returns the source URL for id. The second result is false for
// out-of-range ids and for null sources entries.
func (m *SourceMap) Source(id uint32) (string, bool) {
	if int(id) >= len(m.sources) || m.sources[id] == nil {
		return "", false
	}
	return *m.sources[id], true
}

// SourceContent returns the embedded content of source id, if present.
func (m *SourceMap) SourceContent(id uint32) (string, bool) {
	if int(id) >= len(m.sourceContents) || m.sourceContents[id] == nil {
		return "", false
	}
	return *m.sourceContents[id], true
}

// SetSourceContent sets the embedded content for source id, extending
// the contents table with absent entries as needed.
func (m *SourceMap) SetSourceContent(id uint32, content string) {
	for int(id) >= len(m.sourceContents) {
		m.sourceContents = append(m.sourceContents, nil)
	}
	m.sourceContents[id] = &content
	m.invalidate()
}

// Name returns the symbol name for id.
func (m *SourceMap) Name(id uint32) (string, bool) {
	if int(id) >= len(m.names) {
		return "", false
	}
	return m.names[id], true
}

// Names returns the names table. The returned slice is shared with the
// map and must not be modified.
func (m *SourceMap) Names() []string { return m.names }

// View wraps t with accessors that resolve against this map.
func (m *SourceMap) View(t Token) SourceViewToken {
	return SourceViewToken{Token: t, sm: m}
}

// LookupToken returns the token with the greatest (DstLine, DstCol) not
// exceeding (line, col). When several tokens share that position the
// last one by insertion order wins. The second result is false when the
// line is past the last mapped line, when the query precedes every
// token on its line, or when the matched token is a pure segment.
func (m *SourceMap) LookupToken(line, col uint32) (Token, bool) {
	index := m.lookupIndex()
	if int(line) >= len(index) {
		return Token{}, false
	}
	row := index[line]
	i := sort.Search(len(row), func(i int) bool {
		return m.tokens[row[i]].DstCol > col
	})
	if i == 0 {
		return Token{}, false
	}
	t := m.tokens[row[i-1]]
	if !t.HasSource() {
		return Token{}, false
	}
	return t, true
}

// LookupSourceView is LookupToken with the result wrapped for source
// and name resolution.
func (m *SourceMap) LookupSourceView(line, col uint32) (SourceViewToken, bool) {
	t, ok := m.LookupToken(line, col)
	if !ok {
		return SourceViewToken{}, false
	}
	return m.View(t), true
}

// DataURL returns the map encoded as a base64 data URL.
func (m *SourceMap) DataURL() string {
	return "data:application/json;charset=utf-8;base64," +
		base64.StdEncoding.EncodeToString(m.Encode())
}

// lookupIndex returns the per-line token index, building it on first
// use under the lock. The index maps each generated line to the indices
// of its tokens, which are already in ascending column order.
func (m *SourceMap) lookupIndex() [][]int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lineIndex == nil && len(m.tokens) > 0 {
		last := m.tokens[len(m.tokens)-1].DstLine
		index := make([][]int32, last+1)
		for i, t := range m.tokens {
			index[t.DstLine] = append(index[t.DstLine], int32(i))
		}
		m.lineIndex = index
	}
	return m.lineIndex
}

func (m *SourceMap) invalidate() {
	m.mu.Lock()
	m.lineIndex = nil
	m.mu.Unlock()
}
