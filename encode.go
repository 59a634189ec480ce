package sourcemap

import (
	"io"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/srcweave/sourcemap/base64vlq"
)

// Total token count below which the parallel mappings path is not worth
// the goroutine setup.
const parallelEncodeMinTokens = 4096

// Encode serializes the map to canonical Source Map v3 JSON. Member
// order is stable: version, file, sourceRoot, sources, sourcesContent,
// x_google_ignoreList, names, mappings, debugId. Encoding a valid map
// cannot fail.
func (m *SourceMap) Encode() []byte {
	buf := make([]byte, 0, m.encodedSizeHint())

	buf = append(buf, `{"version":3`...)
	if m.file != nil {
		buf = append(buf, `,"file":`...)
		buf = appendJSONString(buf, *m.file)
	}
	if m.sourceRoot != nil {
		buf = append(buf, `,"sourceRoot":`...)
		buf = appendJSONString(buf, *m.sourceRoot)
	}

	buf = append(buf, `,"sources":[`...)
	for i, src := range m.sources {
		if i > 0 {
			buf = append(buf, ',')
		}
		if src == nil {
			buf = append(buf, "null"...)
		} else {
			buf = appendJSONString(buf, *src)
		}
	}
	buf = append(buf, ']')

	if m.emitSourcesContent() {
		buf = append(buf, `,"sourcesContent":[`...)
		for i, content := range m.sourceContents {
			if i > 0 {
				buf = append(buf, ',')
			}
			if content == nil {
				buf = append(buf, "null"...)
			} else {
				buf = appendJSONString(buf, *content)
			}
		}
		buf = append(buf, ']')
	}

	if m.ignoreList != nil {
		buf = append(buf, `,"x_google_ignoreList":[`...)
		for i, id := range m.ignoreList {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = strconv.AppendUint(buf, uint64(id), 10)
		}
		buf = append(buf, ']')
	}

	buf = append(buf, `,"names":[`...)
	for i, name := range m.names {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendJSONString(buf, name)
	}
	buf = append(buf, ']')

	buf = append(buf, `,"mappings":"`...)
	buf = m.appendMappings(buf)
	buf = append(buf, '"')

	if m.debugID != "" {
		buf = append(buf, `,"debugId":"`...)
		buf = append(buf, m.debugID...)
		buf = append(buf, '"')
	}

	buf = append(buf, '}')
	return buf
}

// String returns the canonical JSON encoding.
func (m *SourceMap) String() string { return string(m.Encode()) }

// WriteTo writes the canonical JSON encoding to w.
func (m *SourceMap) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(m.Encode())
	return int64(n), err
}

// Mappings returns just the VLQ mappings string.
func (m *SourceMap) Mappings() string {
	return string(m.appendMappings(nil))
}

func (m *SourceMap) emitSourcesContent() bool {
	for _, content := range m.sourceContents {
		if content != nil {
			return true
		}
	}
	return false
}

func (m *SourceMap) encodedSizeHint() int {
	n := 64
	if m.file != nil {
		n += len(*m.file) + 12
	}
	if m.sourceRoot != nil {
		n += len(*m.sourceRoot) + 16
	}
	for _, src := range m.sources {
		n += 6
		if src != nil {
			n += len(*src)
		}
	}
	for _, content := range m.sourceContents {
		n += 6
		if content != nil {
			n += len(*content)
		}
	}
	for _, name := range m.names {
		n += len(name) + 3
	}
	n += 4 * len(m.ignoreList)
	// Mappings average out well under 10 bytes per token, plus one
	// semicolon per generated line.
	n += 10 * len(m.tokens)
	if len(m.tokens) > 0 {
		n += int(m.tokens[len(m.tokens)-1].DstLine)
	}
	return n
}

// appendMappings serializes the token table as the VLQ mappings string.
// When token chunks are present each chunk is encoded against its own
// recorded entry state, so the chunks are independent; with enough
// tokens they are encoded concurrently. The output is byte-identical
// either way.
func (m *SourceMap) appendMappings(dst []byte) []byte {
	chunks := m.tokenChunks
	if len(chunks) == 0 {
		whole := TokenChunk{Start: 0, End: uint32(len(m.tokens))}
		return appendMappingChunk(dst, m.tokens, whole)
	}
	if len(chunks) > 1 && len(m.tokens) >= parallelEncodeMinTokens {
		return m.appendMappingsParallel(dst, chunks)
	}
	for _, c := range chunks {
		dst = appendMappingChunk(dst, m.tokens, c)
	}
	return dst
}

func (m *SourceMap) appendMappingsParallel(dst []byte, chunks []TokenChunk) []byte {
	bufs := make([][]byte, len(chunks))
	var g errgroup.Group
	for i, c := range chunks {
		i, c := i, c
		g.Go(func() error {
			bufs[i] = appendMappingChunk(nil, m.tokens, c)
			return nil
		})
	}
	// The workers cannot fail; Wait only joins them.
	_ = g.Wait()
	for _, b := range bufs {
		dst = append(dst, b...)
	}
	return dst
}

// appendMappingChunk encodes tokens[c.Start:c.End] against the entry
// state recorded in c. A chunk that begins on the same generated line
// the previous chunk ended on emits a comma and continues from the
// carried PrevDstCol; a chunk that begins on a later line emits the
// line's semicolons and starts the column delta from zero.
func appendMappingChunk(dst []byte, tokens []Token, c TokenChunk) []byte {
	prevDstLine := c.PrevDstLine
	prevDstCol := c.PrevDstCol
	prevSrcLine := c.PrevSrcLine
	prevSrcCol := c.PrevSrcCol
	prevNameID := c.PrevNameID
	prevSourceID := c.PrevSourceID

	for i := int(c.Start); i < int(c.End); i++ {
		t := tokens[i]
		if t.DstLine > prevDstLine {
			for n := t.DstLine - prevDstLine; n > 0; n-- {
				dst = append(dst, ';')
			}
			prevDstLine = t.DstLine
			prevDstCol = 0
		} else if i > int(c.Start) || c.Start > 0 {
			dst = append(dst, ',')
		}

		dst = base64vlq.Append(dst, int64(t.DstCol)-int64(prevDstCol))
		prevDstCol = t.DstCol

		if t.SourceID != NoID {
			dst = base64vlq.Append(dst, int64(t.SourceID)-int64(prevSourceID))
			prevSourceID = t.SourceID
			dst = base64vlq.Append(dst, int64(t.SrcLine)-int64(prevSrcLine))
			prevSrcLine = t.SrcLine
			dst = base64vlq.Append(dst, int64(t.SrcCol)-int64(prevSrcCol))
			prevSrcCol = t.SrcCol
			if t.NameID != NoID {
				dst = base64vlq.Append(dst, int64(t.NameID)-int64(prevNameID))
				prevNameID = t.NameID
			}
		}
	}
	return dst
}

const hexDigits = "0123456789abcdef"

// appendJSONString appends s as a JSON string literal. It escapes the
// quote, backslash, and control characters, copying everything between
// escape sites in bulk; printable ASCII and multibyte UTF-8 pass
// through verbatim.
func appendJSONString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		dst = append(dst, s[start:i]...)
		switch c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
		}
		start = i + 1
	}
	dst = append(dst, s[start:]...)
	dst = append(dst, '"')
	return dst
}
