package sourcemap

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// A Visualizer renders the alignment between a map's tokens and the
// generated code, for debugging and test review.
type Visualizer struct {
	code string
	sm   *SourceMap
}

// NewVisualizer returns a visualizer for the generated code and its
// map.
func NewVisualizer(code string, sm *SourceMap) *Visualizer {
	return &Visualizer{code: code, sm: sm}
}

// URL returns a link that opens the code and map in the evanw
// source-map-visualization viewer.
func (v *Visualizer) URL() string {
	encoded := v.sm.Encode()
	payload := fmt.Sprintf("%d\x00%s%d\x00%s", len(v.code), v.code, len(encoded), encoded)
	return "https://evanw.github.io/source-map-visualization/#" +
		base64.StdEncoding.EncodeToString([]byte(payload))
}

// Text renders one line per token that resolves to a source, showing the
// original slice the token covers and the generated slice it maps to;
// pure segments and tokens of null sources get no line. A "- <source>"
// header line precedes each run of tokens from one source. Columns are UTF-16
// code units, so the source contents are re-counted in UTF-16 here.
func (v *Visualizer) Text() string {
	if len(v.sm.sourceContents) == 0 {
		return "[no source contents]\n"
	}

	sourceLines := make([][][]uint16, len(v.sm.sources))
	for i, content := range v.sm.sourceContents {
		if content != nil && i < len(sourceLines) {
			sourceLines[i] = utf16Lines(*content)
		}
	}
	outputLines := utf16Lines(v.code)

	var sb strings.Builder
	tokens := v.sm.tokens
	lastSource := NoID
	for i, t := range tokens {
		if !t.HasSource() {
			continue
		}
		source, ok := v.sm.Source(t.SourceID)
		if !ok {
			continue
		}
		lines := sourceLines[t.SourceID]

		if t.SourceID != lastSource {
			sb.WriteString("- ")
			sb.WriteString(source)
			sb.WriteByte('\n')
			lastSource = t.SourceID
		}

		dstInvalid := int(t.DstLine) >= len(outputLines) ||
			int(t.DstCol) >= len(outputLines[t.DstLine])
		srcInvalid := int(t.SrcLine) >= len(lines) ||
			int(t.SrcCol) >= len(lines[t.SrcLine])
		if dstInvalid || srcInvalid {
			fmt.Fprintf(&sb, "(%d:%d)%s --> (%d:%d)%s\n",
				t.SrcLine, t.SrcCol, invalidMark(srcInvalid),
				t.DstLine, t.DstCol, invalidMark(dstInvalid))
			continue
		}

		dstEnd := uint32(len(outputLines[t.DstLine]))
		if i+1 < len(tokens) && tokens[i+1].DstLine == t.DstLine {
			dstEnd = tokens[i+1].DstCol
		}

		srcEnd := uint32(len(lines[t.SrcLine]))
		for _, t2 := range tokens[i+1:] {
			if t2.SourceID != t.SourceID || t2.SrcLine != t.SrcLine {
				break
			}
			// Skip duplicate or backward positions.
			if t2.SrcCol <= t.SrcCol {
				continue
			}
			srcEnd = t2.SrcCol
			break
		}

		fmt.Fprintf(&sb, "(%d:%d) %q --> (%d:%d) %q\n",
			t.SrcLine, t.SrcCol, sliceUTF16(lines[t.SrcLine], t.SrcCol, srcEnd),
			t.DstLine, t.DstCol, sliceUTF16(outputLines[t.DstLine], t.DstCol, dstEnd))
	}
	return sb.String()
}

func invalidMark(invalid bool) string {
	if invalid {
		return " [invalid]"
	}
	return ""
}

// utf16Lines splits content into lines of UTF-16 code units. Line
// terminators (\n, \r, \r\n, U+2028, U+2029) stay attached to the line
// they end.
func utf16Lines(content string) [][]uint16 {
	var lines [][]uint16
	start := 0
	for i, r := range content {
		switch r {
		case '\r':
			if i+1 < len(content) && content[i+1] == '\n' {
				continue
			}
		case '\n', '\u2028', '\u2029':
		default:
			continue
		}
		end := i + utf8.RuneLen(r)
		lines = append(lines, utf16.Encode([]rune(content[start:end])))
		start = end
	}
	lines = append(lines, utf16.Encode([]rune(content[start:])))
	return lines
}

// sliceUTF16 returns the [start, end) slice of a UTF-16 line as a
// string, clamped to the line and stripped of carriage returns.
func sliceUTF16(line []uint16, start, end uint32) string {
	lo, hi := int(start), int(end)
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo > len(line) {
		lo = len(line)
	}
	if hi > len(line) {
		hi = len(line)
	}
	s := string(utf16.Decode(line[lo:hi]))
	return strings.ReplaceAll(s, "\r", "")
}
