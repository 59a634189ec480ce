package sourcemap

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/srcweave/sourcemap/base64vlq"
)

// jsonSourceMap is the wire shape of a Source Map v3 document. Only the
// documented extension members are recognized; anything else is
// dropped.
type jsonSourceMap struct {
	Version        *int      `json:"version"`
	File           *string   `json:"file"`
	SourceRoot     *string   `json:"sourceRoot"`
	Sources        []*string `json:"sources"`
	SourcesContent []*string `json:"sourcesContent"`
	Names          []string  `json:"names"`
	Mappings       *string   `json:"mappings"`
	DebugID        *string   `json:"debugId"`
	DebugIDAlt     *string   `json:"debug_id"`
	IgnoreList     []uint32  `json:"x_google_ignoreList"`
}

// Parse decodes a Source Map v3 JSON document. It fails on anything
// malformed and never returns a partial map.
func Parse(data []byte) (*SourceMap, error) {
	var raw jsonSourceMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	if raw.Version == nil {
		return nil, fmt.Errorf("%w: missing version", ErrBadJSON)
	}
	if *raw.Version != 3 {
		return nil, fmt.Errorf("%w (got %d)", ErrUnsupportedVersion, *raw.Version)
	}
	if raw.Mappings == nil {
		return nil, fmt.Errorf("%w: missing mappings", ErrBadJSON)
	}
	for _, id := range raw.IgnoreList {
		if int(id) >= len(raw.Sources) {
			return nil, fmt.Errorf("%w: x_google_ignoreList[%d]", ErrInvalidSourceReference, id)
		}
	}

	tokens, err := decodeMappings(*raw.Mappings, len(raw.Sources), len(raw.Names))
	if err != nil {
		return nil, err
	}

	m := &SourceMap{
		file:           raw.File,
		sourceRoot:     raw.SourceRoot,
		sources:        raw.Sources,
		sourceContents: raw.SourcesContent,
		names:          raw.Names,
		tokens:         tokens,
		ignoreList:     raw.IgnoreList,
	}

	debugID := raw.DebugID
	if debugID == nil {
		debugID = raw.DebugIDAlt
	}
	if debugID != nil {
		u, err := uuid.Parse(*debugID)
		if err != nil {
			return nil, fmt.Errorf("%w: debugId: %v", ErrBadJSON, err)
		}
		m.debugID = u.String()
	}
	return m, nil
}

// ParseString is Parse for a string input.
func ParseString(data string) (*SourceMap, error) {
	return Parse([]byte(data))
}

// decodeMappings materializes the VLQ mapping string into tokens.
//
// Five running accumulators are updated by summing deltas. dstCol
// resets at every ';'; sourceID, srcLine, srcCol, and nameID persist
// across lines. Empty segments produce no token.
func decodeMappings(mappings string, sourcesLen, namesLen int) ([]Token, error) {
	// One token per ~6 mapping bytes is a good initial estimate.
	tokens := make([]Token, 0, len(mappings)/6+1)

	var dstLine, dstCol, sourceID, srcLine, srcCol, nameID uint32
	var vals [5]int64

	for i := 0; i < len(mappings); {
		switch mappings[i] {
		case ',':
			i++
		case ';':
			dstLine++
			dstCol = 0
			i++
		default:
			n, consumed, err := base64vlq.DecodeSegment(mappings[i:], &vals)
			if err != nil {
				return nil, err
			}
			if n != 1 && n != 4 && n != 5 {
				return nil, fmt.Errorf("%w: %d fields", ErrBadSegmentSize, n)
			}

			col := int64(dstCol) + vals[0]
			if col < 0 {
				return nil, fmt.Errorf("%w: negative column", ErrBadSegmentSize)
			}
			dstCol = uint32(col)

			t := Token{DstLine: dstLine, DstCol: dstCol, SourceID: NoID, NameID: NoID}
			if n > 1 {
				src := int64(sourceID) + vals[1]
				if src < 0 || src >= int64(sourcesLen) {
					return nil, fmt.Errorf("%w: %d", ErrInvalidSourceReference, src)
				}
				sourceID = uint32(src)

				line := int64(srcLine) + vals[2]
				if line < 0 {
					return nil, fmt.Errorf("%w: negative line", ErrBadSegmentSize)
				}
				srcLine = uint32(line)

				col := int64(srcCol) + vals[3]
				if col < 0 {
					return nil, fmt.Errorf("%w: negative column", ErrBadSegmentSize)
				}
				srcCol = uint32(col)

				t.SrcLine = srcLine
				t.SrcCol = srcCol
				t.SourceID = sourceID

				if n == 5 {
					name := int64(nameID) + vals[4]
					if name < 0 || name >= int64(namesLen) {
						return nil, fmt.Errorf("%w: %d", ErrInvalidNameReference, name)
					}
					nameID = uint32(name)
					t.NameID = nameID
				}
			}
			tokens = append(tokens, t)
			i += consumed
		}
	}
	return tokens, nil
}
