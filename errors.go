package sourcemap

import (
	"errors"

	"github.com/srcweave/sourcemap/base64vlq"
)

// Decode failures. Every error returned by Parse matches exactly one of
// these with errors.Is; the decoder never returns a partial map.
var (
	// ErrBadJSON reports syntactically malformed input or a member of
	// the wrong JSON shape.
	ErrBadJSON = errors.New("sourcemap: malformed JSON")

	// ErrUnsupportedVersion reports a "version" member other than 3.
	ErrUnsupportedVersion = errors.New("sourcemap: only version 3 is supported")

	// ErrBadSegmentSize reports a mapping segment whose arity is not
	// 1, 4, or 5, or whose running line or column values go negative.
	ErrBadSegmentSize = errors.New("sourcemap: bad mapping segment")

	// ErrInvalidSourceReference reports a source id outside the
	// "sources" table.
	ErrInvalidSourceReference = errors.New("sourcemap: source reference out of range")

	// ErrInvalidNameReference reports a name id outside the "names"
	// table.
	ErrInvalidNameReference = errors.New("sourcemap: name reference out of range")

	// VLQ failures, re-exported from the codec package.
	ErrVlqInvalidChar = base64vlq.ErrInvalidChar
	ErrVlqTooLong     = base64vlq.ErrTooLong
	ErrVlqEmptyField  = base64vlq.ErrEmptyField
)
