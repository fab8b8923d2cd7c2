package blocks

import (
	"errors"
	"fmt"
)

// ErrMalformedBlock is matched by every *MalformedBlockError via errors.Is.
var ErrMalformedBlock = errors.New("block must have a name property")

// MalformedBlockError reports a block tag without a usable name attribute.
type MalformedBlockError struct {
	// Offset is the byte offset of the tag in the parsed content.
	Offset int

	// Raw is the full tag text, including the {{block and }} delimiters.
	Raw string

	// TextOffset is the byte offset of Raw in Result.Text. It is only
	// meaningful for errors recorded by ParseLenient.
	TextOffset int
}

// Error implements the error interface.
func (e *MalformedBlockError) Error() string {
	return fmt.Sprintf("malformed block at offset %d: %v: %s", e.Offset, ErrMalformedBlock, e.Raw)
}

// Is reports whether target is ErrMalformedBlock.
func (e *MalformedBlockError) Is(target error) bool {
	return target == ErrMalformedBlock
}

// IsMalformed checks if an error was caused by a malformed block tag.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedBlock)
}
