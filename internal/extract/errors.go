package extract

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse means the page no longer has the layout the extractor expects,
// usually because upstream changed its markup.
var ErrMalformedResponse = errors.New("malformed response")

var (
	errMissingAnchor     = errors.New("anchor not found")
	errMissingTerminator = errors.New("terminator not found")
)

// MalformedResponseError names the field that could not be extracted and the anchor
// that was used to look for it.
type MalformedResponseError struct {
	Field  string
	Anchor string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: field %s (anchor %q): %s", ErrMalformedResponse.Error(), e.Field, e.Anchor, e.Err.Error())
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}
