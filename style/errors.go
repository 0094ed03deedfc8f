package style

import "errors"

// ErrParse is wrapped by any malformed style value or shorthand syntax.
var ErrParse = errors.New("style: parse error")

// ErrUnknownStyleSet is returned when a node references a named style set
// that was never registered on the Stylesheet.
var ErrUnknownStyleSet = errors.New("style: unknown style set")
