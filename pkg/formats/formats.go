// Package formats provides decoders for color-encoded elevation rasters.
package formats

import "errors"

// ErrDecode is returned when an input buffer does not match its declared dimensions.
var ErrDecode = errors.New("decode error")
