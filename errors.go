package balsa

import "github.com/balsa-rf/balsa/internal/balsaerr"

// Kind discriminates the error categories defined in the Balsa error
// handling design: InputError, FormatError, ResourceError and Internal.
type Kind = balsaerr.Kind

const (
	KindInput    = balsaerr.KindInput
	KindFormat   = balsaerr.KindFormat
	KindResource = balsaerr.KindResource
	KindInternal = balsaerr.KindInternal
)

// Error is Balsa's structured error type. It carries a Kind so callers
// can discriminate the error category with errors.As, a human-readable
// Context, and an optional underlying Cause reachable via errors.Unwrap.
type Error = balsaerr.Error
