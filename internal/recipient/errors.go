package recipient

import "errors"

// ErrUnknownFolder is returned when a run names a folder key that is not in
// the configured folder table.
var ErrUnknownFolder = errors.New("recipient: unknown folder key")
