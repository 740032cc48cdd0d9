package changes

import "errors"

// ErrLifecycle is wrapped by the panic value of a change used out of order.
var ErrLifecycle = errors.New("changes: change lifecycle violation")
