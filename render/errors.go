package render

import "errors"

// ErrWidget indicates a widget failed to render its block.
var ErrWidget = errors.New("widget render failed")
