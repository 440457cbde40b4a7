package wardrobe

import "errors"

var (
	ErrInvalidName  = errors.New("invalid outfit name")
	ErrNotFound     = errors.New("outfit not found")
	ErrNameConflict = errors.New("outfit name already taken")
)
