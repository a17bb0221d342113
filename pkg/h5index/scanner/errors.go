package scanner

import (
	"errors"

	"github.com/jamesainslie/h5index/pkg/h5index/manifest"
)

// ErrInvalidArgument is returned for unusable scan options, most notably a
// missing primary key.
var ErrInvalidArgument = errors.New("invalid argument")

// CacheParseError reports an existing manifest that could not be decoded.
// The scanner never falls back to a rescan in that case.
type CacheParseError = manifest.ParseError
