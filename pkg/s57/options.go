package s57

// ParseOptions configures parsing behavior.
type ParseOptions struct {
	// SkipUnknownFeatures drops features whose geometry cannot be built
	// instead of failing the whole cell.
	SkipUnknownFeatures bool
	ValidateGeometry    bool
	ObjectClassFilter   []string

	// ApplyUpdates controls whether to automatically discover and apply
	// update files (.001, .002, etc.) when parsing a base cell (.000).
	//
	// When true, the parser looks for sequential update files in the same
	// directory as the base file and applies them in order.
	ApplyUpdates bool

	// SplitMultipoint turns every SOUNDG multipoint into one point feature
	// per sounding.
	SplitMultipoint bool

	// AddSoundingDepth adds a DEPTH attribute holding the sounding's Z value
	// to each split SOUNDG point. It has no effect unless SplitMultipoint is set.
	AddSoundingDepth bool
}

// DefaultParseOptions returns default options.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		SkipUnknownFeatures: true,
		ValidateGeometry:    true,
		ObjectClassFilter:   nil,
		ApplyUpdates:        true,
	}
}
