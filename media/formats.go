package media

// SupportedOutputFormats lists the container format specifiers this
// module recognizes for output. Codec support within a
// given container remains the backend's responsibility; this module only
// validates that the encoder opens.
func SupportedOutputFormats() []string {
	return []string{
		"mp4", "mkv", "mov", "avi", "flv", "ts", "mxf", "3gp", "webm", "asf", "wmv", "rtp",
	}
}
