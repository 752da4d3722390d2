package ffmpeg

// ParseMajorVersion exports parseMajorVersion for testing.
var ParseMajorVersion = parseMajorVersion
