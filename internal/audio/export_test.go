package audio

// ParseDuration exports parseDuration for testing.
var ParseDuration = parseDuration

// FormatFFmpegTime exports formatFFmpegTime for testing.
var FormatFFmpegTime = formatFFmpegTime
