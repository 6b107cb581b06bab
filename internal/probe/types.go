package probe

// Result is the parsed output of a single ffprobe call, reduced to what the
// command planner needs. A zero-value Result is a valid "nothing could be
// determined" answer; the planner falls back to fixed defaults in that case.
type Result struct {
	BitRate    int64   // Video bitrate in bits/sec; 0 = undeterminable.
	Duration   float64 // Container duration in seconds; 0 = unknown.
	VideoCodec string  // Primary video stream codec name ("" = no video stream found).
	Width      int
	Height     int
}

// HasBitrate reports whether a usable source bitrate was determined.
func (r *Result) HasBitrate() bool { return r.BitRate > 0 }
