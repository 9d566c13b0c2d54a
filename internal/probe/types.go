package probe

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename   string
	FormatName string
	Duration   float64 // Seconds.
	Size       int64   // Bytes.
	BitRate    int64   // Bits per second.
	Tags       map[string]string
}

// AudioStream holds the parsed properties of a single audio stream.
type AudioStream struct {
	Index         int
	Codec         string
	Channels      int
	ChannelLayout string
	SampleRate    int
	BitRate       int64
	Language      string
}

// Result is the outcome of probing one file.
type Result struct {
	Format       FormatInfo
	AudioStreams []AudioStream
	PrimaryAudio *AudioStream // First audio stream, nil when the file has none.
}

// ShortFormat returns the first name from ffprobe's comma-separated
// format_name list (e.g. "mov,mp4,m4a,3gp,3g2,mj2" → "mov").
func (r *Result) ShortFormat() string {
	name := r.Format.FormatName
	for i := 0; i < len(name); i++ {
		if name[i] == ',' {
			return name[:i]
		}
	}
	return name
}
