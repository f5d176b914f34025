package types

import (
	"fmt"
	"strings"
)

// AudioInfo describes the first MPEG frame of the audio payload.
//
// It is informational only; nothing in this module decodes audio.
type AudioInfo struct {
	Version    string // "1", "2" or "2.5"
	Layer      int    // 1, 2 or 3
	Bitrate    int    // bits per second
	SampleRate int    // Hz
	Channels   int
	FrameSize  int // bytes, including header
}

// String returns a human-readable representation of the audio info.
// Example output: "MPEG-1 Layer III 44.1kHz stereo 128kbps".
func (a AudioInfo) String() string {
	if a.Layer == 0 {
		return ""
	}

	parts := []string{
		fmt.Sprintf("MPEG-%s Layer %s", a.Version, layerNumeral(a.Layer)),
		fmt.Sprintf("%.1fkHz", float64(a.SampleRate)/1000),
		channelDescription(a.Channels),
		fmt.Sprintf("%dkbps", a.Bitrate/1000),
	}
	return strings.Join(parts, " ")
}

func layerNumeral(layer int) string {
	switch layer {
	case 1:
		return "I"
	case 2:
		return "II"
	case 3:
		return "III"
	default:
		return fmt.Sprint(layer)
	}
}

// channelDescription returns a human-readable channel description.
func channelDescription(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return fmt.Sprintf("%dch", channels)
	}
}
