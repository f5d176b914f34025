package mp3meta

import (
	"github.com/simonhull/mp3meta/internal/mpeg"
	"github.com/simonhull/mp3meta/internal/types"
)

// AudioInfo describes the first MPEG frame of the audio payload.
type AudioInfo = types.AudioInfo

func audioInfo(h mpeg.Header) AudioInfo {
	return AudioInfo{
		Version:    h.Version.String(),
		Layer:      h.Layer,
		Bitrate:    h.Bitrate,
		SampleRate: h.SampleRate,
		Channels:   h.Channels(),
		FrameSize:  h.FrameLength(),
	}
}
