// Package mpeg decodes MPEG audio frame headers and locates the first frame of
// an audio payload.
//
// Nothing here decodes audio. The only goal is an offset that can be trusted
// not to point into tag data.
package mpeg

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Version is the MPEG audio version from bits 19-20 of the header.
type Version byte

const (
	Version25 Version = 0 // MPEG-2.5
	Version2  Version = 2 // MPEG-2
	Version1  Version = 3 // MPEG-1
)

func (v Version) String() string {
	switch v {
	case Version1:
		return "1"
	case Version2:
		return "2"
	case Version25:
		return "2.5"
	default:
		return "reserved"
	}
}

// ChannelMode is the channel mode from bits 6-7 of the header.
type ChannelMode byte

const (
	Stereo ChannelMode = iota
	JointStereo
	DualChannel
	Mono
)

// HeaderSize is the length of an MPEG audio frame header.
const HeaderSize = 4

var (
	errSync          = errors.New("missing frame sync")
	errVersion       = errors.New("reserved MPEG version")
	errLayer         = errors.New("reserved layer")
	errBitrate       = errors.New("free or invalid bitrate")
	errSampleRate    = errors.New("reserved sample rate")
	errShortHeader   = errors.New("short frame header")
	errFrameTooShort = errors.New("frame shorter than its header")
)

// Bitrates in kbps, indexed by [row][bitrate index].
var bitrateTable = [5][16]int{
	{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448, 0}, // V1 L1
	{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, 0},    // V1 L2
	{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0},     // V1 L3
	{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256, 0},    // V2/2.5 L1
	{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},         // V2/2.5 L2, L3
}

// Sample rates in Hz, indexed by [version][sample rate index].
var sampleRateTable = map[Version][3]int{
	Version1:  {44100, 48000, 32000},
	Version2:  {22050, 24000, 16000},
	Version25: {11025, 12000, 8000},
}

// Header is a decoded MPEG audio frame header.
type Header struct {
	Version     Version
	Layer       int // 1, 2 or 3
	Protected   bool
	Bitrate     int // bits per second
	SampleRate  int // Hz
	Padding     bool
	ChannelMode ChannelMode
}

// ParseHeader decodes the four header bytes at the start of b.
//
// Headers with reserved fields, a free-format bitrate or the "bad" bitrate
// index are rejected, since no frame length can be derived from them.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, errShortHeader
	}
	return decodeHeader(binary.BigEndian.Uint32(b))
}

func decodeHeader(raw uint32) (Header, error) {
	// Frame sync: 11 bits set
	if raw&0xFFE00000 != 0xFFE00000 {
		return Header{}, errSync
	}

	version := Version((raw >> 19) & 0x3)
	if version == 1 {
		return Header{}, errVersion
	}

	layerBits := (raw >> 17) & 0x3
	if layerBits == 0 {
		return Header{}, errLayer
	}
	layer := int(4 - layerBits)

	bitrateIdx := (raw >> 12) & 0xF
	bitrate := bitrateTable[bitrateRow(version, layer)][bitrateIdx]
	if bitrate == 0 {
		return Header{}, errBitrate
	}

	sampleRateIdx := (raw >> 10) & 0x3
	if sampleRateIdx == 3 {
		return Header{}, errSampleRate
	}

	h := Header{
		Version:     version,
		Layer:       layer,
		Protected:   (raw>>16)&0x1 == 0,
		Bitrate:     bitrate * 1000,
		SampleRate:  sampleRateTable[version][sampleRateIdx],
		Padding:     (raw>>9)&0x1 == 1,
		ChannelMode: ChannelMode((raw >> 6) & 0x3),
	}
	if h.FrameLength() < HeaderSize {
		return Header{}, errFrameTooShort
	}
	return h, nil
}

func bitrateRow(v Version, layer int) int {
	if v == Version1 {
		return layer - 1
	}
	if layer == 1 {
		return 3
	}
	return 4
}

// FrameLength returns the length of the frame in bytes, header included.
func (h Header) FrameLength() int {
	padding := 0
	if h.Padding {
		padding = 1
	}

	switch {
	case h.Layer == 1:
		return (12*h.Bitrate/h.SampleRate + padding) * 4
	case h.Layer == 3 && h.Version != Version1:
		return 72*h.Bitrate/h.SampleRate + padding
	default:
		return 144*h.Bitrate/h.SampleRate + padding
	}
}

// Channels returns 1 for mono and 2 otherwise.
func (h Header) Channels() int {
	if h.ChannelMode == Mono {
		return 1
	}
	return 2
}

// SamplesPerFrame returns the number of PCM samples each frame decodes to.
func (h Header) SamplesPerFrame() int {
	switch {
	case h.Layer == 1:
		return 384
	case h.Layer == 3 && h.Version != Version1:
		return 576
	default:
		return 1152
	}
}

// consistentWith reports whether two headers can belong to the same stream.
// Bitrate and padding vary between frames of a VBR stream; the rest must not.
func (h Header) consistentWith(o Header) bool {
	return h.Version == o.Version && h.Layer == o.Layer && h.SampleRate == o.SampleRate
}

func (h Header) String() string {
	return fmt.Sprintf("MPEG-%s layer %d %dHz %dbps", h.Version, h.Layer, h.SampleRate, h.Bitrate)
}
