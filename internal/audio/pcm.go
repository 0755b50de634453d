package audio

import (
	"encoding/base64"
	"encoding/binary"
	"time"
)

// SampleRate is the fixed rate for both capture and playback, matching
// the upstream API's pcm16 format. Mono, 16-bit signed, little endian.
const SampleRate = 24000

// EncodePCM16 converts float samples to 16-bit PCM bytes. Samples are
// clamped symmetrically to [-1, 1] before scaling; the negative and
// positive halves scale by 0x8000 and 0x7FFF respectively so that both
// endpoints map onto valid int16 values.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s < -1 {
			s = -1
		} else if s > 1 {
			s = 1
		}

		var v int16
		if s < 0 {
			v = int16(s * 0x8000)
		} else {
			v = int16(s * 0x7FFF)
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// DecodePCM16 converts 16-bit PCM bytes back to float samples in
// [-1, 1]. A trailing odd byte is ignored.
func DecodePCM16(data []byte) []float32 {
	n := len(data) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		if v < 0 {
			out[i] = float32(v) / 0x8000
		} else {
			out[i] = float32(v) / 0x7FFF
		}
	}
	return out
}

// EncodeBase64 encodes PCM bytes for transport inside a JSON envelope
func EncodeBase64(pcm []byte) string {
	return base64.StdEncoding.EncodeToString(pcm)
}

// DecodeBase64 decodes a transported audio payload back to PCM bytes
func DecodeBase64(payload string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(payload)
}

// Duration returns the playback time of a PCM16 byte buffer
func Duration(pcm []byte) time.Duration {
	samples := len(pcm) / 2
	return time.Duration(samples) * time.Second / SampleRate
}
