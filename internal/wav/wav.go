// Package wav provides minimal WAV container handling for 16-bit mono PCM:
// enough to emit placeholder audio and to concatenate engine output without
// pulling in a playback stack.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

const headerSize = 44

var errNotWAV = errors.New("not a RIFF/WAVE stream")

// Encode wraps raw 16-bit mono PCM samples in a WAV container.
func Encode(pcm []byte, sampleRate int) []byte {
	var buf bytes.Buffer
	dataLen := uint32(len(pcm))
	byteRate := uint32(sampleRate * 2) // mono, 2 bytes per sample

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16)) // PCM chunk size
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // PCM format
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, uint16(2))  // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16)) // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	buf.Write(pcm)

	return buf.Bytes()
}

// Silence produces a WAV file of silent 16-bit mono PCM for the given
// duration. Used by the mock engine for placeholder output.
func Silence(d time.Duration, sampleRate int) []byte {
	samples := int(d.Seconds() * float64(sampleRate))
	if samples < 0 {
		samples = 0
	}
	return Encode(make([]byte, samples*2), sampleRate)
}

// Data extracts the PCM payload and sample rate from a WAV stream.
func Data(b []byte) (pcm []byte, sampleRate int, err error) {
	if len(b) < headerSize || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return nil, 0, errNotWAV
	}
	sampleRate = int(binary.LittleEndian.Uint32(b[24:28]))

	// Walk chunks until "data"; engines may emit extra metadata chunks.
	off := 12
	for off+8 <= len(b) {
		id := string(b[off : off+4])
		size := int(binary.LittleEndian.Uint32(b[off+4 : off+8]))
		body := off + 8
		if id == "data" {
			end := body + size
			if end > len(b) {
				end = len(b)
			}
			return b[body:end], sampleRate, nil
		}
		off = body + size
	}
	return nil, 0, fmt.Errorf("wav: no data chunk in %d byte stream", len(b))
}

// Concat joins multiple WAV streams into one. All inputs must share the
// sample rate of the first non-empty stream; empty inputs are skipped.
func Concat(streams [][]byte) ([]byte, error) {
	var pcm []byte
	rate := 0
	for _, s := range streams {
		if len(s) == 0 {
			continue
		}
		data, sr, err := Data(s)
		if err != nil {
			return nil, err
		}
		if rate == 0 {
			rate = sr
		} else if sr != rate {
			return nil, fmt.Errorf("wav: sample rate mismatch: %d vs %d", sr, rate)
		}
		pcm = append(pcm, data...)
	}
	if rate == 0 {
		return nil, nil
	}
	return Encode(pcm, rate), nil
}

// Duration reports the play time of a WAV stream, or zero if it cannot be
// parsed.
func Duration(b []byte) time.Duration {
	pcm, rate, err := Data(b)
	if err != nil || rate == 0 {
		return 0
	}
	seconds := float64(len(pcm)) / 2 / float64(rate)
	return time.Duration(seconds * float64(time.Second))
}
