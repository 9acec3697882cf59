package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrInvalidWAV = errors.New("speech: invalid WAV data")

const formatPCM = 1

// DecodeWAV extracts PCM samples and format metadata from a RIFF/WAVE file.
func DecodeWAV(data []byte) (Audio, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Audio{}, fmt.Errorf("%w: missing RIFF/WAVE header", ErrInvalidWAV)
	}

	var (
		a       Audio
		haveFmt bool
	)
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if size < 0 || body+size > len(data) {
			// recorders in the browser often leave the data size at 0 or max
			if id == "data" {
				size = len(data) - body
			} else {
				return Audio{}, fmt.Errorf("%w: truncated %q chunk", ErrInvalidWAV, id)
			}
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return Audio{}, fmt.Errorf("%w: short fmt chunk", ErrInvalidWAV)
			}
			f := data[body : body+size]
			format := binary.LittleEndian.Uint16(f[0:2])
			if format != formatPCM && format != 0xFFFE {
				return Audio{}, fmt.Errorf("%w: unsupported format %d", ErrInvalidWAV, format)
			}
			a.Channels = int(binary.LittleEndian.Uint16(f[2:4]))
			a.SampleRate = int(binary.LittleEndian.Uint32(f[4:8]))
			a.BitDepth = int(binary.LittleEndian.Uint16(f[14:16]))
			haveFmt = true
		case "data":
			if !haveFmt {
				return Audio{}, fmt.Errorf("%w: data before fmt chunk", ErrInvalidWAV)
			}
			a.PCM = data[body : body+size]
			if a.Channels == 0 || a.SampleRate == 0 || a.BitDepth == 0 {
				return Audio{}, fmt.Errorf("%w: zero channels, rate or depth", ErrInvalidWAV)
			}
			return a, nil
		}
		off = body + size + size%2
	}
	return Audio{}, fmt.Errorf("%w: no data chunk", ErrInvalidWAV)
}

// EncodeWAV wraps PCM in a canonical 44-byte WAVE header.
func EncodeWAV(a Audio) []byte {
	blockAlign := a.Channels * a.BitDepth / 8
	var buf bytes.Buffer
	buf.Grow(44 + len(a.PCM))
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(a.PCM)))
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(formatPCM))
	binary.Write(&buf, binary.LittleEndian, uint16(a.Channels))
	binary.Write(&buf, binary.LittleEndian, uint32(a.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(a.SampleRate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(a.BitDepth))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(a.PCM)))
	buf.Write(a.PCM)
	return buf.Bytes()
}
