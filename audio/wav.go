package audio

import (
	"encoding/binary"
	"math"
	"os"

	"canto/values"
)

// WriteWAV writes buf as a 32-bit float PCM WAVE file (format tag 3), the
// interchange format fluidsynth and most audio tools read directly.
func WriteWAV(path string, buf values.AudioBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dataSize := len(buf.Samples) * 4
	byteRate := buf.SampleRate * buf.Channels * 4
	blockAlign := buf.Channels * 4

	header := make([]byte, 0, 44)
	header = append(header, []byte("RIFF")...)
	header = appendUint32(header, uint32(36+dataSize))
	header = append(header, []byte("WAVE")...)
	header = append(header, []byte("fmt ")...)
	header = appendUint32(header, 16)
	header = appendUint16(header, 3) // IEEE float
	header = appendUint16(header, uint16(buf.Channels))
	header = appendUint32(header, uint32(buf.SampleRate))
	header = appendUint32(header, uint32(byteRate))
	header = appendUint16(header, uint16(blockAlign))
	header = appendUint16(header, 32)
	header = append(header, []byte("data")...)
	header = appendUint32(header, uint32(dataSize))

	if _, err := f.Write(header); err != nil {
		return err
	}
	payload := make([]byte, dataSize)
	for i, s := range buf.Samples {
		binary.LittleEndian.PutUint32(payload[i*4:], math.Float32bits(s))
	}
	_, err = f.Write(payload)
	return err
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint16(b []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}
