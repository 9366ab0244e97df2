// Package wav decodes a reference clip from a WAV file into a normalized
// mono float32 PCM buffer at the pipeline's fixed 16 kHz sample rate.
//
// The primary path is a from-scratch RIFF chunk scanner (no allocation beyond
// the data chunk itself, tolerant of extra chunks such as LIST/INFO). When
// that scanner rejects a file — WAVE_FORMAT_EXTENSIBLE headers, float PCM, or
// bit depths other than 16 — decoding falls back to github.com/go-audio/wav,
// which understands those layouts.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

type wavFormat struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	BitsPerSample uint16
}

type chunkScan struct {
	format     wavFormat
	data       []byte
	fmtFound   bool
	dataFound  bool
}

func readRIFFHeader(f *os.File) error {
	var riff, wave [4]byte
	var fileSize uint32
	if err := binary.Read(f, binary.LittleEndian, &riff); err != nil {
		return fmt.Errorf("reading RIFF header: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &fileSize); err != nil {
		return fmt.Errorf("reading RIFF size: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &wave); err != nil {
		return fmt.Errorf("reading WAVE id: %w", err)
	}
	if string(riff[:]) != "RIFF" || string(wave[:]) != "WAVE" {
		return errors.New("not a WAV/RIFF file")
	}
	return nil
}

func readFmtChunk(f *os.File, chunkSize uint32) (*wavFormat, error) {
	var fmtHeader wavFormat
	var byteRate uint32
	var blockAlign uint16
	if err := binary.Read(f, binary.LittleEndian, &fmtHeader.AudioFormat); err != nil {
		return nil, fmt.Errorf("reading fmt audioFormat: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &fmtHeader.NumChannels); err != nil {
		return nil, fmt.Errorf("reading fmt numChannels: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &fmtHeader.SampleRate); err != nil {
		return nil, fmt.Errorf("reading fmt sampleRate: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &byteRate); err != nil {
		return nil, fmt.Errorf("reading fmt byteRate: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &blockAlign); err != nil {
		return nil, fmt.Errorf("reading fmt blockAlign: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &fmtHeader.BitsPerSample); err != nil {
		return nil, fmt.Errorf("reading fmt bitsPerSample: %w", err)
	}
	if remaining := int(chunkSize) - 16; remaining > 0 {
		if _, err := f.Seek(int64(remaining), io.SeekCurrent); err != nil {
			return nil, fmt.Errorf("seeking past fmt extras: %w", err)
		}
	}
	return &fmtHeader, nil
}

func scanWavChunks(f *os.File) (*chunkScan, error) {
	var scan chunkScan
	for {
		var chunkID [4]byte
		var chunkSize uint32
		if err := binary.Read(f, binary.LittleEndian, &chunkID); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("reading chunk header: %w", err)
		}
		if err := binary.Read(f, binary.LittleEndian, &chunkSize); err != nil {
			return nil, fmt.Errorf("reading chunk size: %w", err)
		}

		switch string(chunkID[:]) {
		case "fmt ":
			fmtHeader, err := readFmtChunk(f, chunkSize)
			if err != nil {
				return nil, err
			}
			scan.format = *fmtHeader
			scan.fmtFound = true
		case "data":
			data := make([]byte, chunkSize)
			if _, err := io.ReadFull(f, data); err != nil {
				return nil, fmt.Errorf("reading data chunk: %w", err)
			}
			scan.data = data
			scan.dataFound = true
		default:
			if _, err := f.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("skipping chunk: %w", err)
			}
		}

		if chunkSize%2 == 1 {
			if _, err := f.Seek(1, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("seeking pad byte: %w", err)
			}
		}
		if scan.fmtFound && scan.dataFound {
			break
		}
	}
	if !scan.fmtFound {
		return nil, errors.New("fmt chunk not found")
	}
	if !scan.dataFound {
		return nil, errors.New("data chunk not found")
	}
	return &scan, nil
}

func convertToMonoFloat32(data []byte, numChannels uint16) ([]float32, error) {
	sampleCount := len(data) / 2
	int16Buf := make([]int16, sampleCount)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, int16Buf); err != nil {
		return nil, fmt.Errorf("decoding PCM samples: %w", err)
	}

	const scale = 1.0 / 32768.0
	switch numChannels {
	case 1:
		out := make([]float32, len(int16Buf))
		for i, s := range int16Buf {
			out[i] = float32(float64(s) * scale)
		}
		return out, nil
	case 2:
		frames := len(int16Buf) / 2
		out := make([]float32, frames)
		for i := 0; i < frames; i++ {
			l := float64(int16Buf[2*i]) * scale
			r := float64(int16Buf[2*i+1]) * scale
			out[i] = float32((l + r) * 0.5)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported channel count %d from the raw scanner", numChannels)
	}
}

// readRawPCM decodes a canonical 16-bit-PCM WAV via the hand-rolled chunk
// scanner. It returns an error for anything it does not understand so the
// caller can fall back to the go-audio decoder.
func readRawPCM(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	if err := readRIFFHeader(f); err != nil {
		return nil, 0, err
	}
	scan, err := scanWavChunks(f)
	if err != nil {
		return nil, 0, err
	}
	if scan.format.AudioFormat != 1 {
		return nil, 0, fmt.Errorf("audio format %d not handled by raw scanner", scan.format.AudioFormat)
	}
	if scan.format.BitsPerSample != 16 {
		return nil, 0, fmt.Errorf("bit depth %d not handled by raw scanner", scan.format.BitsPerSample)
	}

	samples, err := convertToMonoFloat32(scan.data, scan.format.NumChannels)
	if err != nil {
		return nil, 0, err
	}
	return samples, int(scan.format.SampleRate), nil
}
