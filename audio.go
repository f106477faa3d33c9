/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

const (
	cueSampleRate = 22050
	cueLength     = 1.0  // seconds; the client loops it
	cuePulseFreq  = 880  // Hz
	cueDroneFreq  = 110  // Hz
	cuePulseLen   = 0.08 // seconds
)

var audioTypes = map[string]string{
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".oga":  "audio/ogg",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".wav":  "audio/wav",
	".weba": "audio/webm",
}

// Sound is the stress cue served to the moderator's screen.
type Sound struct {
	Name        string
	ContentType string
	Data        []byte
}

// loadSound reads the configured audio file, or falls back to the
// generated cue when none was given.
func loadSound(cfg *Config) (*Sound, error) {
	if cfg.sound == "" {
		return &Sound{
			Name:        "stress.wav",
			ContentType: "audio/wav",
			Data:        stressCue(),
		}, nil
	}

	data, err := os.ReadFile(cfg.sound)
	if err != nil {
		return nil, fmt.Errorf("loading sound: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(cfg.sound))

	contentType, ok := audioTypes[ext]
	if !ok {
		contentType = mime.TypeByExtension(ext)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &Sound{
		Name:        "stress" + ext,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// stressCue renders one second of 16-bit mono PCM: a low drone with two
// sharp pulses, so that looping it sounds like a racing heartbeat.
func stressCue() []byte {
	samples := int(cueSampleRate * cueLength)
	pulse := int(cueSampleRate * cuePulseLen)
	offsets := []int{0, samples / 4}

	pcm := make([]int16, samples)
	for i := range pcm {
		t := float64(i) / cueSampleRate
		v := 0.15 * math.Sin(2*math.Pi*cueDroneFreq*t)

		for _, start := range offsets {
			if i >= start && i < start+pulse {
				envelope := 1 - float64(i-start)/float64(pulse)
				v += 0.6 * envelope * math.Sin(2*math.Pi*cuePulseFreq*t)
			}
		}

		pcm[i] = int16(math.Max(-1, math.Min(1, v)) * math.MaxInt16)
	}

	return encodeWAV(pcm, cueSampleRate)
}

func encodeWAV(pcm []int16, sampleRate int) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)

	dataLen := len(pcm) * 2
	blockAlign := channels * bitsPerSample / 8

	var buf bytes.Buffer
	buf.Grow(44 + dataLen)

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	_ = binary.Write(&buf, binary.LittleEndian, pcm)

	return buf.Bytes()
}
