package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/sirupsen/logrus"
)

// Open resolves a source reference (local path or http(s) URL) and decodes it.
func Open(ctx context.Context, ref string) (*Clip, error) {
	data, err := fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	clip, err := Decode(path.Base(ref), data)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"function":    "Open",
		"source":      ref,
		"sample_rate": clip.SampleRate,
		"channels":    clip.Channels,
		"duration":    clip.Duration().String(),
	}).Debug("Decoded audio source")
	return clip, nil
}

func fetch(ctx context.Context, ref string) ([]byte, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("audio: read %s: %w", ref, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("audio: request %s: %w", ref, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audio: fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("audio: fetch %s: status %s", ref, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("audio: fetch %s: %w", ref, err)
	}
	return data, nil
}

// Decode picks a decoder by magic bytes, falling back to the file extension.
func Decode(name string, data []byte) (*Clip, error) {
	switch sniff(name, data) {
	case "wav":
		return decodeWAV(name, data)
	case "mp3":
		return decodeMP3(name, data)
	}
	return nil, fmt.Errorf("audio: decode %s: %w", name, ErrUnsupportedFormat)
}

func sniff(name string, data []byte) string {
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return "wav"
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return "mp3"
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return "mp3"
	}
	if len(data) == 0 {
		return ""
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".wav":
		return "wav"
	case ".mp3":
		return "mp3"
	}
	return ""
}

func decodeWAV(name string, data []byte) (*Clip, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, fmt.Errorf("audio: decode %s: invalid WAV: %w", name, ErrUnsupportedFormat)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audio: decode %s: %w", name, err)
	}
	bitDepth := int(d.BitDepth)
	if bitDepth == 0 {
		return nil, fmt.Errorf("audio: decode %s: unknown bit depth", name)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("audio: decode %s: missing format chunk", name)
	}

	// 8-bit WAV samples are unsigned around 128; wider ones are signed.
	factor := 1 / math.Pow(2, float64(bitDepth-1))
	offset := 0.0
	if bitDepth == 8 {
		offset = 128
	}
	pcm := make([]float32, len(buf.Data))
	for i, s := range buf.Data {
		pcm[i] = float32((float64(s) - offset) * factor)
	}
	return NewClip(name, buf.Format.SampleRate, buf.Format.NumChannels, pcm), nil
}

// go-mp3 always yields signed 16-bit little-endian stereo.
func decodeMP3(name string, data []byte) (*Clip, error) {
	d, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("audio: decode %s: %w", name, err)
	}
	raw, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("audio: decode %s: %w", name, err)
	}
	n := len(raw) / 2
	pcm := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		pcm[i] = float32(s) / 32768
	}
	return NewClip(name, d.SampleRate(), 2, pcm), nil
}
