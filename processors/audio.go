package processors

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"videoTranscribe/core"
)

// SampleRate is the fixed decode rate for the recognition models.
const SampleRate = 16000

// LoadAudio decodes any container ffmpeg understands into a mono
// 16 kHz float32 buffer, the input shape both pipeline stages expect.
func LoadAudio(ctx context.Context, path string) (*core.AudioBuffer, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-nostdin", "-v", "error",
		"-i", path,
		"-f", "f32le", "-ac", "1", "-ar", strconv.Itoa(SampleRate),
		"pipe:1",
	)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode %s: %v: %s", path, err, strings.TrimSpace(errBuf.String()))
	}

	raw := out.Bytes()
	samples := make([]float32, len(raw)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return &core.AudioBuffer{Samples: samples, SampleRate: SampleRate}, nil
}

// ProbeDuration returns the media duration in seconds via ffprobe.
func ProbeDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", path)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return 0, err
	}
	s := strings.TrimSpace(out.String())
	return strconv.ParseFloat(s, 64)
}

// encodeWAV renders the buffer as a 16-bit PCM WAV file for transport
// to the inference runner.
func encodeWAV(audio *core.AudioBuffer) []byte {
	n := len(audio.Samples)
	dataLen := n * 2
	buf := bytes.NewBuffer(make([]byte, 0, 44+dataLen))

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(buf, binary.LittleEndian, uint32(audio.SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(audio.SampleRate*2))
	binary.Write(buf, binary.LittleEndian, uint16(2))
	binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	for _, s := range audio.Samples {
		f := float64(s)
		if f > 1 {
			f = 1
		} else if f < -1 {
			f = -1
		}
		binary.Write(buf, binary.LittleEndian, int16(f*32767))
	}
	return buf.Bytes()
}
