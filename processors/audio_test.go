package processors

import (
	"encoding/binary"
	"testing"

	"videoTranscribe/core"
)

func TestEncodeWAVHeader(t *testing.T) {
	audio := &core.AudioBuffer{Samples: make([]float32, 100), SampleRate: SampleRate}
	wav := encodeWAV(audio)

	if len(wav) != 44+200 {
		t.Fatalf("wav length = %d, want %d", len(wav), 44+200)
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Errorf("bad container magic: %q %q", wav[0:4], wav[8:12])
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != SampleRate {
		t.Errorf("sample rate = %d, want %d", rate, SampleRate)
	}
	if bits := binary.LittleEndian.Uint16(wav[34:36]); bits != 16 {
		t.Errorf("bits per sample = %d, want 16", bits)
	}
	if dataLen := binary.LittleEndian.Uint32(wav[40:44]); dataLen != 200 {
		t.Errorf("data length = %d, want 200", dataLen)
	}
}

func TestEncodeWAVClipsSamples(t *testing.T) {
	audio := &core.AudioBuffer{Samples: []float32{2.0, -2.0, 0}, SampleRate: SampleRate}
	wav := encodeWAV(audio)

	data := wav[44:]
	hi := int16(binary.LittleEndian.Uint16(data[0:2]))
	lo := int16(binary.LittleEndian.Uint16(data[2:4]))
	zero := int16(binary.LittleEndian.Uint16(data[4:6]))
	if hi != 32767 {
		t.Errorf("over-range sample = %d, want 32767", hi)
	}
	if lo != -32767 {
		t.Errorf("under-range sample = %d, want -32767", lo)
	}
	if zero != 0 {
		t.Errorf("zero sample = %d", zero)
	}
}
