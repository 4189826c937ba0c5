package audio

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/hraban/opus"
)

const resampleQuality = 4

// byteStream adapts an in-memory blob to the reader flavors the codec
// decoders want.
type byteStream struct {
	*bytes.Reader
}

func (byteStream) Close() error { return nil }

func newByteStream(data []byte) byteStream {
	return byteStream{bytes.NewReader(data)}
}

// Decode turns an encoded stem into an immutable PCM buffer at the target
// rate. The container is picked from the file extension in name when
// recognizable, otherwise sniffed from the payload. Ogg payloads are
// tried as Vorbis first and Opus second.
func Decode(data []byte, name string, target beep.SampleRate) (*beep.Buffer, error) {
	switch containerOf(data, name) {
	case "wav":
		s, format, err := wav.Decode(newByteStream(data))
		if err != nil {
			return nil, fmt.Errorf("decode wav: %w", err)
		}
		return buffer(s, format.SampleRate, target), nil
	case "mp3":
		s, format, err := mp3.Decode(newByteStream(data))
		if err != nil {
			return nil, fmt.Errorf("decode mp3: %w", err)
		}
		return buffer(s, format.SampleRate, target), nil
	case "flac":
		s, format, err := flac.Decode(newByteStream(data))
		if err != nil {
			return nil, fmt.Errorf("decode flac: %w", err)
		}
		return buffer(s, format.SampleRate, target), nil
	case "ogg":
		if s, format, err := vorbis.Decode(newByteStream(data)); err == nil {
			return buffer(s, format.SampleRate, target), nil
		}
		return decodeOggOpus(data, target)
	default:
		return nil, fmt.Errorf("unrecognized audio container in %q", name)
	}
}

func containerOf(data []byte, name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".wav":
		return "wav"
	case ".mp3":
		return "mp3"
	case ".flac":
		return "flac"
	case ".ogg", ".oga", ".opus":
		return "ogg"
	}
	if len(data) >= 4 {
		switch {
		case bytes.Equal(data[:4], []byte("RIFF")):
			return "wav"
		case bytes.Equal(data[:4], []byte("OggS")):
			return "ogg"
		case bytes.Equal(data[:4], []byte("fLaC")):
			return "flac"
		}
	}
	return "mp3"
}

// buffer copies a decoded stream into a beep.Buffer, resampling when the
// source rate differs from the device rate.
func buffer(s beep.Streamer, from, to beep.SampleRate) *beep.Buffer {
	out := s
	if from != to {
		out = beep.Resample(resampleQuality, from, to, s)
	}
	buf := beep.NewBuffer(beep.Format{SampleRate: to, NumChannels: 2, Precision: 2})
	buf.Append(out)
	return buf
}

// opusRate is fixed by the codec; every Ogg Opus stream decodes at 48k.
const opusRate = beep.SampleRate(48000)

func decodeOggOpus(data []byte, target beep.SampleRate) (*beep.Buffer, error) {
	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode opus: %w", err)
	}
	defer stream.Close()

	var pcm []int16
	frame := make([]int16, 5760*2)
	for {
		n, err := stream.Read(frame)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode opus: %w", err)
		}
		pcm = append(pcm, frame[:n*2]...)
	}

	return buffer(&pcmStreamer{pcm: pcm}, opusRate, target), nil
}

// pcmStreamer plays interleaved stereo int16 PCM from memory.
type pcmStreamer struct {
	pcm []int16
	off int
}

func (p *pcmStreamer) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) && p.off+1 < len(p.pcm) {
		samples[filled] = [2]float64{
			float64(p.pcm[p.off]) / 32768.0,
			float64(p.pcm[p.off+1]) / 32768.0,
		}
		p.off += 2
		filled++
	}
	return filled, filled > 0
}

func (p *pcmStreamer) Err() error { return nil }
