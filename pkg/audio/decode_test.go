package audio

import (
	"strings"
	"testing"
)

func TestDecodeWAV(t *testing.T) {
	const n = 4800
	data := wavBytes(t, int(testRate), 440, 0.5, n)

	buf, err := Decode(data, "drums.wav", testRate)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if buf.Len() != n {
		t.Errorf("Len = %d, want %d", buf.Len(), n)
	}
	if buf.Format().SampleRate != testRate {
		t.Errorf("SampleRate = %d, want %d", buf.Format().SampleRate, testRate)
	}
}

func TestDecodeResamples(t *testing.T) {
	const n = 44100 // one second at the source rate
	data := wavBytes(t, 44100, 440, 0.5, n)

	buf, err := Decode(data, "drums.wav", testRate)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	// One second of audio at the device rate, within resampler slack.
	if got := buf.Len(); got < int(testRate)-200 || got > int(testRate)+200 {
		t.Errorf("Len = %d, want about %d", got, int(testRate))
	}
}

func TestDecodeSniffsContainer(t *testing.T) {
	data := wavBytes(t, int(testRate), 440, 0.5, 480)

	// No usable extension: the RIFF magic decides.
	buf, err := Decode(data, "stem-download", testRate)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if buf.Len() != 480 {
		t.Errorf("Len = %d, want 480", buf.Len())
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte("definitely not audio"), "stem.mp3", testRate); err == nil {
		t.Fatal("Decode accepted garbage")
	}
}

func TestContainerOf(t *testing.T) {
	cases := []struct {
		name string
		data string
		want string
	}{
		{"a.WAV", "", "wav"},
		{"a.flac", "", "flac"},
		{"a.opus", "", "ogg"},
		{"a.oga", "", "ogg"},
		{"noext", "RIFFxxxx", "wav"},
		{"noext", "OggSxxxx", "ogg"},
		{"noext", "fLaCxxxx", "flac"},
		{"noext", "\xff\xfbxxxx", "mp3"},
	}
	for _, tc := range cases {
		if got := containerOf([]byte(tc.data), tc.name); got != tc.want {
			t.Errorf("containerOf(%q, %q) = %q, want %q", tc.data, tc.name, got, tc.want)
		}
	}
}

func TestDecodeErrorNamesContainer(t *testing.T) {
	_, err := Decode([]byte("RIFF but truncated"), "bad.wav", testRate)
	if err == nil {
		t.Fatal("Decode accepted a truncated wav")
	}
	if !strings.Contains(err.Error(), "wav") {
		t.Errorf("error = %q, want it to mention the container", err)
	}
}
