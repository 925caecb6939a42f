package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wavBytes() []byte {
	return append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 32)...)
}

func TestFileDevice_StopReturnsAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.wav")
	require.NoError(t, os.WriteFile(path, wavBytes(), 0o644))

	s, err := NewFileDevice(path).Open(context.Background(), VoiceFormat)
	require.NoError(t, err)

	data, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, wavBytes(), data)

	_, err = s.Stop()
	assert.Error(t, err, "second stop should fail")
	s.Abort()
}

func TestFileDevice_Missing(t *testing.T) {
	_, err := NewFileDevice(filepath.Join(t.TempDir(), "nope.wav")).Open(context.Background(), VoiceFormat)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestFileDevice_NotWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	_, err := NewFileDevice(path).Open(context.Background(), VoiceFormat)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestFileDevice_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFileDevice("whatever.wav").Open(ctx, VoiceFormat)
	require.ErrorIs(t, err, context.Canceled)
}

func TestExecDevice_Args(t *testing.T) {
	d := NewExecDevice(ExecConfig{InputFormat: "pulse", InputDevice: "mic"})
	got := d.Args(VoiceFormat, "/tmp/out.wav")
	want := []string{
		"-hide_banner", "-loglevel", "error", "-nostdin", "-y",
		"-f", "pulse",
		"-i", "mic",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		"/tmp/out.wav",
	}
	assert.Equal(t, want, got)
}

func TestExecDevice_MissingBinary(t *testing.T) {
	d := NewExecDevice(ExecConfig{Command: "intervue-no-such-recorder"})
	_, err := d.Open(context.Background(), VoiceFormat)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestPlatformDefaults(t *testing.T) {
	tests := []struct {
		goos       string
		wantFormat string
		wantDevice string
	}{
		{"linux", "alsa", "default"},
		{"darwin", "avfoundation", ":0"},
		{"windows", "dshow", "audio=default"},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			f, d := platformDefaults(tt.goos)
			assert.Equal(t, tt.wantFormat, f)
			assert.Equal(t, tt.wantDevice, d)
		})
	}
}

func TestClassifyStartup(t *testing.T) {
	assert.ErrorIs(t, classifyStartup("default: Permission denied"), ErrPermissionDenied)
	assert.ErrorIs(t, classifyStartup("cannot open audio device default"), ErrUnavailable)
	assert.ErrorIs(t, classifyStartup(""), ErrUnavailable)
}
