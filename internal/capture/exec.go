package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ExecConfig configures an ExecDevice.
type ExecConfig struct {
	// Command is the ffmpeg binary. Defaults to "ffmpeg".
	Command string

	// InputFormat is the ffmpeg demuxer (alsa, pulse, avfoundation, dshow).
	// Defaults by platform.
	InputFormat string

	// InputDevice is the demuxer-specific device name. Defaults by platform.
	InputDevice string

	// StartupProbe is how long Open waits for ffmpeg to fail fast before
	// treating the device as acquired.
	StartupProbe time.Duration
}

// ExecDevice records through an ffmpeg subprocess into a temp WAV file.
type ExecDevice struct {
	cfg ExecConfig
}

// NewExecDevice creates an ExecDevice, filling platform defaults.
func NewExecDevice(cfg ExecConfig) *ExecDevice {
	if cfg.Command == "" {
		cfg.Command = "ffmpeg"
	}
	if cfg.InputFormat == "" || cfg.InputDevice == "" {
		format, device := platformDefaults(runtime.GOOS)
		if cfg.InputFormat == "" {
			cfg.InputFormat = format
		}
		if cfg.InputDevice == "" {
			cfg.InputDevice = device
		}
	}
	if cfg.StartupProbe <= 0 {
		cfg.StartupProbe = 300 * time.Millisecond
	}
	return &ExecDevice{cfg: cfg}
}

func platformDefaults(goos string) (format, device string) {
	switch goos {
	case "darwin":
		return "avfoundation", ":0"
	case "windows":
		return "dshow", "audio=default"
	default:
		return "alsa", "default"
	}
}

// Args returns the ffmpeg arguments used to record into out.
func (d *ExecDevice) Args(f Format, out string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin", "-y",
		"-f", d.cfg.InputFormat,
		"-i", d.cfg.InputDevice,
		"-ac", strconv.Itoa(f.Channels),
		"-ar", strconv.Itoa(f.SampleRate),
		"-f", "wav",
		out,
	}
}

// Check reports whether the configured ffmpeg binary can be found.
func (d *ExecDevice) Check() (string, error) {
	path, err := exec.LookPath(d.cfg.Command)
	if err != nil {
		return "", fmt.Errorf("%w: %s not found in PATH", ErrUnavailable, d.cfg.Command)
	}
	return path, nil
}

func (d *ExecDevice) Open(ctx context.Context, f Format) (Stream, error) {
	if _, err := d.Check(); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "intervue-capture-")
	if err != nil {
		return nil, fmt.Errorf("create capture dir: %w", err)
	}
	out := filepath.Join(dir, "answer.wav")

	cmd := exec.Command(d.cfg.Command, d.Args(f, out)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		_ = os.RemoveAll(dir)
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s := &execStream{cmd: cmd, dir: dir, out: out, stderr: &stderr, done: make(chan struct{})}
	go func() {
		s.waitErr = cmd.Wait()
		close(s.done)
	}()

	// ffmpeg exits almost immediately when the device cannot be opened.
	select {
	case <-s.done:
		_ = os.RemoveAll(dir)
		return nil, classifyStartup(stderr.String())
	case <-ctx.Done():
		s.Abort()
		return nil, ctx.Err()
	case <-time.After(d.cfg.StartupProbe):
	}
	return s, nil
}

func classifyStartup(stderr string) error {
	msg := strings.TrimSpace(stderr)
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission denied") || strings.Contains(lower, "not authorized") {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, msg)
	}
	if msg == "" {
		msg = "recorder exited during startup"
	}
	return fmt.Errorf("%w: %s", ErrUnavailable, msg)
}

type execStream struct {
	cmd    *exec.Cmd
	dir    string
	out    string
	stderr *bytes.Buffer

	done    chan struct{}
	waitErr error

	once sync.Once
}

func (s *execStream) Stop() ([]byte, error) {
	var data []byte
	var err error
	stopped := false
	s.once.Do(func() {
		stopped = true
		defer func() { _ = os.RemoveAll(s.dir) }()

		// ffmpeg finalizes the WAV header on SIGINT.
		_ = s.cmd.Process.Signal(os.Interrupt)
		select {
		case <-s.done:
		case <-time.After(5 * time.Second):
			_ = s.cmd.Process.Kill()
			<-s.done
		}

		data, err = os.ReadFile(s.out)
		if err != nil {
			err = fmt.Errorf("read recording: %w", err)
			return
		}
		if len(data) == 0 {
			err = fmt.Errorf("recording is empty: %s", strings.TrimSpace(s.stderr.String()))
		}
	})
	if !stopped {
		return nil, errors.New("capture already stopped")
	}
	return data, err
}

func (s *execStream) Abort() {
	s.once.Do(func() {
		_ = s.cmd.Process.Kill()
		<-s.done
		_ = os.RemoveAll(s.dir)
	})
}
