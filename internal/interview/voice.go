package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/intervue/internal/api"
	"github.com/abhisek/intervue/internal/capture"
)

// DefaultTranscribeTimeout bounds one transcription upload.
const DefaultTranscribeTimeout = 90 * time.Second

// VoiceState is the state of the voice capture unit.
type VoiceState int

const (
	VoiceIdle VoiceState = iota
	VoiceStarting
	VoiceRecording
	VoiceUploading
)

func (s VoiceState) String() string {
	switch s {
	case VoiceStarting:
		return "starting"
	case VoiceRecording:
		return "recording"
	case VoiceUploading:
		return "uploading"
	default:
		return "idle"
	}
}

// OutcomeKind classifies a finished transcription.
type OutcomeKind int

const (
	OutcomeTranscript OutcomeKind = iota
	OutcomeNoSpeech
	OutcomeFailed
)

// Outcome is the result of one recording once its upload completes.
type Outcome struct {
	Kind       OutcomeKind
	Transcript string
	AudioRef   string
	Err        error
}

// StatusChecker reports the server-side status of a session.
type StatusChecker interface {
	FetchSessionStatus(ctx context.Context, sessionID string) (*api.SessionStatus, error)
}

// VoiceUnit records one answer at a time and uploads it for transcription.
// It is driven from the event loop; blocking work runs in returned commands.
type VoiceUnit struct {
	status      StatusChecker
	device      capture.Device
	transcriber Transcriber

	acquireTimeout    time.Duration
	transcribeTimeout time.Duration

	state  VoiceState
	ticket uint64
	stream capture.Stream
	cancel context.CancelFunc
}

// NewVoiceUnit creates a VoiceUnit. Zero timeouts use defaults.
func NewVoiceUnit(status StatusChecker, device capture.Device, transcriber Transcriber, acquireTimeout, transcribeTimeout time.Duration) *VoiceUnit {
	if acquireTimeout <= 0 {
		acquireTimeout = DefaultFetchTimeout
	}
	if transcribeTimeout <= 0 {
		transcribeTimeout = DefaultTranscribeTimeout
	}
	return &VoiceUnit{
		status:            status,
		device:            device,
		transcriber:       transcriber,
		acquireTimeout:    acquireTimeout,
		transcribeTimeout: transcribeTimeout,
	}
}

// State returns the current voice state.
func (v *VoiceUnit) State() VoiceState { return v.state }

// Busy reports whether a capture or upload is in progress.
func (v *VoiceUnit) Busy() bool { return v.state != VoiceIdle }

// Start begins acquiring the capture device. The returned command first
// confirms the session is active, then opens a mono 16 kHz stream.
func (v *VoiceUnit) Start(sessionID string) (tea.Cmd, error) {
	if v.state != VoiceIdle {
		return nil, &PreconditionError{Op: "start recording", Reason: "a recording is already " + v.state.String()}
	}
	if v.device == nil {
		return nil, &DeviceError{Err: capture.ErrUnavailable}
	}

	v.ticket++
	ticket := v.ticket
	ctx, cancel := context.WithTimeout(context.Background(), v.acquireTimeout)
	v.cancel = cancel
	v.state = VoiceStarting

	status, device := v.status, v.device
	return func() tea.Msg {
		st, err := status.FetchSessionStatus(ctx, sessionID)
		if err != nil {
			return captureFailedMsg{ticket: ticket, err: err}
		}
		if st.Status != api.StatusActive {
			return captureFailedMsg{ticket: ticket, err: &PreconditionError{
				Op:     "start recording",
				Reason: fmt.Sprintf("session is %s", st.Status),
				Err:    &api.NotActiveError{SessionID: sessionID, Message: string(st.Status)},
			}}
		}
		stream, err := device.Open(ctx, capture.VoiceFormat)
		if err != nil {
			return captureFailedMsg{ticket: ticket, err: &DeviceError{Err: err}}
		}
		return captureStartedMsg{ticket: ticket, stream: stream}
	}, nil
}

// Started applies a successful acquisition. A stream arriving for a stale
// ticket is aborted and false is returned.
func (v *VoiceUnit) Started(msg captureStartedMsg) bool {
	if msg.ticket != v.ticket || v.state != VoiceStarting {
		msg.stream.Abort()
		return false
	}
	v.release()
	v.stream = msg.stream
	v.state = VoiceRecording
	return true
}

// StartFailed applies a failed acquisition. Returns false for stale tickets.
func (v *VoiceUnit) StartFailed(msg captureFailedMsg) bool {
	if msg.ticket != v.ticket || v.state != VoiceStarting {
		return false
	}
	v.release()
	v.state = VoiceIdle
	return true
}

// Stop finalizes the recording and uploads it. The upload is bound to a
// cancellable context that expires after the transcription timeout.
func (v *VoiceUnit) Stop(sessionID string, stamp time.Time) (tea.Cmd, error) {
	if v.state != VoiceRecording {
		return nil, &PreconditionError{Op: "stop recording", Reason: "not recording"}
	}

	stream := v.stream
	v.stream = nil
	v.ticket++
	ticket := v.ticket
	ctx, cancel := context.WithTimeout(context.Background(), v.transcribeTimeout)
	v.cancel = cancel
	v.state = VoiceUploading

	transcriber, limit := v.transcriber, v.transcribeTimeout
	return func() tea.Msg {
		audio, err := stream.Stop()
		if err != nil {
			return transcribedMsg{ticket: ticket, err: &DeviceError{Err: err}}
		}
		resp, err := transcriber.TranscribeAudio(ctx, sessionID, audio, stamp)
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = &TimeoutError{Op: "transcribe audio", After: limit}
			}
			return transcribedMsg{ticket: ticket, err: err}
		}
		return transcribedMsg{ticket: ticket, resp: resp}
	}, nil
}

// Cancel abandons whatever is in flight. A completion that arrives later
// carries a stale ticket and is discarded. Returns false if nothing was
// in flight.
func (v *VoiceUnit) Cancel() bool {
	switch v.state {
	case VoiceIdle:
		return false
	case VoiceRecording:
		if v.stream != nil {
			v.stream.Abort()
			v.stream = nil
		}
	}
	v.release()
	v.ticket++
	v.state = VoiceIdle
	return true
}

// Finish applies an upload completion. Returns false for stale tickets.
func (v *VoiceUnit) Finish(msg transcribedMsg) (Outcome, bool) {
	if msg.ticket != v.ticket || v.state != VoiceUploading {
		return Outcome{}, false
	}
	v.release()
	v.state = VoiceIdle

	if msg.err != nil {
		return Outcome{Kind: OutcomeFailed, Err: msg.err}, true
	}
	text := strings.TrimSpace(msg.resp.Transcript)
	if text == "" {
		return Outcome{Kind: OutcomeNoSpeech, AudioRef: msg.resp.AudioRef}, true
	}
	return Outcome{Kind: OutcomeTranscript, Transcript: text, AudioRef: msg.resp.AudioRef}, true
}

func (v *VoiceUnit) release() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}
