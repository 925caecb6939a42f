package interview

import (
	"time"

	"github.com/abhisek/intervue/internal/api"
	"github.com/abhisek/intervue/internal/capture"
)

// Intents from the rendering layer. Each is applied by Controller.Update.

// StartRecordingMsg asks to begin voice capture.
type StartRecordingMsg struct{}

// StopRecordingMsg asks to stop voice capture and transcribe it.
type StopRecordingMsg struct{}

// CancelProcessingMsg abandons an in-flight capture or transcription.
type CancelProcessingMsg struct{}

// SubmitMsg asks to submit the current answer. ConfirmEmpty acknowledges
// that an empty answer will be sent as NoAnswerText.
type SubmitMsg struct {
	ConfirmEmpty bool
}

// EditMsg replaces the answer text with user input.
type EditMsg struct {
	Text string
}

// ClearMsg discards the current answer.
type ClearMsg struct{}

// RetryMsg refetches the question after a failed load.
type RetryMsg struct{}

// TickMsg advances the countdown by one second.
type TickMsg time.Time

// Completions of async work. Each carries the ticket it was issued under.

type questionLoadedMsg struct {
	ticket uint64
	resp   *api.QuestionResponse
	err    error
}

type submittedMsg struct {
	ticket uint64
	resp   *api.SubmitResponse
	err    error
}

type statusProbeMsg struct {
	ticket uint64
	status *api.SessionStatus
	err    error
}

type captureStartedMsg struct {
	ticket uint64
	stream capture.Stream
}

type captureFailedMsg struct {
	ticket uint64
	err    error
}

type transcribedMsg struct {
	ticket uint64
	resp   *api.TranscriptResponse
	err    error
}
