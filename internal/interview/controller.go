// Package interview drives one interview session: the per-question
// countdown, voice capture and transcription, and answer submission.
package interview

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/intervue/internal/api"
	"github.com/abhisek/intervue/internal/capture"
	"github.com/abhisek/intervue/internal/store"
)

const (
	DefaultSubmitTimeout = 60 * time.Second
	DefaultFetchTimeout  = 30 * time.Second
)

// User-facing status messages.
const (
	MsgConfirmEmpty      = "Submit empty answer? This will count as 'No answer provided'."
	MsgFinishProcessing  = "Time's up! Please wait for audio processing to complete or stop recording."
	MsgTranscribeTimeout = "Audio processing timeout. Please try a shorter recording or type your answer."
	MsgProcessCancelled  = "Processing cancelled. You can type your answer or try recording again."
	MsgTranscribeFailed  = "Could not transcribe audio. Please try typing your answer instead."
	MsgNoSpeech          = "No speech detected. Please try again or type your answer."
	MsgTranscriptReady   = "Transcription ready. Review or edit it, then submit."
	MsgAnswerSaved       = "Answer saved! Next question loaded."
	MsgSessionExpired    = "Session expired. Start a new interview to continue."
	MsgCompleted         = "Interview complete!"
)

// SessionAPI is the server contract the controller consumes.
type SessionAPI interface {
	StatusChecker
	FetchQuestion(ctx context.Context, sessionID string) (*api.QuestionResponse, error)
	SubmitAnswer(ctx context.Context, sessionID string, req api.AnswerRequest) (*api.SubmitResponse, error)
}

// Transcriber turns recorded audio into text.
type Transcriber interface {
	TranscribeAudio(ctx context.Context, sessionID string, audio []byte, stamp time.Time) (*api.TranscriptResponse, error)
}

// EventRecorder receives answer and session events.
type EventRecorder interface {
	AppendAnswerEvent(ctx context.Context, data store.AnswerEventData) error
	AppendSessionEvent(ctx context.Context, data store.SessionEventData) error
}

// SessionForgetter drops the locally remembered session.
type SessionForgetter interface {
	ClearActive(ctx context.Context, sessionID string) error
}

// Options configures a Controller. API is required; the rest are optional.
type Options struct {
	API         SessionAPI
	Transcriber Transcriber
	Device      capture.Device
	Events      EventRecorder
	Sessions    SessionForgetter
	Mode        string

	TranscribeTimeout time.Duration
	SubmitTimeout     time.Duration
	FetchTimeout      time.Duration

	Now func() time.Time
}

// State is the controller's state.
type State int

const (
	StateLoading State = iota
	StateQuestionActive
	StateRecording
	StateProcessing
	StateReviewReady
	StateSubmitting
	StateCompleted
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateQuestionActive:
		return "question-active"
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	case StateReviewReady:
		return "review-ready"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	case StateExpired:
		return "expired"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateExpired
}

// interactive reports whether the user can compose or submit an answer.
func (s State) interactive() bool {
	return s == StateQuestionActive || s == StateReviewReady
}

// View is a read-only snapshot for rendering.
type View struct {
	State          State
	Voice          VoiceState
	Question       *api.Question
	Total          int
	Progress       int
	Answered       int
	Remaining      int
	TimerRunning   bool
	Answer         string
	Provenance     Provenance
	Message        string
	ConfirmPending bool
	DeferredSubmit bool
	SessionID      string
	Role           string
}

// Controller is the interview session state machine. It is not safe for
// concurrent use; all calls come from the event loop.
type Controller struct {
	sess  *Session
	opts  Options
	voice *VoiceUnit
	timer Timer
	buf   Buffer

	state    State
	question *api.Question
	total    int
	progress int
	answered int
	message  string

	confirmPending bool
	deferredSubmit bool
	probing        bool
	loadErr        error

	// Each async request kind carries its own ticket; completions with an
	// older ticket are ignored.
	fetchTicket  uint64
	submitTicket uint64
	pending      pendingSubmit

	// sessionID survives Forget so terminal events can still name it.
	sessionID     string
	startedAt     time.Time
	questionStart time.Time
}

type pendingSubmit struct {
	answer Answer
	auto   bool
}

// New creates a controller for sess.
func New(sess *Session, opts Options) *Controller {
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = DefaultSubmitTimeout
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.TranscribeTimeout <= 0 {
		opts.TranscribeTimeout = DefaultTranscribeTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		sess:      sess,
		opts:      opts,
		voice:     NewVoiceUnit(opts.API, opts.Device, opts.Transcriber, opts.FetchTimeout, opts.TranscribeTimeout),
		state:     StateLoading,
		sessionID: sess.ID,
		startedAt: opts.Now(),
	}
}

// Init loads the current question. The caller drives TickMsg once a second.
func (c *Controller) Init() tea.Cmd {
	return c.fetchQuestion()
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Remaining returns the seconds left on the current question.
func (c *Controller) Remaining() int { return c.timer.Remaining() }

// View returns a rendering snapshot.
func (c *Controller) View() View {
	return View{
		State:          c.state,
		Voice:          c.voice.State(),
		Question:       c.question,
		Total:          c.total,
		Progress:       c.progress,
		Answered:       c.answered,
		Remaining:      c.timer.Remaining(),
		TimerRunning:   c.timer.Running(),
		Answer:         c.buf.Text(),
		Provenance:     c.buf.Provenance(),
		Message:        c.message,
		ConfirmPending: c.confirmPending,
		DeferredSubmit: c.deferredSubmit,
		SessionID:      c.sessionID,
		Role:           c.sess.Role,
	}
}

// Update applies a message and returns follow-up work. Errors are surfaced
// through the status message.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	cmd, _ := c.dispatch(msg)
	return cmd
}

// StartRecording begins voice capture.
func (c *Controller) StartRecording() (tea.Cmd, error) { return c.dispatch(StartRecordingMsg{}) }

// StopRecording ends voice capture and starts transcription.
func (c *Controller) StopRecording() (tea.Cmd, error) { return c.dispatch(StopRecordingMsg{}) }

// CancelProcessing abandons an in-flight capture or transcription.
func (c *Controller) CancelProcessing() (tea.Cmd, error) { return c.dispatch(CancelProcessingMsg{}) }

// Submit submits the current answer. An empty answer returns
// ErrConfirmationRequired unless confirmEmpty is set.
func (c *Controller) Submit(confirmEmpty bool) (tea.Cmd, error) {
	return c.dispatch(SubmitMsg{ConfirmEmpty: confirmEmpty})
}

// EditAnswer replaces the answer text with typed input.
func (c *Controller) EditAnswer(text string) error {
	_, err := c.dispatch(EditMsg{Text: text})
	return err
}

// ClearAnswer discards the current answer, including a transcription.
func (c *Controller) ClearAnswer() error {
	_, err := c.dispatch(ClearMsg{})
	return err
}

// Retry refetches the question after a load failure.
func (c *Controller) Retry() (tea.Cmd, error) { return c.dispatch(RetryMsg{}) }

// DismissConfirm hides a pending empty-answer confirmation.
func (c *Controller) DismissConfirm() {
	if c.confirmPending {
		c.confirmPending = false
		c.message = ""
	}
}

func (c *Controller) dispatch(msg tea.Msg) (tea.Cmd, error) {
	cmd, err := c.apply(msg)
	if err != nil && !errors.Is(err, ErrConfirmationRequired) {
		c.message = describe(err)
	}
	return cmd, err
}

// apply is the single transition function.
func (c *Controller) apply(msg tea.Msg) (tea.Cmd, error) {
	switch msg := msg.(type) {
	case TickMsg:
		return c.onTick(), nil
	case StartRecordingMsg:
		return c.onStartRecording()
	case StopRecordingMsg:
		return c.onStopRecording()
	case CancelProcessingMsg:
		return c.onCancel(), nil
	case SubmitMsg:
		return c.onSubmit(msg.ConfirmEmpty)
	case EditMsg:
		return nil, c.onEdit(msg.Text)
	case ClearMsg:
		return nil, c.onClear()
	case RetryMsg:
		return c.onRetry()

	case questionLoadedMsg:
		return c.onQuestionLoaded(msg), nil
	case submittedMsg:
		return c.onSubmitted(msg), nil
	case statusProbeMsg:
		return c.onStatusProbe(msg), nil
	case captureStartedMsg:
		c.onCaptureStarted(msg)
		return nil, nil
	case captureFailedMsg:
		return c.onCaptureFailed(msg), nil
	case transcribedMsg:
		return c.onTranscribed(msg), nil
	}
	return nil, nil
}

func (c *Controller) onTick() tea.Cmd {
	if c.state.Terminal() || c.state == StateLoading {
		return nil
	}
	if !c.timer.Tick() {
		return nil
	}
	switch c.state {
	case StateRecording, StateProcessing:
		c.deferredSubmit = true
		c.message = MsgFinishProcessing
		return nil
	case StateQuestionActive, StateReviewReady:
		return c.submit(true)
	}
	return nil
}

func (c *Controller) onStartRecording() (tea.Cmd, error) {
	if !c.state.interactive() {
		return nil, c.notAllowed("start recording")
	}
	if c.timer.Remaining() == 0 {
		return nil, &PreconditionError{Op: "start recording", Reason: "time is up, submit your answer"}
	}
	cmd, err := c.voice.Start(c.sess.ID)
	if err != nil {
		return nil, err
	}
	c.state = StateRecording
	c.confirmPending = false
	c.message = "Starting microphone..."
	return cmd, nil
}

func (c *Controller) onCaptureStarted(msg captureStartedMsg) {
	if !c.voice.Started(msg) || c.deferredSubmit {
		return
	}
	c.message = "Recording... stop when you are done."
}

func (c *Controller) onCaptureFailed(msg captureFailedMsg) tea.Cmd {
	if !c.voice.StartFailed(msg) {
		return nil
	}
	if api.IsNotActive(msg.err) {
		return c.probeStatus()
	}
	c.state = c.restingState()
	c.message = describe(msg.err)
	return c.checkDeferred()
}

func (c *Controller) onStopRecording() (tea.Cmd, error) {
	if c.state != StateRecording {
		return nil, c.notAllowed("stop recording")
	}
	if c.voice.State() != VoiceRecording {
		return nil, &PreconditionError{Op: "stop recording", Reason: "microphone is still starting"}
	}
	cmd, err := c.voice.Stop(c.sess.ID, c.opts.Now())
	if err != nil {
		return nil, err
	}
	c.timer.Pause()
	c.state = StateProcessing
	c.message = "Processing audio..."
	return cmd, nil
}

func (c *Controller) onCancel() tea.Cmd {
	switch c.state {
	case StateProcessing:
		c.voice.Cancel()
		c.state = StateQuestionActive
		c.timer.Resume()
		c.message = MsgProcessCancelled
		return c.checkDeferred()
	case StateRecording:
		c.voice.Cancel()
		c.state = c.restingState()
		c.message = "Recording cancelled."
		return c.checkDeferred()
	}
	return nil
}

func (c *Controller) onTranscribed(msg transcribedMsg) tea.Cmd {
	out, ok := c.voice.Finish(msg)
	if !ok {
		return nil
	}

	switch out.Kind {
	case OutcomeTranscript:
		c.buf.SetTranscript(out.Transcript, out.AudioRef)
		c.state = StateReviewReady
		c.message = MsgTranscriptReady
	case OutcomeNoSpeech:
		c.state = StateQuestionActive
		c.message = MsgNoSpeech
	default:
		if api.IsNotActive(out.Err) {
			return c.probeStatus()
		}
		c.state = StateQuestionActive
		if Classify(out.Err) == KindTimeout {
			c.message = MsgTranscribeTimeout
		} else {
			c.message = MsgTranscribeFailed
		}
	}
	c.timer.Resume()
	return c.checkDeferred()
}

func (c *Controller) onEdit(text string) error {
	switch c.state {
	case StateQuestionActive, StateRecording:
	case StateReviewReady:
		c.state = StateQuestionActive
	default:
		return c.notAllowed("edit answer")
	}
	c.buf.Edit(text)
	c.confirmPending = false
	return nil
}

func (c *Controller) onClear() error {
	if !c.state.interactive() {
		return c.notAllowed("clear answer")
	}
	c.buf.Reset()
	c.state = StateQuestionActive
	c.confirmPending = false
	c.message = ""
	return nil
}

func (c *Controller) onSubmit(confirmEmpty bool) (tea.Cmd, error) {
	if !c.state.interactive() {
		return nil, c.notAllowed("submit answer")
	}
	if c.buf.Empty() && !confirmEmpty {
		c.confirmPending = true
		c.message = MsgConfirmEmpty
		return nil, ErrConfirmationRequired
	}
	return c.submit(false), nil
}

// submit sends the finalized answer. Expiry-driven submissions skip the
// empty-answer confirmation.
func (c *Controller) submit(auto bool) tea.Cmd {
	now := c.opts.Now()
	ans := c.buf.Finalize(int(now.Sub(c.questionStart).Seconds()))

	c.timer.Pause()
	c.state = StateSubmitting
	c.confirmPending = false
	c.deferredSubmit = false
	c.pending = pendingSubmit{answer: ans, auto: auto}
	if auto {
		c.message = "Time's up! Submitting your answer..."
	} else {
		c.message = "Submitting answer..."
	}

	c.submitTicket++
	ticket := c.submitTicket
	id := c.sess.ID
	req := api.AnswerRequest{
		Answer:        ans.Content,
		IsVoiceAnswer: ans.Provenance == ProvenanceVoice,
		AudioRef:      ans.AudioRef,
		ResponseTime:  ans.ResponseTime,
	}
	client, limit := c.opts.API, c.opts.SubmitTimeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), limit)
		defer cancel()
		resp, err := client.SubmitAnswer(ctx, id, req)
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = &TimeoutError{Op: "submit answer", After: limit}
		}
		return submittedMsg{ticket: ticket, resp: resp, err: err}
	}
}

func (c *Controller) onSubmitted(msg submittedMsg) tea.Cmd {
	if msg.ticket != c.submitTicket || c.state != StateSubmitting {
		return nil
	}

	if msg.err != nil {
		if api.IsNotActive(msg.err) {
			return c.probeStatus()
		}
		c.state = StateQuestionActive
		c.timer.Resume()
		if Classify(msg.err) == KindTimeout {
			c.message = "Submitting took too long. Please try again."
		} else {
			c.message = fmt.Sprintf("Could not submit answer: %v. Please try again.", msg.err)
		}
		return nil
	}

	c.recordAnswer()
	c.answered++
	c.progress = msg.resp.Progress

	switch {
	case msg.resp.Completed:
		c.finish(StateCompleted)
		return nil
	case msg.resp.NextQuestion != nil:
		c.loadQuestion(msg.resp.NextQuestion)
		c.message = MsgAnswerSaved
		return nil
	}
	return c.fetchQuestion()
}

func (c *Controller) fetchQuestion() tea.Cmd {
	c.state = StateLoading
	c.loadErr = nil
	c.message = "Loading question..."
	c.fetchTicket++
	ticket := c.fetchTicket
	id := c.sess.ID
	client, limit := c.opts.API, c.opts.FetchTimeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), limit)
		defer cancel()
		resp, err := client.FetchQuestion(ctx, id)
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = &TimeoutError{Op: "fetch question", After: limit}
		}
		return questionLoadedMsg{ticket: ticket, resp: resp, err: err}
	}
}

func (c *Controller) onQuestionLoaded(msg questionLoadedMsg) tea.Cmd {
	if msg.ticket != c.fetchTicket || c.state != StateLoading || c.probing {
		return nil
	}
	if msg.err != nil {
		if api.IsNotActive(msg.err) {
			return c.probeStatus()
		}
		c.loadErr = msg.err
		c.message = fmt.Sprintf("Could not load question: %v", msg.err)
		return nil
	}
	if msg.resp.Completed {
		c.finish(StateCompleted)
		return nil
	}
	if msg.resp.TotalQuestions > 0 {
		c.total = msg.resp.TotalQuestions
	}
	c.progress = msg.resp.Progress
	c.loadQuestion(msg.resp.Question)
	c.message = ""
	return nil
}

func (c *Controller) onRetry() (tea.Cmd, error) {
	if c.state != StateLoading || c.probing || c.loadErr == nil {
		return nil, c.notAllowed("retry")
	}
	return c.fetchQuestion(), nil
}

func (c *Controller) loadQuestion(q *api.Question) {
	c.question = q
	c.buf.Reset()
	c.timer.Start(q.TimeLimitSeconds())
	c.state = StateQuestionActive
	c.confirmPending = false
	c.deferredSubmit = false
	c.questionStart = c.opts.Now()
}

// probeStatus asks the server why the session was rejected: a finished
// session shows its results, anything else is treated as expired.
func (c *Controller) probeStatus() tea.Cmd {
	c.voice.Cancel()
	c.timer.Pause()
	c.state = StateLoading
	c.probing = true
	c.message = "Checking session status..."
	c.fetchTicket++
	ticket := c.fetchTicket
	id := c.sess.ID
	client, limit := c.opts.API, c.opts.FetchTimeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), limit)
		defer cancel()
		st, err := client.FetchSessionStatus(ctx, id)
		return statusProbeMsg{ticket: ticket, status: st, err: err}
	}
}

func (c *Controller) onStatusProbe(msg statusProbeMsg) tea.Cmd {
	if msg.ticket != c.fetchTicket || !c.probing {
		return nil
	}
	c.probing = false
	if msg.err == nil && msg.status != nil && msg.status.Status == api.StatusCompleted {
		c.finish(StateCompleted)
		return nil
	}
	c.finish(StateExpired)
	return nil
}

func (c *Controller) finish(state State) {
	c.voice.Cancel()
	c.timer.Pause()
	c.state = state
	c.confirmPending = false
	c.deferredSubmit = false

	action := "complete"
	if state == StateExpired {
		action = "expire"
		c.message = MsgSessionExpired
		c.sess.Forget()
	} else {
		c.message = MsgCompleted
		c.sess.Status = api.StatusCompleted
	}

	ctx := context.Background()
	if c.opts.Sessions != nil {
		_ = c.opts.Sessions.ClearActive(ctx, c.sessionID)
	}
	if c.opts.Events != nil {
		_ = c.opts.Events.AppendSessionEvent(ctx, store.SessionEventData{
			SessionID:         c.sessionID,
			Role:              c.sess.Role,
			Mode:              c.opts.Mode,
			Action:            action,
			QuestionsAnswered: c.answered,
			DurationSecs:      int(c.opts.Now().Sub(c.startedAt).Seconds()),
		})
	}
}

func (c *Controller) recordAnswer() {
	if c.opts.Events == nil || c.question == nil {
		return
	}
	a := c.pending.answer
	_ = c.opts.Events.AppendAnswerEvent(context.Background(), store.AnswerEventData{
		SessionID:     c.sessionID,
		QuestionIndex: c.question.Index,
		QuestionText:  c.question.Text,
		Answer:        a.Content,
		Provenance:    a.Provenance.String(),
		Substituted:   a.Substituted,
		AutoSubmitted: c.pending.auto,
		ResponseSecs:  a.ResponseTime,
	})
}

// checkDeferred submits if the timer expired while the voice subsystem
// was busy and the controller is interactive again.
func (c *Controller) checkDeferred() tea.Cmd {
	if c.deferredSubmit && c.state.interactive() {
		return c.submit(true)
	}
	return nil
}

// restingState is where the controller returns when a recording ends
// without a transcript.
func (c *Controller) restingState() State {
	if c.buf.Provenance() == ProvenanceVoice && !c.buf.Empty() {
		return StateReviewReady
	}
	return StateQuestionActive
}

func (c *Controller) notAllowed(op string) error {
	var reason string
	switch c.state {
	case StateSubmitting:
		reason = "a submission is already in progress"
	case StateRecording:
		reason = "recording in progress"
	case StateProcessing:
		reason = "audio is still processing"
	case StateLoading:
		reason = "no question loaded"
	case StateCompleted, StateExpired:
		reason = "session has ended"
	default:
		reason = "not allowed while " + c.state.String()
	}
	return &PreconditionError{Op: op, Reason: reason}
}

// describe turns an error into a status line.
func describe(err error) string {
	var dev *DeviceError
	switch Classify(err) {
	case KindDevice:
		if errors.As(err, &dev) && dev.PermissionDenied() {
			return "Microphone access denied. Allow microphone access or type your answer."
		}
		return "Microphone unavailable. You can type your answer instead."
	case KindTimeout:
		return MsgTranscribeTimeout
	case KindNotActive:
		return MsgSessionExpired
	case KindNetwork:
		return fmt.Sprintf("Network problem: %v", err)
	}
	return capitalize(err.Error())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
