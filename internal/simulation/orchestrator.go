// Package simulation drives a single voice simulation from waiting through
// connected and analyzing to ended, coordinating the vendor session, the
// transcript buffer and the duration timer.
package simulation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pitchperfect/pitchperfect/internal/domain"
	debuglog "github.com/pitchperfect/pitchperfect/internal/log"
)

// State of one simulation run.
type State string

const (
	StateWaiting   State = "waiting"
	StateConnected State = "connected"
	StateAnalyzing State = "analyzing"
	StateEnded     State = "ended"
)

// MinBillableSeconds is the threshold below which a vendor-initiated
// disconnect counts as an aborted attempt: no finalization, no feedback.
const MinBillableSeconds = 10

// SessionCredential is either a short-lived signed URL or a public agent id;
// both open a session.
type SessionCredential struct {
	SignedURL string
	AgentID   string
}

// Usable reports whether the credential can open a session at all.
func (c SessionCredential) Usable() bool {
	return c.SignedURL != "" || c.AgentID != ""
}

// SessionEvents are the notifications a session provider pushes at the
// orchestrator. Message arrival is push-only and unbounded.
type SessionEvents struct {
	OnConnect    func(sessionID string)
	OnDisconnect func()
	OnMessage    func(source domain.MessageSource, text string)
	OnError      func(err error)
}

// SessionProvider is the realtime voice session capability. Implementations
// must deliver messages in vendor order and tolerate End being called more
// than once.
type SessionProvider interface {
	Start(ctx context.Context, cred SessionCredential, events SessionEvents) error
	End(ctx context.Context) error
	ID() string
	IsSpeaking() bool
}

// Preparer provisions the vendor agent for a conversation and hands back a
// session credential (the start + get-signed-url server round trips).
type Preparer interface {
	Prepare(ctx context.Context, conversationID uuid.UUID) (SessionCredential, error)
}

// Finalizer submits the transcript and duration for analysis and returns the
// synthesized feedback plus the server-normalized transcript.
type Finalizer interface {
	Finalize(ctx context.Context, conversationID uuid.UUID, transcript []domain.Message, duration int) (*domain.Feedback, []domain.Message, error)
}

// MediaSource is the local camera/microphone preview. Acquisition is a
// best-effort side channel independent of the voice path.
type MediaSource interface {
	Acquire(ctx context.Context) error
	Release()
}

// Outcome is the terminal result of a run.
type Outcome struct {
	Feedback   *domain.Feedback
	Transcript []domain.Message
	Err        error
}

// Orchestrator is the per-run state machine. All callbacks and public
// methods are safe for concurrent use.
type Orchestrator struct {
	conversationID uuid.UUID
	session        SessionProvider
	preparer       Preparer
	finalizer      Finalizer
	media          MediaSource

	clock func() time.Time

	mu         sync.Mutex
	state      State
	starting   bool
	transcript []domain.Message
	elapsed    int
	timerStop  chan struct{}
	sessionID  string

	finalizing bool
	done       chan struct{}
	outcome    Outcome
}

// New returns an orchestrator in the waiting state. Local media is acquired
// eagerly; failure is swallowed, the voice path does not depend on it.
func New(ctx context.Context, conversationID uuid.UUID, session SessionProvider, preparer Preparer, finalizer Finalizer, media MediaSource) *Orchestrator {
	o := &Orchestrator{
		conversationID: conversationID,
		session:        session,
		preparer:       preparer,
		finalizer:      finalizer,
		media:          media,
		clock:          time.Now,
		state:          StateWaiting,
		done:           make(chan struct{}),
	}
	if media != nil {
		if err := media.Acquire(ctx); err != nil {
			debuglog.Debug(debuglog.Basic, "media acquisition failed (non-fatal): %v\n", err)
		}
	}
	return o
}

// State returns the current machine state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Elapsed returns the monotonic local tick count in seconds.
func (o *Orchestrator) Elapsed() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.elapsed
}

// Transcript returns a copy of the buffered messages in arrival order.
func (o *Orchestrator) Transcript() []domain.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]domain.Message, len(o.transcript))
	copy(out, o.transcript)
	return out
}

// SessionID returns the vendor session id once connected.
func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionID
}

// Start provisions the vendor agent and opens the session. Only legal from
// waiting; on any failure the machine remains in waiting so the user can
// retry.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.state != StateWaiting {
		o.mu.Unlock()
		return errors.Errorf("cannot start from state %q", o.state)
	}
	if o.starting {
		o.mu.Unlock()
		return errors.New("start already in progress")
	}
	// The latch holds across the whole attempt so concurrent Start calls
	// cannot both open a session; it is released by handleConnect, by a
	// pre-connection error or disconnect, and by the failure paths below.
	o.starting = true
	o.mu.Unlock()

	cred, err := o.preparer.Prepare(ctx, o.conversationID)
	if err != nil {
		o.clearStarting()
		return err
	}
	if !cred.Usable() {
		o.clearStarting()
		return domain.ErrSessionUnavailable
	}

	events := SessionEvents{
		OnConnect:    o.handleConnect,
		OnDisconnect: o.handleDisconnect,
		OnMessage:    o.handleMessage,
		OnError:      o.handleError,
	}
	if err := o.session.Start(ctx, cred, events); err != nil {
		o.clearStarting()
		return errors.Wrap(domain.ErrSessionUnavailable, err.Error())
	}
	return nil
}

func (o *Orchestrator) clearStarting() {
	o.mu.Lock()
	o.starting = false
	o.mu.Unlock()
}

func (o *Orchestrator) handleConnect(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateWaiting {
		return
	}
	o.state = StateConnected
	o.starting = false
	o.sessionID = sessionID
	o.elapsed = 0
	o.timerStop = make(chan struct{})
	go o.runTimer(o.timerStop)
	debuglog.Debug(debuglog.Detailed, "session %s connected\n", sessionID)
}

func (o *Orchestrator) runTimer(stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			o.mu.Lock()
			if o.state == StateConnected {
				o.elapsed++
			}
			o.mu.Unlock()
		case <-stop:
			return
		}
	}
}

// handleMessage appends inbound messages in arrival order with a locally
// assigned timestamp. The buffer is never pruned.
func (o *Orchestrator) handleMessage(source domain.MessageSource, text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateConnected {
		return
	}
	role := domain.RoleUser
	if source == domain.SourceAI {
		role = domain.RoleAssistant
	}
	o.transcript = append(o.transcript, domain.Message{
		Role:      role,
		Content:   text,
		Timestamp: o.clock().UnixMilli(),
		Source:    source,
	})
}

// handleDisconnect reacts to a vendor-initiated hangup. At or above the
// billable threshold it behaves as if the user hung up; below it the run is
// aborted with no analysis.
func (o *Orchestrator) handleDisconnect() {
	o.mu.Lock()
	if o.state != StateConnected {
		o.starting = false
		o.mu.Unlock()
		return
	}
	o.stopTimerLocked()
	billable := o.elapsed >= MinBillableSeconds
	if !billable {
		o.state = StateEnded
		o.finalizing = true
		o.outcome = Outcome{Transcript: o.snapshotLocked()}
		close(o.done)
		o.mu.Unlock()
		debuglog.Debug(debuglog.Basic, "disconnect below threshold (%ds), run aborted\n", o.elapsed)
		return
	}
	o.mu.Unlock()
	go func() {
		_, _ = o.End(context.Background())
	}()
}

// handleError reacts to session failures. A failure before the machine
// connects releases the start latch so the user can retry from waiting; any
// later error never changes state, ended stays terminal.
func (o *Orchestrator) handleError(err error) {
	debuglog.Debug(debuglog.Basic, "session error: %v\n", err)
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateWaiting {
		o.starting = false
	}
}

// End stops the timer, terminates the session, submits the transcript for
// analysis and lands in ended. It is idempotent: concurrent or repeated
// calls wait for and return the first invocation's outcome, so a run never
// submits twice.
func (o *Orchestrator) End(ctx context.Context) (Outcome, error) {
	o.mu.Lock()
	if o.finalizing {
		o.mu.Unlock()
		<-o.done
		o.mu.Lock()
		out := o.outcome
		o.mu.Unlock()
		return out, out.Err
	}
	o.finalizing = true
	o.stopTimerLocked()
	duration := o.elapsed
	transcript := o.snapshotLocked()
	o.state = StateAnalyzing
	o.mu.Unlock()

	if err := o.session.End(ctx); err != nil {
		debuglog.Debug(debuglog.Basic, "session end failed: %v\n", err)
	}

	feedback, normalized, err := o.finalizer.Finalize(ctx, o.conversationID, transcript, duration)

	o.mu.Lock()
	o.state = StateEnded
	if err != nil {
		o.outcome = Outcome{Transcript: transcript, Err: err}
	} else {
		if normalized == nil {
			normalized = transcript
		}
		o.transcript = normalized
		o.outcome = Outcome{Feedback: feedback, Transcript: normalized}
	}
	out := o.outcome
	close(o.done)
	o.mu.Unlock()

	return out, out.Err
}

// Close releases the session and media regardless of state. Safe to call
// from any state, including after End.
func (o *Orchestrator) Close(ctx context.Context) {
	o.mu.Lock()
	o.stopTimerLocked()
	wasConnected := o.state == StateConnected
	if wasConnected {
		o.state = StateEnded
	}
	o.mu.Unlock()

	if err := o.session.End(ctx); err != nil {
		debuglog.Debug(debuglog.Detailed, "session release on close: %v\n", err)
	}
	if o.media != nil {
		o.media.Release()
	}
}

func (o *Orchestrator) stopTimerLocked() {
	if o.timerStop != nil {
		close(o.timerStop)
		o.timerStop = nil
	}
}

func (o *Orchestrator) snapshotLocked() []domain.Message {
	out := make([]domain.Message, len(o.transcript))
	copy(out, o.transcript)
	return out
}
