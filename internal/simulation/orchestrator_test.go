package simulation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchperfect/pitchperfect/internal/domain"
)

type fakeSession struct {
	mu       sync.Mutex
	events   SessionEvents
	started  int
	ended    int
	startErr error
	endErr   error
	cred     SessionCredential
}

func (s *fakeSession) Start(_ context.Context, cred SessionCredential, events SessionEvents) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.started++
	s.cred = cred
	s.events = events
	return nil
}

func (s *fakeSession) End(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended++
	return s.endErr
}

func (s *fakeSession) ID() string       { return "sess-1" }
func (s *fakeSession) IsSpeaking() bool { return false }

func (s *fakeSession) endCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

type fakePreparer struct {
	cred SessionCredential
	err  error
}

func (p *fakePreparer) Prepare(_ context.Context, _ uuid.UUID) (SessionCredential, error) {
	return p.cred, p.err
}

type fakeFinalizer struct {
	mu         sync.Mutex
	calls      int
	transcript []domain.Message
	duration   int
	feedback   *domain.Feedback
	normalized []domain.Message
	err        error
}

func (f *fakeFinalizer) Finalize(_ context.Context, _ uuid.UUID, transcript []domain.Message, duration int) (*domain.Feedback, []domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.transcript = transcript
	f.duration = duration
	return f.feedback, f.normalized, f.err
}

func (f *fakeFinalizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeMedia struct {
	acquireErr error
	acquired   int
	released   int
}

func (m *fakeMedia) Acquire(_ context.Context) error {
	m.acquired++
	return m.acquireErr
}

func (m *fakeMedia) Release() { m.released++ }

func newTestRun(t *testing.T) (*Orchestrator, *fakeSession, *fakeFinalizer) {
	t.Helper()
	session := &fakeSession{}
	finalizer := &fakeFinalizer{feedback: &domain.Feedback{Score: 80}}
	preparer := &fakePreparer{cred: SessionCredential{AgentID: "agent-1"}}
	o := New(context.Background(), uuid.New(), session, preparer, finalizer, nil)
	return o, session, finalizer
}

func connect(t *testing.T, o *Orchestrator, session *fakeSession) {
	t.Helper()
	require.NoError(t, o.Start(context.Background()))
	session.events.OnConnect("sess-1")
	require.Equal(t, StateConnected, o.State())
}

func TestStartTransitionsToConnected(t *testing.T) {
	o, session, _ := newTestRun(t)

	assert.Equal(t, StateWaiting, o.State())
	connect(t, o, session)
	assert.Equal(t, "sess-1", o.SessionID())
}

func TestStartOnlyLegalFromWaiting(t *testing.T) {
	o, session, _ := newTestRun(t)
	connect(t, o, session)

	err := o.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, session.started)
}

func TestStartPreparerFailureKeepsWaiting(t *testing.T) {
	session := &fakeSession{}
	preparer := &fakePreparer{err: fmt.Errorf("agent introuvable")}
	o := New(context.Background(), uuid.New(), session, preparer, &fakeFinalizer{}, nil)

	err := o.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateWaiting, o.State())
	assert.Equal(t, 0, session.started)

	// Retry is allowed after a failed start.
	preparer.err = nil
	preparer.cred = SessionCredential{AgentID: "agent-1"}
	require.NoError(t, o.Start(context.Background()))
}

func TestStartRejectsUnusableCredential(t *testing.T) {
	o := New(context.Background(), uuid.New(), &fakeSession{}, &fakePreparer{}, &fakeFinalizer{}, nil)

	err := o.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrSessionUnavailable)
	assert.Equal(t, StateWaiting, o.State())
}

func TestStartWrapsSessionFailure(t *testing.T) {
	session := &fakeSession{startErr: fmt.Errorf("dial tcp: refused")}
	preparer := &fakePreparer{cred: SessionCredential{SignedURL: "wss://example/session"}}
	o := New(context.Background(), uuid.New(), session, preparer, &fakeFinalizer{}, nil)

	err := o.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrSessionUnavailable)
	assert.Equal(t, StateWaiting, o.State())
}

func TestMessagesBufferedInArrivalOrder(t *testing.T) {
	o, session, _ := newTestRun(t)
	fixed := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	o.clock = func() time.Time { return fixed }
	connect(t, o, session)

	session.events.OnMessage(domain.SourceAI, "Allô ?")
	session.events.OnMessage(domain.SourceUser, "Bonjour, Thomas de TechCorp.")
	session.events.OnMessage(domain.SourceAI, "Je vous écoute.")

	transcript := o.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, domain.RoleAssistant, transcript[0].Role)
	assert.Equal(t, domain.RoleUser, transcript[1].Role)
	assert.Equal(t, "Je vous écoute.", transcript[2].Content)
	assert.Equal(t, fixed.UnixMilli(), transcript[0].Timestamp)
	assert.Equal(t, domain.SourceUser, transcript[1].Source)
}

func TestMessagesIgnoredBeforeConnect(t *testing.T) {
	o, session, _ := newTestRun(t)
	require.NoError(t, o.Start(context.Background()))

	session.events.OnMessage(domain.SourceAI, "trop tôt")
	assert.Empty(t, o.Transcript())
}

func TestEndFinalizesAndLandsInEnded(t *testing.T) {
	o, session, finalizer := newTestRun(t)
	connect(t, o, session)
	session.events.OnMessage(domain.SourceUser, "Bonjour")

	out, err := o.End(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateEnded, o.State())
	assert.Equal(t, 1, session.endCount())
	assert.Equal(t, 1, finalizer.callCount())
	require.NotNil(t, out.Feedback)
	assert.Equal(t, 80, out.Feedback.Score)
	require.Len(t, out.Transcript, 1)
}

func TestEndIsIdempotent(t *testing.T) {
	o, session, finalizer := newTestRun(t)
	connect(t, o, session)

	var wg sync.WaitGroup
	outcomes := make([]Outcome, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], _ = o.End(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, finalizer.callCount())
	for _, out := range outcomes {
		assert.Equal(t, outcomes[0].Feedback, out.Feedback)
	}
}

func TestEndKeepsLocalTranscriptOnFinalizeFailure(t *testing.T) {
	o, session, finalizer := newTestRun(t)
	finalizer.err = fmt.Errorf("persistence down")
	connect(t, o, session)
	session.events.OnMessage(domain.SourceUser, "Bonjour")

	out, err := o.End(context.Background())
	require.Error(t, err)
	assert.Nil(t, out.Feedback)
	require.Len(t, out.Transcript, 1)
	assert.Equal(t, StateEnded, o.State())
}

func TestEndAdoptsNormalizedTranscript(t *testing.T) {
	o, session, finalizer := newTestRun(t)
	normalized := []domain.Message{{Role: domain.RoleUser, Content: "normalisé"}}
	finalizer.normalized = normalized
	connect(t, o, session)
	session.events.OnMessage(domain.SourceUser, "brut")

	out, err := o.End(context.Background())
	require.NoError(t, err)
	assert.Equal(t, normalized, out.Transcript)
	assert.Equal(t, normalized, o.Transcript())
}

func TestEndSurvivesSessionEndFailure(t *testing.T) {
	o, session, finalizer := newTestRun(t)
	session.endErr = fmt.Errorf("already closed")
	connect(t, o, session)

	_, err := o.End(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, finalizer.callCount())
}

func TestDisconnectBelowThresholdAbortsWithoutAnalysis(t *testing.T) {
	o, session, finalizer := newTestRun(t)
	connect(t, o, session)
	session.events.OnMessage(domain.SourceUser, "Allô ?")

	session.events.OnDisconnect()

	assert.Equal(t, StateEnded, o.State())
	assert.Equal(t, 0, finalizer.callCount())

	// A later End returns the aborted outcome without finalizing.
	out, err := o.End(context.Background())
	require.NoError(t, err)
	assert.Nil(t, out.Feedback)
	require.Len(t, out.Transcript, 1)
	assert.Equal(t, 0, finalizer.callCount())
}

func TestDisconnectAtThresholdFinalizes(t *testing.T) {
	o, session, finalizer := newTestRun(t)
	connect(t, o, session)

	o.mu.Lock()
	o.elapsed = MinBillableSeconds
	o.mu.Unlock()

	session.events.OnDisconnect()

	require.Eventually(t, func() bool { return o.State() == StateEnded }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, finalizer.callCount())
	assert.Equal(t, MinBillableSeconds, finalizer.duration)
}

func TestErrorBeforeConnectDropsBackToWaiting(t *testing.T) {
	o, session, _ := newTestRun(t)
	require.NoError(t, o.Start(context.Background()))

	session.events.OnError(fmt.Errorf("handshake failed"))
	assert.Equal(t, StateWaiting, o.State())
}

func TestErrorWhileConnectedIsNonFatal(t *testing.T) {
	o, session, _ := newTestRun(t)
	connect(t, o, session)

	session.events.OnError(fmt.Errorf("transient"))
	assert.Equal(t, StateConnected, o.State())
}

func TestEndedSurvivesLateErrorAfterAbortedDisconnect(t *testing.T) {
	o, session, finalizer := newTestRun(t)
	connect(t, o, session)

	session.events.OnDisconnect()
	require.Equal(t, StateEnded, o.State())

	session.events.OnError(fmt.Errorf("use of closed network connection"))

	assert.Equal(t, StateEnded, o.State())
	assert.Equal(t, 0, finalizer.callCount())
}

func TestEndedSurvivesLateErrorAfterEnd(t *testing.T) {
	o, session, _ := newTestRun(t)
	connect(t, o, session)

	_, err := o.End(context.Background())
	require.NoError(t, err)

	session.events.OnError(fmt.Errorf("read on closed socket"))
	assert.Equal(t, StateEnded, o.State())
}

type gatedPreparer struct {
	cred    SessionCredential
	entered chan struct{}
	release chan struct{}
}

func (p *gatedPreparer) Prepare(_ context.Context, _ uuid.UUID) (SessionCredential, error) {
	p.entered <- struct{}{}
	<-p.release
	return p.cred, nil
}

func TestConcurrentStartOpensSingleSession(t *testing.T) {
	session := &fakeSession{}
	preparer := &gatedPreparer{
		cred:    SessionCredential{AgentID: "agent-1"},
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	o := New(context.Background(), uuid.New(), session, preparer, &fakeFinalizer{}, nil)

	firstErr := make(chan error, 1)
	go func() { firstErr <- o.Start(context.Background()) }()
	<-preparer.entered

	// The second caller is rejected while the first attempt is in flight.
	require.Error(t, o.Start(context.Background()))

	close(preparer.release)
	require.NoError(t, <-firstErr)
	assert.Equal(t, 1, session.started)
}

func TestStartRetryAfterPreConnectError(t *testing.T) {
	o, session, _ := newTestRun(t)
	require.NoError(t, o.Start(context.Background()))

	session.events.OnError(fmt.Errorf("handshake failed"))
	session.events.OnDisconnect()

	require.NoError(t, o.Start(context.Background()))
	assert.Equal(t, 2, session.started)
}

func TestCloseReleasesSessionAndMedia(t *testing.T) {
	session := &fakeSession{}
	media := &fakeMedia{}
	preparer := &fakePreparer{cred: SessionCredential{AgentID: "agent-1"}}
	o := New(context.Background(), uuid.New(), session, preparer, &fakeFinalizer{}, media)

	assert.Equal(t, 1, media.acquired)

	require.NoError(t, o.Start(context.Background()))
	session.events.OnConnect("sess-1")
	o.Close(context.Background())

	assert.Equal(t, 1, session.endCount())
	assert.Equal(t, 1, media.released)
	assert.Equal(t, StateEnded, o.State())
}

func TestMediaAcquisitionFailureIsNonFatal(t *testing.T) {
	session := &fakeSession{}
	media := &fakeMedia{acquireErr: fmt.Errorf("permission denied")}
	preparer := &fakePreparer{cred: SessionCredential{AgentID: "agent-1"}}
	o := New(context.Background(), uuid.New(), session, preparer, &fakeFinalizer{}, media)

	require.NoError(t, o.Start(context.Background()))
	assert.Equal(t, 1, session.started)
}

func TestCredentialUsable(t *testing.T) {
	assert.False(t, SessionCredential{}.Usable())
	assert.True(t, SessionCredential{SignedURL: "wss://x"}.Usable())
	assert.True(t, SessionCredential{AgentID: "a"}.Usable())
}
