package voice

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/pitchperfect/pitchperfect/internal/domain"
	debuglog "github.com/pitchperfect/pitchperfect/internal/log"
	"github.com/pitchperfect/pitchperfect/internal/simulation"
)

const conversationWSPath = "/v1/convai/conversation"

// Session is the websocket-backed realtime session provider. One value
// serves one session; create a new one per simulation run.
type Session struct {
	baseURL string

	mu       sync.Mutex
	conn     *websocket.Conn
	id       string
	speaking bool
	events   simulation.SessionEvents
	closed   bool
}

// NewSession returns an unconnected session provider.
func NewSession() *Session {
	return &Session{baseURL: defaultBaseURL}
}

type wsEvent struct {
	Type string `json:"type"`

	InitiationMetadata *struct {
		ConversationID string `json:"conversation_id"`
	} `json:"conversation_initiation_metadata_event,omitempty"`

	UserTranscription *struct {
		UserTranscript string `json:"user_transcript"`
	} `json:"user_transcription_event,omitempty"`

	AgentResponse *struct {
		AgentResponse string `json:"agent_response"`
	} `json:"agent_response_event,omitempty"`

	Ping *struct {
		EventID int64 `json:"event_id"`
	} `json:"ping_event,omitempty"`
}

// Start dials the vendor: the signed URL when present, otherwise the public
// endpoint keyed by agent id. Events are dispatched from a single read loop,
// preserving vendor delivery order.
func (s *Session) Start(ctx context.Context, cred simulation.SessionCredential, events simulation.SessionEvents) error {
	endpoint := cred.SignedURL
	if endpoint == "" {
		wsBase := "wss" + s.baseURL[len("https"):]
		endpoint = wsBase + conversationWSPath + "?agent_id=" + url.QueryEscape(cred.AgentID)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "dialing voice session")
	}

	s.mu.Lock()
	s.conn = conn
	s.events = events
	s.closed = false
	s.mu.Unlock()

	go s.readLoop(conn)
	return nil
}

func (s *Session) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			deliberate := s.closed
			events := s.events
			s.mu.Unlock()
			if !deliberate && events.OnError != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				events.OnError(err)
			}
			if events.OnDisconnect != nil {
				events.OnDisconnect()
			}
			return
		}

		var ev wsEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			debuglog.Debug(debuglog.Wire, "unparseable session event: %s\n", data)
			continue
		}
		s.dispatch(conn, &ev)
	}
}

func (s *Session) dispatch(conn *websocket.Conn, ev *wsEvent) {
	s.mu.Lock()
	events := s.events
	s.mu.Unlock()

	switch ev.Type {
	case "conversation_initiation_metadata":
		if ev.InitiationMetadata != nil {
			s.mu.Lock()
			s.id = ev.InitiationMetadata.ConversationID
			s.mu.Unlock()
		}
		if events.OnConnect != nil {
			events.OnConnect(s.ID())
		}
	case "user_transcript":
		if ev.UserTranscription != nil && events.OnMessage != nil {
			events.OnMessage(domain.SourceUser, ev.UserTranscription.UserTranscript)
		}
	case "agent_response":
		s.setSpeaking(true)
		if ev.AgentResponse != nil && events.OnMessage != nil {
			events.OnMessage(domain.SourceAI, ev.AgentResponse.AgentResponse)
		}
	case "interruption":
		s.setSpeaking(false)
	case "ping":
		if ev.Ping != nil {
			pong := map[string]any{"type": "pong", "event_id": ev.Ping.EventID}
			if err := conn.WriteJSON(pong); err != nil {
				debuglog.Debug(debuglog.Wire, "pong write failed: %v\n", err)
			}
		}
	case "audio":
		s.setSpeaking(true)
	default:
		debuglog.Debug(debuglog.Wire, "ignoring session event type %q\n", ev.Type)
	}
}

func (s *Session) setSpeaking(v bool) {
	s.mu.Lock()
	s.speaking = v
	s.mu.Unlock()
}

// End closes the session. Safe to call repeatedly and before Start.
func (s *Session) End(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || s.closed {
		return nil
	}
	s.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := s.conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
		debuglog.Debug(debuglog.Wire, "close message write failed: %v\n", err)
	}
	return s.conn.Close()
}

// ID returns the vendor-assigned session id, empty until connected.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// IsSpeaking reports whether the agent is currently producing audio. UI
// feedback only.
func (s *Session) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}
