package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"peer-challenge-service/internal/app"
	"peer-challenge-service/internal/domain"
)

type WSHandler struct {
	service  *app.ChallengeService
	log      *zap.SugaredLogger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.ChallengeService, log *zap.SugaredLogger) *WSHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type respondPayload struct {
	Accept bool `json:"accept"`
}

type submitPayload struct {
	Answers   []domain.Answer `json:"answers"`
	TimeTaken int             `json:"timeTaken"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// challengeView is the participant-facing snapshot. Frozen questions are
// deliberately omitted so answer keys never cross the wire here.
type challengeView struct {
	ChallengeCode string            `json:"challengeCode"`
	TestName      string            `json:"testName"`
	Status        string            `json:"status"`
	NumQuestions  int               `json:"numQuestions"`
	ExpiresAt     int64             `json:"expiresAt"`
	StartedAt     int64             `json:"startedAt,omitempty"`
	Participants  []participantView `json:"participants"`
}

// questionView strips the answer key and explanation from a frozen
// question before it reaches a participant taking the test.
type questionView struct {
	ID       string   `json:"id"`
	Text     string   `json:"text,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Options  []string `json:"options"`
	Marks    int      `json:"marks"`
}

func questionViews(questions []domain.TestQuestion) []questionView {
	views := make([]questionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, questionView{
			ID:       q.ID,
			Text:     q.Text,
			ImageURL: q.ImageURL,
			Options:  q.Options,
			Marks:    q.Marks,
		})
	}
	return views
}

type participantView struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Score     *int   `json:"score,omitempty"`
	TimeTaken *int   `json:"timeTaken,omitempty"`
}

func viewOf(c domain.Challenge) challengeView {
	view := challengeView{
		ChallengeCode: c.Code,
		TestName:      c.TestName(),
		Status:        string(c.Status),
		NumQuestions:  c.Config.NumQuestions,
		ExpiresAt:     c.ExpiresAt,
		StartedAt:     c.StartedAt,
	}
	for _, p := range c.Participants {
		view.Participants = append(view.Participants, participantView{
			UserID:    p.UserID,
			Name:      p.Name,
			Status:    string(p.Status),
			Score:     p.Score,
			TimeTaken: p.TimeTaken,
		})
	}
	return view
}

// ServeWS attaches a participant to a challenge: it pushes the current
// snapshot, streams lifecycle updates, and accepts respond/start/submit
// actions inline.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("challengeCode")
	userID := r.URL.Query().Get("userId")
	if code == "" || userID == "" {
		http.Error(w, "missing challengeCode or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	challenge, err := h.service.GetChallenge(r.Context(), code)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(r.Context(), code)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debugw("ws write failed", "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case event, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "challenge", Payload: viewOf(event.Challenge)}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "challenge", Payload: viewOf(challenge)}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "respond":
			var payload respondPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid respond payload"}}
				continue
			}
			updated, err := h.service.Respond(r.Context(), code, userID, payload.Accept)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "challenge", Payload: viewOf(updated)}
		case "start":
			updated, err := h.service.Start(r.Context(), code, userID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "challenge", Payload: viewOf(updated)}
		case "submit":
			var payload submitPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid submit payload"}}
				continue
			}
			submission, err := h.service.Submit(r.Context(), code, userID, payload.Answers, payload.TimeTaken)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "submitResult", Payload: submission}
		case "questions":
			current, err := h.service.GetChallenge(r.Context(), code)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			if current.Status != domain.ChallengeStarted {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "challenge has not started"}}
				continue
			}
			if _, ok := current.Participants[userID]; !ok {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "not a participant"}}
				continue
			}
			send <- outboundMessage[any]{Type: "questions", Payload: questionViews(current.Questions)}
		case "results":
			results, err := h.service.Results(r.Context(), code)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "results", Payload: results}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
