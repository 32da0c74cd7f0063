package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"crimewatch/pkg/auth"
	"crimewatch/pkg/bot"
	"crimewatch/pkg/chat"
	"crimewatch/pkg/logger"
	"crimewatch/pkg/models"
	"crimewatch/pkg/store"
	"crimewatch/pkg/telemetry"
	"crimewatch/pkg/utils"
	"crimewatch/pkg/validation"
)

// DefaultHistoryLimit caps how many recent messages a conversation read or
// stream snapshot replays.
const DefaultHistoryLimit = 50

// ChatDeps wires the conversation endpoints.
type ChatDeps struct {
	Responder       *bot.Responder
	Typist          *chat.Typist
	HistoryLimit    int
	MaxMessageBytes int64
}

func (d ChatDeps) historyLimit() int {
	if d.HistoryLimit <= 0 {
		return DefaultHistoryLimit
	}
	return d.HistoryLimit
}

// RegisterChat registers the conversation endpoints on the router.
func RegisterChat(r *mux.Router, deps ChatDeps) {
	h := &chatHandlers{deps: deps}
	r.HandleFunc("/chat/messages", h.postMessage).Methods(http.MethodPost)
	r.Handle("/chat/messages", auth.RequireSession(http.HandlerFunc(h.listMessages))).Methods(http.MethodGet)
	r.Handle("/chat/stream", auth.RequireSession(http.HandlerFunc(h.stream))).Methods(http.MethodGet)
	r.HandleFunc("/chat/quick-actions", h.quickActions).Methods(http.MethodGet)
	r.HandleFunc("/chat/quick-actions", h.postQuickAction).Methods(http.MethodPost)
}

type chatHandlers struct {
	deps ChatDeps
}

type postMessageResponse struct {
	Message *models.Message `json:"message,omitempty"`
	// Reply is filled inline for anonymous callers; authenticated callers
	// receive the bot reply on their stream after the typing delay.
	Reply   string `json:"reply,omitempty"`
	Typing  bool   `json:"typing"`
	DelayMs int64  `json:"delayMs,omitempty"`
}

// postMessage accepts a user message. With a session the message is
// appended to the conversation log and the bot reply is scheduled behind
// the typing delay; without one the reply comes back inline and nothing
// is persisted.
func (h *chatHandlers) postMessage(w http.ResponseWriter, r *http.Request) {
	if h.deps.MaxMessageBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.deps.MaxMessageBytes)
	}
	var form validation.MessageForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.Check(form); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, ok := h.deps.Responder.Respond(form.Text)
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "text is required")
		return
	}
	telemetry.IntentsTotal.WithLabelValues(string(h.deps.Responder.Classify(form.Text))).Inc()

	id, authed := auth.SessionFromContext(r.Context())
	if !authed {
		telemetry.MessagesTotal.WithLabelValues(string(models.SenderUser)).Inc()
		_ = utils.JSONWrite(w, http.StatusOK, postMessageResponse{Reply: reply, Typing: false})
		return
	}

	stored, err := store.AppendMessage(id.ID, models.Message{Text: form.Text, Sender: models.SenderUser})
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	telemetry.MessagesTotal.WithLabelValues(string(models.SenderUser)).Inc()

	h.scheduleBotReply(id.ID, reply)

	_ = utils.JSONWrite(w, http.StatusAccepted, postMessageResponse{
		Message: &stored,
		Typing:  true,
		DelayMs: h.deps.Typist.Delay().Milliseconds(),
	})
}

// scheduleBotReply queues the bot reply behind the typing delay and keeps
// the typing indicator in step with the pending timer. The reply text is
// fixed here; edits to the conversation between now and delivery do not
// change what the bot says.
func (h *chatHandlers) scheduleBotReply(userID, reply string) {
	store.PublishTyping(userID, true)
	h.deps.Typist.Schedule(userID, reply, func(text string) {
		if _, err := store.AppendMessage(userID, models.Message{Text: text, Sender: models.SenderBot}); err != nil {
			logger.Error("bot_reply_append_failed", "user", userID, "error", err)
		} else {
			telemetry.MessagesTotal.WithLabelValues(string(models.SenderBot)).Inc()
		}
		store.PublishTyping(userID, false)
	})
}

// listMessages returns the tail of the caller's conversation, ascending.
func (h *chatHandlers) listMessages(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.SessionFromContext(r.Context())
	limit := h.deps.historyLimit()
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n < limit {
			limit = n
		}
	}
	msgs, err := store.ListMessages(id.ID, limit)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	logger.Info("messages_list", "user", id.ID, "count", len(msgs))
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Messages []models.Message `json:"messages"`
	}{Messages: msgs})
}

// stream is the live conversation subscription: a snapshot of the recent
// tail followed by every append, as server-sent events. Teardown releases
// the subscription and cancels any bot reply still pending.
func (h *chatHandlers) stream(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.SessionFromContext(r.Context())

	msgs, err := store.ListMessages(id.ID, h.deps.historyLimit())
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	events, cancel := store.Events().Subscribe(store.ChatTopic(id.ID))
	defer cancel()
	defer func() {
		if h.deps.Typist.Cancel(id.ID) {
			store.PublishTyping(id.ID, false)
		}
	}()

	telemetry.ActiveStreams.WithLabelValues("chat").Inc()
	defer telemetry.ActiveStreams.WithLabelValues("chat").Dec()

	sse, err := startSSE(w)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	logger.Info("chat_stream_opened", "user", id.ID, "snapshot", len(msgs))
	for _, m := range msgs {
		if err := sse.send("message", mustJSON(m)); err != nil {
			return
		}
	}
	sse.pump(r.Context(), events)
	logger.Info("chat_stream_closed", "user", id.ID)
}

// quickActions lists the fixed shortcut labels.
func (h *chatHandlers) quickActions(w http.ResponseWriter, r *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Labels []string `json:"labels"`
	}{Labels: bot.QuickReplies()})
}

type quickActionRequest struct {
	Label string `json:"label"`
}

type quickActionResponse struct {
	Action string `json:"action"`
	Target string `json:"target,omitempty"`
	View   string `json:"view,omitempty"`
	Text   string `json:"text,omitempty"`
	Typing bool   `json:"typing,omitempty"`
}

// postQuickAction resolves a quick-action label. Navigation outcomes pass
// through the same gating as /navigate; canned replies land in the
// conversation immediately, with no typing delay.
func (h *chatHandlers) postQuickAction(w http.ResponseWriter, r *http.Request) {
	var req quickActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	id, authed := auth.SessionFromContext(r.Context())

	action := bot.Dispatch(req.Label)
	switch action.Kind {
	case bot.ActionNavigate:
		state := resolveNavigation(string(action.Target), authed)
		_ = utils.JSONWrite(w, http.StatusOK, quickActionResponse{
			Action: string(action.Kind),
			Target: string(action.Target),
			View:   string(state),
		})
	case bot.ActionSendCanned:
		if authed {
			if err := appendExchange(id.ID, req.Label, action.Text); err != nil {
				utils.JSONError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		_ = utils.JSONWrite(w, http.StatusOK, quickActionResponse{
			Action: string(action.Kind),
			Text:   action.Text,
		})
	default: // bot.ActionSendToResponder
		reply, ok := h.deps.Responder.Respond(action.Text)
		if !ok {
			utils.JSONError(w, http.StatusBadRequest, "label is required")
			return
		}
		telemetry.IntentsTotal.WithLabelValues(string(h.deps.Responder.Classify(action.Text))).Inc()
		if authed {
			if _, err := store.AppendMessage(id.ID, models.Message{Text: action.Text, Sender: models.SenderUser}); err != nil {
				utils.JSONError(w, http.StatusInternalServerError, err.Error())
				return
			}
			telemetry.MessagesTotal.WithLabelValues(string(models.SenderUser)).Inc()
			h.scheduleBotReply(id.ID, reply)
			_ = utils.JSONWrite(w, http.StatusAccepted, quickActionResponse{
				Action: string(action.Kind),
				Typing: true,
			})
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, quickActionResponse{
			Action: string(action.Kind),
			Text:   reply,
		})
	}
}

// appendExchange stores a user message and its immediate bot reply.
func appendExchange(userID, userText, botText string) error {
	if _, err := store.AppendMessage(userID, models.Message{Text: userText, Sender: models.SenderUser}); err != nil {
		return err
	}
	telemetry.MessagesTotal.WithLabelValues(string(models.SenderUser)).Inc()
	if _, err := store.AppendMessage(userID, models.Message{Text: botText, Sender: models.SenderBot}); err != nil {
		return err
	}
	telemetry.MessagesTotal.WithLabelValues(string(models.SenderBot)).Inc()
	return nil
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
