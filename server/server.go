// Package server is the web surface of the assistant: login, a one-shot chat
// endpoint, and a WebSocket loop for interactive sessions.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/omisdami/bankassist/assistant"
	"github.com/omisdami/bankassist/config"
)

// TurnSubmitter feeds one utterance to the conversation worker and waits for
// the reply, bounded by the timeout.
type TurnSubmitter interface {
	Submit(input string, timeout time.Duration) (string, assistant.Action, error)
}

// ClientMessage is one frame from the browser.
type ClientMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// ServerMessage is one frame to the browser.
type ServerMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// Server serves the chat surface over HTTP and WebSocket.
type Server struct {
	cfg      config.ServerConfig
	runner   TurnSubmitter
	verify   func(userID, password string) (bool, error)
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// New builds a server. verify checks credentials at login time; the runner
// handles every chat turn.
func New(cfg config.ServerConfig, runner TurnSubmitter, verify func(userID, password string) (bool, error), logger zerolog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		runner: runner,
		verify: verify,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in development
			},
		},
		log: logger,
	}
}

// Handler returns the routing for all endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", s.handleLogin)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// Run starts the server on the configured address.
func (s *Server) Run() error {
	s.log.Info().Str("addr", s.cfg.Addr).Msg("starting assistant server")
	return http.ListenAndServe(s.cfg.Addr, s.Handler())
}

func (s *Server) turnTimeout() time.Duration {
	return time.Duration(s.cfg.TurnTimeoutSecs) * time.Second
}

type loginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ok, err := s.verify(req.UserID, req.Password)
	if err != nil {
		s.log.Error().Err(err).Str("user", req.UserID).Msg("authentication check failed")
		http.Error(w, "authentication unavailable", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := s.issueToken(req.UserID)
	if err != nil {
		s.log.Error().Err(err).Msg("issuing token failed")
		http.Error(w, "authentication unavailable", http.StatusInternalServerError)
		return
	}

	s.log.Info().Str("user", req.UserID).Msg("login succeeded")
	writeJSON(w, loginResponse{Token: token})
}

func (s *Server) issueToken(userID string) (string, error) {
	ttl := time.Duration(s.cfg.TokenTTLMinutes) * time.Minute
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// authorize validates the bearer token and returns the subject user id.
func (s *Server) authorize(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		// WebSocket clients can't always set headers; accept ?token= too.
		raw = r.URL.Query().Get("token")
	}
	if raw == "" {
		return "", errors.New("missing token")
	}

	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errors.New("invalid claims")
	}
	return claims.Subject, nil
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
	Done  bool   `json:"done,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, err := s.authorize(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.log.Debug().Str("user", userID).Str("message", truncate(req.Message, 50)).Msg("chat turn")

	reply, action, err := s.runner.Submit(req.Message, s.turnTimeout())
	if err != nil {
		s.log.Warn().Err(err).Msg("turn did not complete in time")
		writeJSON(w, chatResponse{Reply: "I'm sorry, that took too long to process. Please try again."})
		return
	}

	writeJSON(w, chatResponse{Reply: reply, Done: action == assistant.ActionExit})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authorize(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	s.log.Info().Str("user", userID).Msg("websocket connected")

	for {
		_, msgBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warn().Err(err).Msg("websocket error")
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			s.send(conn, ServerMessage{Type: "error", Content: "Invalid message format"})
			continue
		}
		if msg.Type != "message" {
			s.send(conn, ServerMessage{Type: "error", Content: fmt.Sprintf("Unknown message type: %s", msg.Type)})
			continue
		}

		reply, action, err := s.runner.Submit(msg.Content, s.turnTimeout())
		if err != nil {
			s.send(conn, ServerMessage{Type: "error", Content: "That took too long to process. Please try again."})
			continue
		}

		s.send(conn, ServerMessage{Type: "text", Content: reply})
		if action == assistant.ActionExit {
			s.send(conn, ServerMessage{Type: "complete"})
			return
		}
	}
}

func (s *Server) send(conn *websocket.Conn, msg ServerMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		s.log.Warn().Err(err).Msg("failed to send message")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
