package adsession

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/adearn/adearn-api/internal/domain/account"
	"github.com/adearn/adearn-api/internal/domain/ledger"
	"github.com/adearn/adearn-api/internal/middleware"
	"github.com/adearn/adearn-api/internal/pkg/response"
	"github.com/adearn/adearn-api/internal/pkg/validator"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	EventSessionState = "session_state"
)

// WSEvent is a frame sent over the session stream.
type WSEvent struct {
	Type string `json:"type"`
	Data View   `json:"data"`
}

// TickRequest for POST /ads/session/tick. Elapsed defaults to one second.
type TickRequest struct {
	Elapsed *int `json:"elapsed" validate:"omitempty,gte=0,lte=3600"`
}

// ClaimResponse for POST /ads/session/claim
type ClaimResponse struct {
	Account     account.AccountResponse `json:"account"`
	Transaction ledger.Transaction      `json:"transaction"`
	Session     View                    `json:"session"`
}

type Handler struct {
	manager  *Manager
	accounts *account.Service
	upgrader websocket.Upgrader
}

func NewHandler(manager *Manager, accounts *account.Service, allowedOrigins []string) *Handler {
	return &Handler{
		manager:  manager,
		accounts: accounts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(allowedOrigins) == 0 || origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}
				log.Warn().Str("origin", origin).Msg("WebSocket origin rejected")
				return false
			},
		},
	}
}

// Current handles GET /ads/session
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.manager.Current(middleware.GetAccountID(r.Context())))
}

// Start handles POST /ads/{id}/start
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	ns := middleware.GetAccountID(r.Context())
	view, err := h.manager.Start(r.Context(), ns, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, view)
}

// Tick handles POST /ads/session/tick
func (h *Handler) Tick(w http.ResponseWriter, r *http.Request) {
	var req TickRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}
	elapsed := 1
	if req.Elapsed != nil {
		elapsed = *req.Elapsed
	}

	view, err := h.manager.Tick(middleware.GetAccountID(r.Context()), elapsed)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, view)
}

// Claim handles POST /ads/session/claim
func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	res, err := h.manager.Claim(r.Context(), middleware.GetAccountID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, ClaimResponse{
		Account:     account.NewAccountResponse(res.Snapshot.Account, h.accounts.Catalogue()),
		Transaction: res.Transaction,
		Session:     res.View,
	})
}

// WebSocket handles WS /ads/session/ws
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	ns := middleware.GetAccountID(r.Context())
	if ns == "" {
		response.Unauthorized(w, "Authentication required")
		return
	}
	if _, err := h.accounts.Load(r.Context(), ns); err != nil {
		account.WriteError(w, err)
		return
	}

	views, cancel, err := h.manager.Subscribe(ns)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	go h.wsReader(conn, cancel, ns)
	go h.wsWriter(conn, views)
}

// wsReader only services control frames; the stream is server to client.
func (h *Handler) wsReader(conn *websocket.Conn, cancel func(), ns string) {
	defer func() {
		cancel()
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("account_id", ns).Msg("WebSocket read error")
			}
			return
		}
	}
}

func (h *Handler) wsWriter(conn *websocket.Conn, views <-chan View) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case view, ok := <-views:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			msg, err := json.Marshal(WSEvent{Type: EventSessionState, Data: view})
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotPlaying):
		response.Error(w, http.StatusConflict, "NOT_PLAYING", "No ad is playing")
	case errors.Is(err, ErrNotClaimable):
		response.Error(w, http.StatusConflict, "NOT_CLAIMABLE", "Finish the ad before claiming")
	case errors.Is(err, ErrInvalidTick):
		response.BadRequest(w, "Elapsed seconds must not be negative")
	case errors.Is(err, ErrClosed):
		response.Error(w, http.StatusServiceUnavailable, "SHUTTING_DOWN", "Server is shutting down")
	default:
		account.WriteError(w, err)
	}
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/session", h.Current)
	r.Get("/session/ws", h.WebSocket)
	r.Post("/session/tick", h.Tick)
	r.Post("/session/claim", h.Claim)
	r.Post("/{id}/start", h.Start)
	return r
}
