package handlers

import (
	"fmt"
	"net/http"

	"quizpanel/pkg/logger"
	"quizpanel/pkg/security"
	"quizpanel/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QuizGameHandler struct {
	sessionService       *services.SessionService
	participationService *services.ParticipationService
	hub                  *services.Hub
	upgrader             websocket.Upgrader
}

func NewQuizGameHandler(sessionService *services.SessionService, participationService *services.ParticipationService, hub *services.Hub, allowedOrigins []string) *QuizGameHandler {
	return &QuizGameHandler{
		sessionService:       sessionService,
		participationService: participationService,
		hub:                  hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func (h *QuizGameHandler) CreateSession(c *gin.Context) {
	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindError(err))
		return
	}

	session, err := h.sessionService.CreateSession(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, session, "")
}

func (h *QuizGameHandler) GetSession(c *gin.Context) {
	view, err := h.sessionService.GetSession(c.Request.Context(), c.Param("unique_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, view, "")
}

func (h *QuizGameHandler) AddFriend(c *gin.Context) {
	var req services.AddFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindError(err))
		return
	}

	friend, err := h.participationService.AddFriend(c.Request.Context(), req.UniqueID, req.FriendName)
	if err != nil {
		respondError(c, err)
		return
	}

	// Let watchers of this session know someone joined
	if h.hub != nil {
		h.hub.NotifyFriendJoined(c.Request.Context(), req.UniqueID, friend.FriendName)
	}

	respondOK(c, http.StatusOK, nil, "Friend added successfully")
}

func (h *QuizGameHandler) SaveAnswer(c *gin.Context) {
	var req services.SaveAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindError(err))
		return
	}

	result, err := h.participationService.SaveAnswer(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.hub != nil {
		h.hub.PublishScores(c.Request.Context(), req.UniqueID, services.MessageScoresUpdated)
	}

	respondOK(c, http.StatusOK, result, "")
}

func (h *QuizGameHandler) GetFriendsScores(c *gin.Context) {
	board, err := h.participationService.GetFriendsScores(c.Request.Context(), c.Param("unique_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, board, "")
}

func (h *QuizGameHandler) ExportScores(c *gin.Context) {
	data, board, err := h.participationService.ExportScores(c.Request.Context(), c.Param("unique_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("scores-%s.xlsx", board.Session.UniqueID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *QuizGameHandler) ViewAnswers(c *gin.Context) {
	answers, err := h.participationService.GetFriendAnswers(c.Request.Context(), c.Param("unique_id"), c.Param("friend_name"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, answers, "")
}

func (h *QuizGameHandler) ListFriends(c *gin.Context) {
	friends, err := h.participationService.ListFriends(c.Request.Context(), c.Param("unique_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, friends, "")
}

func (h *QuizGameHandler) ListSessions(c *gin.Context) {
	sessions, err := h.sessionService.ListSessions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, sessions, "")
}

func (h *QuizGameHandler) DeactivateSession(c *gin.Context) {
	uniqueID := c.Param("unique_id")
	if err := h.sessionService.DeactivateSession(c.Request.Context(), uniqueID); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, nil, "Session deactivated successfully")
}

func (h *QuizGameHandler) RemoveFriend(c *gin.Context) {
	uniqueID, name := c.Param("unique_id"), security.SanitizeName(c.Param("friend_name"))
	if err := h.participationService.RemoveFriend(c.Request.Context(), uniqueID, name); err != nil {
		respondError(c, err)
		return
	}

	if h.hub != nil {
		h.hub.NotifyFriendRemoved(c.Request.Context(), uniqueID, name)
	}

	respondOK(c, http.StatusOK, nil, "Friend removed successfully")
}

// ServeWS upgrades watchers of an active session to a websocket fed by the hub.
func (h *QuizGameHandler) ServeWS(c *gin.Context) {
	session, err := h.sessionService.ResolveSession(c.Request.Context(), c.Param("unique_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the failure response
		logger.Warn("WebSocket upgrade failed", "unique_id", session.UniqueID, "error", err)
		return
	}

	h.hub.RegisterClient(conn, session.UniqueID)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
