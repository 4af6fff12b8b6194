package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"billvox/internal/domain"
	"billvox/internal/service"
	"billvox/internal/voice"
)

// VoiceHandler handles the live voice billing session endpoints.
type VoiceHandler struct {
	voiceService service.VoiceService
}

// NewVoiceHandler creates a new VoiceHandler.
func NewVoiceHandler(voiceService service.VoiceService) *VoiceHandler {
	return &VoiceHandler{voiceService: voiceService}
}

// UtteranceInput carries one transcribed utterance.
type UtteranceInput struct {
	Text string `json:"text" binding:"required"`
}

// PickInput carries a 1-based disambiguation pick. Zero selects the first
// suggestion.
type PickInput struct {
	Index int `json:"index"`
}

// SessionView is the serialized snapshot of a live session.
type SessionView struct {
	SessionID uuid.UUID            `json:"session_id"`
	State     voice.State          `json:"state"`
	Lines     []domain.CartLine    `json:"lines"`
	Settings  domain.OrderSettings `json:"settings"`
	Customer  *domain.Customer     `json:"customer,omitempty"`
	Chips     []voice.Chip         `json:"chips"`
}

func sessionView(s *voice.Session) SessionView {
	return SessionView{
		SessionID: s.ID,
		State:     s.State(),
		Lines:     s.Lines(),
		Settings:  s.Settings(),
		Customer:  s.Customer(),
		Chips:     s.Chips(),
	}
}

// session loads the session by path param and checks it belongs to the caller.
func (h *VoiceHandler) session(c *gin.Context) (*voice.Session, bool) {
	businessID, _, _, ok := extractAuthContext(c)
	if !ok {
		return nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid session ID")
		return nil, false
	}

	session, err := h.voiceService.GetSession(id)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	if session.BusinessID != businessID {
		HandleError(c, domain.ErrSessionNotFound)
		return nil, false
	}
	return session, true
}

// Start handles POST /api/v1/voice/sessions
func (h *VoiceHandler) Start(c *gin.Context) {
	businessID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	session, err := h.voiceService.StartSession(c.Request.Context(), businessID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, sessionView(session))
}

// Get handles GET /api/v1/voice/sessions/:id
func (h *VoiceHandler) Get(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	RespondOK(c, sessionView(session))
}

// Utterance handles POST /api/v1/voice/sessions/:id/utterances
func (h *VoiceHandler) Utterance(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var input UtteranceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result := session.RouteUtterance(c.Request.Context(), input.Text)
	RespondOK(c, result)
}

// PickSuggestion handles POST /api/v1/voice/sessions/:id/pick
func (h *VoiceHandler) PickSuggestion(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var input PickInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := session.PickSuggestion(c.Request.Context(), input.Index)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// PickCustomer handles POST /api/v1/voice/sessions/:id/pick-customer
func (h *VoiceHandler) PickCustomer(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var input PickInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := session.PickCustomer(input.Index)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Dismiss handles POST /api/v1/voice/sessions/:id/dismiss
func (h *VoiceHandler) Dismiss(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.DismissSuggestions()
	RespondOK(c, gin.H{"state": session.State()})
}

// StartListening handles POST /api/v1/voice/sessions/:id/listen
func (h *VoiceHandler) StartListening(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.StartListening()
	RespondOK(c, gin.H{"state": session.State()})
}

// StopListening handles POST /api/v1/voice/sessions/:id/mute
func (h *VoiceHandler) StopListening(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.StopListening()
	RespondOK(c, gin.H{"state": session.State()})
}

// AddLine handles POST /api/v1/voice/sessions/:id/lines
func (h *VoiceHandler) AddLine(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var line domain.CartLine
	if err := c.ShouldBindJSON(&line); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if line.Name == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "name is required")
		return
	}

	RespondCreated(c, session.AddManualLine(line))
}

// UpdateLine handles PUT /api/v1/voice/sessions/:id/lines/:lineID
func (h *VoiceHandler) UpdateLine(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	lineID, err := uuid.Parse(c.Param("lineID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid line ID")
		return
	}

	var line domain.CartLine
	if err := c.ShouldBindJSON(&line); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	line.CartLineID = lineID

	if err := session.UpdateLine(line); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, line)
}

// RemoveLine handles DELETE /api/v1/voice/sessions/:id/lines/:lineID
func (h *VoiceHandler) RemoveLine(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	lineID, err := uuid.Parse(c.Param("lineID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid line ID")
		return
	}

	if err := session.RemoveLine(lineID); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "line removed"})
}

// UpdateSettings handles PUT /api/v1/voice/sessions/:id/settings
func (h *VoiceHandler) UpdateSettings(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var input domain.OrderSettings
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	updated := session.UpdateSettings(func(s *domain.OrderSettings) {
		*s = input
	})
	RespondOK(c, updated)
}

// SetCustomer handles PUT /api/v1/voice/sessions/:id/customer
func (h *VoiceHandler) SetCustomer(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var customer domain.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	session.SetCustomer(&customer)
	RespondOK(c, session.Customer())
}

// Totals handles GET /api/v1/voice/sessions/:id/totals
func (h *VoiceHandler) Totals(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	RespondOK(c, session.Totals())
}

// Finalize handles POST /api/v1/voice/sessions/:id/finalize
func (h *VoiceHandler) Finalize(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	invoice, err := h.voiceService.FinalizeSession(c.Request.Context(), session.ID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, invoice)
}

// End handles DELETE /api/v1/voice/sessions/:id
func (h *VoiceHandler) End(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.voiceService.EndSession(session.ID)
	RespondOK(c, gin.H{"message": "session ended"})
}
