// Package handler exposes the public web-widget chat endpoints.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/flow"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/service"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/token"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/transport"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/httpkit"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/logger"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/validator"
)

const (
	msgInvalidInput   = "Invalid input"
	msgEmptyTurn      = "Message or action is required"
	msgSessionFailure = "Could not establish session"
)

type Handler struct {
	svc    *service.Service
	tokens *token.Manager
	val    *validator.Validator
	log    *logger.Logger
}

func New(svc *service.Service, tokens *token.Manager, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, tokens: tokens, val: val, log: log}
}

// RegisterRoutes registers the public chat routes under /api/v1/chat.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/message", h.Message)
	rg.POST("/reset", h.Reset)
}

func (h *Handler) Message(c *gin.Context) {
	var req transport.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidInput, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidInput, err.Error())
		return
	}
	if req.Message == "" && req.Action == "" {
		httpkit.Error(c, http.StatusBadRequest, msgEmptyTurn, nil)
		return
	}

	visitorID, sessionToken, ok := h.session(c, req.SessionToken)
	if !ok {
		return
	}

	reply, err := h.svc.HandleMessage(c.Request.Context(), service.Inbound{
		CompanyID: req.CompanyID,
		Channel:   "web",
		UserID:    visitorID,
		Text:      req.Message,
		Action:    flow.Action(req.Action),
		Language:  req.Language,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ChatMessageResponse{
		Reply:        reply.Text,
		SessionToken: sessionToken,
		UIHint:       string(reply.UIHint),
		Confirmed:    reply.Confirmed,
	})
}

// Reset destroys the visitor's current lead and starts a fresh conversation
// under the same visitor identity; a new identity is minted only when the
// supplied session token is absent or invalid.
func (h *Handler) Reset(c *gin.Context) {
	var req transport.ChatResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidInput, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidInput, err.Error())
		return
	}

	visitorID, sessionToken, ok := h.session(c, req.SessionToken)
	if !ok {
		return
	}

	reply, err := h.svc.HandleMessage(c.Request.Context(), service.Inbound{
		CompanyID: req.CompanyID,
		Channel:   "web",
		UserID:    visitorID,
		Language:  req.Language,
		Reset:     true,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ChatMessageResponse{
		Reply:        reply.Text,
		SessionToken: sessionToken,
	})
}

// session resolves the visitor identity from the supplied token, minting a
// fresh identity and token when the supplied one is absent or invalid.
func (h *Handler) session(c *gin.Context, supplied string) (visitorID, sessionToken string, ok bool) {
	if supplied != "" {
		if id, err := h.tokens.Verify(supplied); err == nil {
			return id, supplied, true
		}
		// invalid or expired tokens silently start a new session
	}

	id, err := token.NewVisitorID()
	if err != nil {
		h.log.Error("visitor id generation failed", "error", err)
		httpkit.Error(c, http.StatusInternalServerError, msgSessionFailure, nil)
		return "", "", false
	}
	signed, err := h.tokens.Mint(id)
	if err != nil {
		h.log.Error("session token mint failed", "error", err)
		httpkit.Error(c, http.StatusInternalServerError, msgSessionFailure, nil)
		return "", "", false
	}
	return id, signed, true
}
