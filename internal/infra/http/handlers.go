package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"recall/internal/domain"
	"recall/internal/usecase"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Code: code, Message: message})
}

func (s *Server) handleWellKnown(c *gin.Context) {
	c.JSON(http.StatusOK, s.wellKnown)
}

func (s *Server) handleMemWrite(c *gin.Context) {
	var req struct {
		Text    string   `json:"text"`
		Tags    []string `json:"tags"`
		Scope   string   `json:"scope"`
		Consent string   `json:"consent"`
		TTLDays int      `json:"ttlDays"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "text is required")
		return
	}
	out, err := s.memory.Write(c.Request.Context(), usecase.WriteInput{
		Text:    req.Text,
		Tags:    req.Tags,
		Scope:   domain.Scope(req.Scope),
		Consent: domain.Consent(req.Consent),
		TTLDays: req.TTLDays,
	})
	if err != nil {
		if errors.Is(err, domain.ErrWriteDenied) {
			writeErrorCode(c, http.StatusForbidden, "WRITE_DENIED", err.Error())
			return
		}
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"itemId":  out.ItemID,
		"receipt": out.Receipt,
	})
}

func (s *Server) handleMemSearch(c *gin.Context) {
	var req struct {
		Q     string   `json:"q"`
		Tags  []string `json:"tags"`
		Limit int      `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}
	results, err := s.memory.Search(c.Request.Context(), req.Q, req.Tags, req.Limit)
	if err != nil {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "search failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) handleMemRevoke(c *gin.Context) {
	var req struct {
		ItemID string `json:"itemId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	out, err := s.memory.Revoke(c.Request.Context(), req.ItemID)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "item not found or already revoked")
			return
		}
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "revoke failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"revoked": out.ItemID,
		"receipt": out.Receipt,
	})
}

func (s *Server) handleVerify(c *gin.Context) {
	var receipt domain.Receipt
	if err := c.ShouldBindJSON(&receipt); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	result := s.verifier.Verify(c.Request.Context(), receipt)
	s.emitter.EmitVerify(c.Request.Context(), receipt.ReceiptID, result)
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAudit(c *gin.Context) {
	if s.audit == nil {
		c.JSON(http.StatusOK, gin.H{"events": []domain.AuditEvent{}})
		return
	}
	n := 100
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			n = parsed
		}
	}
	events, err := s.audit.Recent(c.Request.Context(), n)
	if err != nil {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "audit read failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
