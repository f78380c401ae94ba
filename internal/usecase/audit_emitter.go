package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"recall/internal/domain"
)

// AuditEmitter appends structured events for every action the service
// takes. Item text never enters the log; only hashes do.
type AuditEmitter struct {
	Repo  AuditEventRepository
	Clock Clock
}

func NewAuditEmitter(repo AuditEventRepository, clock Clock) *AuditEmitter {
	if clock == nil {
		clock = time.Now
	}
	return &AuditEmitter{Repo: repo, Clock: clock}
}

func (e *AuditEmitter) Emit(ctx context.Context, event domain.AuditEvent) (domain.AuditEvent, error) {
	if e == nil || e.Repo == nil {
		return domain.AuditEvent{}, errors.New("audit repository required")
	}
	if event.EventType == "" || event.Result == "" {
		return domain.AuditEvent{}, errors.New("audit event missing required fields")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = e.Clock().UTC()
	} else {
		event.CreatedAt = event.CreatedAt.UTC()
	}
	return e.Repo.Append(ctx, event)
}

func (e *AuditEmitter) EmitMemWrite(ctx context.Context, itemID, text string, result domain.AuditResult, errorCode string) {
	e.emit(ctx, domain.AuditEvent{
		EventType:   domain.AuditEventMemWrite,
		TargetID:    itemID,
		Result:      result,
		ErrorCode:   errorCode,
		PayloadHash: hashString(text),
	})
}

func (e *AuditEmitter) EmitMemRevoke(ctx context.Context, itemID string, result domain.AuditResult, errorCode string) {
	e.emit(ctx, domain.AuditEvent{
		EventType: domain.AuditEventMemRevoke,
		TargetID:  itemID,
		Result:    result,
		ErrorCode: errorCode,
	})
}

func (e *AuditEmitter) EmitVerify(ctx context.Context, receiptID string, outcome domain.VerificationResult) {
	result := domain.AuditResultSuccess
	errorCode := ""
	if !outcome.Valid {
		result = domain.AuditResultFailure
		errorCode = string(outcome.Reason)
	}
	e.emit(ctx, domain.AuditEvent{
		EventType: domain.AuditEventVerify,
		TargetID:  receiptID,
		Result:    result,
		ErrorCode: errorCode,
	})
}

// emit is best-effort: an audit append failure never fails the action.
func (e *AuditEmitter) emit(ctx context.Context, event domain.AuditEvent) {
	if e == nil || e.Repo == nil {
		return
	}
	_, _ = e.Emit(ctx, event)
}

func hashString(value string) string {
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
