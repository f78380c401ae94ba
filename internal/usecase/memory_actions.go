package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"recall/internal/domain"
	"recall/internal/infra/policyrego"
)

// MemoryService orchestrates the three store actions and their receipts:
// issue-on-write, issue-on-revoke, and search. The store is a collaborator
// behind its three-operation contract; this service owns nothing of its
// persistence.
type MemoryService struct {
	Store  domain.MemoryItemStore
	Issuer *ReceiptIssuer
	Policy PolicyEngine
	Audit  *AuditEmitter
	Clock  Clock
	NewID  func() string
}

func NewMemoryService(store domain.MemoryItemStore, issuer *ReceiptIssuer, policy PolicyEngine, audit *AuditEmitter) *MemoryService {
	return &MemoryService{
		Store:  store,
		Issuer: issuer,
		Policy: policy,
		Audit:  audit,
		Clock:  time.Now,
		NewID:  uuid.NewString,
	}
}

type WriteInput struct {
	Text    string
	Tags    []string
	Scope   domain.Scope
	Consent domain.Consent
	TTLDays int
}

type WriteOutput struct {
	ItemID  string
	Receipt domain.Receipt
}

// Write admits the item through policy, persists it, and issues a green
// mem.write receipt whose id is recorded on the item.
func (s *MemoryService) Write(ctx context.Context, in WriteInput) (WriteOutput, error) {
	if in.Text == "" {
		return WriteOutput{}, errors.New("text is required")
	}
	if in.Scope == "" {
		in.Scope = domain.ScopePrivate
	}
	if in.Consent == "" {
		in.Consent = domain.ConsentExplicit
	}
	if !in.Scope.Valid() {
		return WriteOutput{}, fmt.Errorf("invalid scope %q", in.Scope)
	}
	if !in.Consent.Valid() {
		return WriteOutput{}, fmt.Errorf("invalid consent %q", in.Consent)
	}

	if s.Policy != nil {
		eval, err := s.Policy.Evaluate(ctx, policyrego.WriteInput{
			Scope:   string(in.Scope),
			Consent: string(in.Consent),
			Tags:    in.Tags,
		})
		if err != nil {
			return WriteOutput{}, fmt.Errorf("evaluate write policy: %w", err)
		}
		if !eval.Allow {
			return WriteOutput{}, writeDeniedError(eval)
		}
	}

	receipt, err := s.Issuer.Issue([]string{domain.FlagMemWrite}, domain.BadgeGreen, "")
	if err != nil {
		return WriteOutput{}, err
	}

	now := s.Clock().UTC()
	item := domain.MemoryItem{
		ID:        s.NewID(),
		Text:      in.Text,
		Tags:      in.Tags,
		Scope:     in.Scope,
		Consent:   in.Consent,
		CreatedAt: now,
		ReceiptID: receipt.ReceiptID,
	}
	if in.TTLDays > 0 {
		expires := now.AddDate(0, 0, in.TTLDays)
		item.ExpiresAt = &expires
	}

	if err := s.Store.Write(ctx, item); err != nil {
		s.Audit.EmitMemWrite(ctx, item.ID, in.Text, domain.AuditResultFailure, "STORE_WRITE")
		return WriteOutput{}, fmt.Errorf("write item: %w", err)
	}
	s.Audit.EmitMemWrite(ctx, item.ID, in.Text, domain.AuditResultSuccess, "")
	return WriteOutput{ItemID: item.ID, Receipt: receipt}, nil
}

func (s *MemoryService) Search(ctx context.Context, query string, tags []string, limit int) ([]domain.SearchResult, error) {
	return s.Store.Search(ctx, query, tags, limit)
}

type RevokeOutput struct {
	ItemID  string
	Receipt domain.Receipt
}

// Revoke atomically marks the item revoked, then issues an amber mem.revoke
// receipt chained to the receipt that recorded the item's creation. An
// unknown or already-revoked item is domain.ErrItemNotFound; losing a
// concurrent race reports the same way.
func (s *MemoryService) Revoke(ctx context.Context, itemID string) (RevokeOutput, error) {
	if itemID == "" {
		return RevokeOutput{}, domain.ErrItemNotFound
	}
	priorReceiptID, err := s.Store.Revoke(ctx, itemID)
	if err != nil {
		s.Audit.EmitMemRevoke(ctx, itemID, domain.AuditResultFailure, "STORE_REVOKE")
		return RevokeOutput{}, fmt.Errorf("revoke item: %w", err)
	}
	if priorReceiptID == "" {
		s.Audit.EmitMemRevoke(ctx, itemID, domain.AuditResultFailure, "NOT_FOUND")
		return RevokeOutput{}, domain.ErrItemNotFound
	}

	receipt, err := s.Issuer.Issue([]string{domain.FlagMemRevoke, itemID}, domain.BadgeAmber, priorReceiptID)
	if err != nil {
		return RevokeOutput{}, err
	}
	s.Audit.EmitMemRevoke(ctx, itemID, domain.AuditResultSuccess, "")
	return RevokeOutput{ItemID: itemID, Receipt: receipt}, nil
}

func writeDeniedError(eval policyrego.Result) error {
	if len(eval.Deny) == 0 {
		return domain.ErrWriteDenied
	}
	return fmt.Errorf("%w: %s", domain.ErrWriteDenied, eval.Deny[0].Message)
}
