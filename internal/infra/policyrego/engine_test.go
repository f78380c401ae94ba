package policyrego

import (
	"context"
	"testing"
)

func TestDefaultPolicyDeniesPublicWithoutConsent(t *testing.T) {
	engine, err := NewDefaultEngine(context.Background())
	if err != nil {
		t.Fatalf("compile default policy: %v", err)
	}

	result, err := engine.Evaluate(context.Background(), WriteInput{Scope: "public", Consent: "none"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result.Allow {
		t.Fatal("public item without consent was admitted")
	}
	if len(result.Deny) != 1 || result.Deny[0].Code != "CONSENT_REQUIRED" {
		t.Fatalf("deny = %+v, want single CONSENT_REQUIRED reason", result.Deny)
	}
}

func TestDefaultPolicyAdmitsConsentedWrites(t *testing.T) {
	engine, err := NewDefaultEngine(context.Background())
	if err != nil {
		t.Fatalf("compile default policy: %v", err)
	}

	tests := []WriteInput{
		{Scope: "private", Consent: "explicit"},
		{Scope: "team", Consent: "inferred", Tags: []string{"notes"}},
		{Scope: "public", Consent: "explicit"},
	}
	for _, input := range tests {
		result, err := engine.Evaluate(context.Background(), input)
		if err != nil {
			t.Fatalf("evaluate %+v: %v", input, err)
		}
		if !result.Allow {
			t.Errorf("input %+v denied: %+v", input, result.Deny)
		}
	}
}

func TestNilEngineAdmitsEverything(t *testing.T) {
	var engine *Engine
	result, err := engine.Evaluate(context.Background(), WriteInput{Scope: "public", Consent: "none"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.Allow {
		t.Fatal("nil engine denied a write")
	}
}

func TestEngineFromBundlePathRequiresPath(t *testing.T) {
	if _, err := NewEngineFromBundlePath(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty bundle path")
	}
}
