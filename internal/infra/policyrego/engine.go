// Package policyrego evaluates a Rego policy that decides whether a memory
// write is admitted. The default embedded policy rejects public-scope items
// recorded without consent; operators can replace it with a bundle on disk.
package policyrego

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/open-policy-agent/opa/rego"
)

const defaultQuery = "data.recall.policy.result"

const defaultModule = `package recall.policy

deny[reason] {
	input.scope == "public"
	input.consent == "none"
	reason := {"code": "CONSENT_REQUIRED", "message": "public items require explicit or inferred consent"}
}

result := {"allow": count(deny) == 0, "deny": deny}
`

type WriteInput struct {
	Scope   string   `json:"scope"`
	Consent string   `json:"consent"`
	Tags    []string `json:"tags"`
}

type DenyReason struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Result struct {
	Allow bool         `json:"allow"`
	Deny  []DenyReason `json:"deny"`
}

type Engine struct {
	query rego.PreparedEvalQuery
}

// NewDefaultEngine compiles the embedded policy module.
func NewDefaultEngine(ctx context.Context) (*Engine, error) {
	return newEngine(ctx, rego.Module("recall_policy.rego", defaultModule))
}

// NewEngineFromBundlePath compiles a policy bundle from disk. The bundle
// must define data.recall.policy.result.
func NewEngineFromBundlePath(ctx context.Context, bundlePath string) (*Engine, error) {
	if bundlePath == "" {
		return nil, errors.New("bundle path is required")
	}
	return newEngine(ctx, rego.Load([]string{bundlePath}, nil))
}

func newEngine(ctx context.Context, source func(*rego.Rego)) (*Engine, error) {
	r := rego.New(
		rego.Query(defaultQuery),
		rego.StrictBuiltinErrors(true),
		source,
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{query: prepared}, nil
}

// Evaluate runs the policy for one write. A nil engine admits everything.
func (e *Engine) Evaluate(ctx context.Context, input WriteInput) (Result, error) {
	if e == nil {
		return Result{Allow: true}, nil
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Result{}, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Result{}, errors.New("empty policy result")
	}
	result, err := decodeResult(results[0].Expressions[0].Value)
	if err != nil {
		return Result{}, err
	}
	sort.Slice(result.Deny, func(i, j int) bool {
		if result.Deny[i].Code == result.Deny[j].Code {
			return result.Deny[i].Message < result.Deny[j].Message
		}
		return result.Deny[i].Code < result.Deny[j].Code
	})
	return result, nil
}

func decodeResult(value any) (Result, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return Result{}, err
	}
	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return Result{}, err
	}
	return result, nil
}
