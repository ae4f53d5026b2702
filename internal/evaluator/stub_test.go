package evaluator

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/types"
)

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("failed to init logger: %v", err)
	}
	return log
}

func TestStubEvaluatorDeterministic(t *testing.T) {
	stub := NewStubEvaluator(testLogger(t))
	listing := &types.Listing{
		ID:          uuid.New(),
		SellerID:    "seller-1",
		Title:       "Vitamin C gummies",
		Description: "Daily immune support",
	}

	first, err := stub.Evaluate(context.Background(), listing)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	second, err := stub.Evaluate(context.Background(), listing)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if first.Severity != second.Severity || first.Compliant != second.Compliant {
		t.Fatalf("same content produced different verdicts: %+v vs %+v", first, second)
	}
}

func TestStubEvaluatorVerdictsWellFormed(t *testing.T) {
	for i := range stubVerdicts {
		if err := ValidateVerdict(&stubVerdicts[i]); err != nil {
			t.Fatalf("canned verdict %d invalid: %v", i, err)
		}
	}
}

func TestStubEvaluatorCancelled(t *testing.T) {
	stub := NewStubEvaluator(testLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := stub.Evaluate(ctx, &types.Listing{Title: "a", Description: "b"}); err == nil {
		t.Fatalf("Evaluate ignored cancelled context")
	}
}
