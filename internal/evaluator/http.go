package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/types"
)

// HTTPEvaluator calls an external compliance-evaluation service. The
// request is bounded by the client timeout; a timeout is an evaluation
// failure, not a compliant default.
type HTTPEvaluator struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

func NewHTTPEvaluator(baseURL string, timeout time.Duration, log *logger.Logger) *HTTPEvaluator {
	return &HTTPEvaluator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log.With("service", "HTTPEvaluator"),
	}
}

type evaluateRequest struct {
	ListingID   string  `json:"listing_id"`
	SellerID    string  `json:"seller_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    *string `json:"category,omitempty"`
}

func (e *HTTPEvaluator) Evaluate(ctx context.Context, listing *types.Listing) (*types.Verdict, error) {
	body, err := json.Marshal(evaluateRequest{
		ListingID:   listing.ID.String(),
		SellerID:    listing.SellerID,
		Title:       listing.Title,
		Description: listing.Description,
		Category:    listing.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("encode evaluation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/check", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build evaluation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("evaluator unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("evaluator returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var verdict types.Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("decode evaluator response: %w", err)
	}
	if err := ValidateVerdict(&verdict); err != nil {
		return nil, fmt.Errorf("malformed evaluator response: %w", err)
	}

	e.log.Debug("Evaluation completed",
		"listing_id", listing.ID,
		"severity", verdict.Severity,
		"compliant", verdict.Compliant,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return &verdict, nil
}
