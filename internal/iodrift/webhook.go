package iodrift

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/driftwatch/driftwatch/pkg/config"
	"github.com/driftwatch/driftwatch/pkg/drift"
	"github.com/gnames/gnfmt"
)

// notification is the webhook payload for a run that found drifts.
type notification struct {
	Event       string             `json:"event"`
	ReportID    string             `json:"reportId"`
	Timestamp   time.Time          `json:"timestamp"`
	Summary     drift.Summary      `json:"summary"`
	Drifts      []drift.Drift      `json:"drifts"`
	Suggestions []drift.Suggestion `json:"suggestions,omitempty"`
}

// notify POSTs a summary to the configured webhook. Delivery shares
// the query timeout; the caller treats failure as a warning.
func notify(ctx context.Context, cfg *config.Config, rep *drift.Report) error {
	payload := notification{
		Event:       "drift_detected",
		ReportID:    rep.ID,
		Timestamp:   rep.Timestamp,
		Summary:     rep.Summary(),
		Drifts:      rep.Drifts,
		Suggestions: rep.Suggestions,
	}

	enc := gnfmt.GNjson{}
	body, err := enc.Encode(payload)
	if err != nil {
		return WebhookError(cfg.Drift.WebhookURL, err)
	}

	if cfg.Database.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Database.QueryTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, cfg.Drift.WebhookURL, bytes.NewReader(body),
	)
	if err != nil {
		return WebhookError(cfg.Drift.WebhookURL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return WebhookError(cfg.Drift.WebhookURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return WebhookError(cfg.Drift.WebhookURL,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return nil
}
