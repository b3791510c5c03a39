package service

import (
	"context"
	"net/http"
	"time"

	"github.com/fincast/fincast/internal/insights"
)

type digestRunResponse struct {
	Subscribers int `json:"subscribers"`
	Sent        int `json:"sent"`
	Failed      int `json:"failed"`
}

// HandleRunDigest sends the weekly digest to every opted-in user. It is
// triggered by an external scheduler and guarded by a shared token rather
// than a user session.
func (s *FinanceService) HandleRunDigest(w http.ResponseWriter, r *http.Request) {
	if s.digestToken == "" {
		writeError(w, http.StatusNotFound, "digest delivery is not configured")
		return
	}
	if r.Header.Get("X-Digest-Token") != s.digestToken {
		writeError(w, http.StatusUnauthorized, "invalid digest token")
		return
	}

	subscribers, err := s.store.ListDigestSubscribers(r.Context())
	if err != nil {
		s.storeError(w, err)
		return
	}

	resp := digestRunResponse{Subscribers: len(subscribers)}
	for _, user := range subscribers {
		if err := s.sendDigestTo(r.Context(), user.ID, user.Email, user.DisplayName); err != nil {
			s.log.Error("digest delivery failed", "userId", user.ID, "error", err)
			resp.Failed++
			continue
		}
		resp.Sent++
	}
	s.log.Info("weekly digest run complete", "subscribers", resp.Subscribers, "sent", resp.Sent, "failed", resp.Failed)
	writeJSON(w, http.StatusOK, resp)
}

func (s *FinanceService) sendDigestTo(ctx context.Context, userID, email, displayName string) error {
	txns, err := s.loadHistory(ctx, userID, defaultInsightsMonths)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	patterns := insights.DetectRecurringPatterns(txns)
	anomalies := insights.DetectAnomalies(txns, patterns)
	monthly := insights.ForecastMonthly(txns, patterns, 1, now)
	lines := insights.Narrate(patterns, anomalies, monthly, nil)
	if len(lines) == 0 {
		lines = []string{"No notable activity this week. Keep logging transactions to unlock insights."}
	}
	return s.email.SendDigest(ctx, email, displayName, lines)
}
