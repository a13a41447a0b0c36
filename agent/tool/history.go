package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/D-Harshith/ResolveAI/agent/contract"
	historyx "github.com/D-Harshith/ResolveAI/agent/history"
)

// sentinelUnknown is what the model passes when the customer never supplied
// an email. History operations treat it as a no-op, not an error.
const sentinelUnknown = "unknown"

func missingEmail(email string) bool {
	trimmed := strings.TrimSpace(email)
	return trimmed == "" || strings.EqualFold(trimmed, sentinelUnknown)
}

// getCustomerHistory renders a history lookup as text. Zero rows and read
// failures both resolve to descriptive strings so the model-facing contract
// stays text-only.
func getCustomerHistory(ctx context.Context, store contractx.HistoryStore, email string) string {
	if missingEmail(email) {
		return "No customer email provided. Cannot retrieve history."
	}

	summaries, err := store.Records(ctx, email)
	if err != nil {
		log.Error().Err(err).Msg("history read failed")
		return fmt.Sprintf("Error retrieving history: %v", err)
	}
	if len(summaries) == 0 {
		return "No past history found for this customer."
	}
	return "Found past customer history:\n" + strings.Join(summaries, "\n")
}

// saveCustomerHistory labels the summary with the ticket ID and appends it.
// The summary is expected to be PII-redacted already; the store never redacts.
func saveCustomerHistory(ctx context.Context, store contractx.HistoryStore, email, ticketID, summary string) string {
	if missingEmail(email) {
		return "No customer email provided. Cannot save history."
	}

	normalized := historyx.NormalizeEmail(email)
	record := fmt.Sprintf("Issue %s (Current): %s", ticketID, summary)

	if err := store.Append(ctx, normalized, record); err != nil {
		log.Error().Err(err).Msg("history write failed")
		return fmt.Sprintf("Error saving history: %v", err)
	}

	log.Info().Str("email", normalized).Msg("history record saved")
	return fmt.Sprintf("Successfully saved new history record for %s.", normalized)
}
