package tool

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/D-Harshith/ResolveAI/agent/contract"
)

// getPolicyInfo renders a policy lookup as text. An unmatched topic becomes a
// descriptive not-found message naming the topic, never a hard failure.
func getPolicyInfo(policies contractx.PolicySource, topic string) string {
	body, err := policies.Lookup(topic)
	if err != nil {
		if errors.Is(err, contractx.ErrTopicNotFound) {
			log.Warn().Str("topic", topic).Msg("no matching policy section")
			return fmt.Sprintf("Error: No policy information found for the topic '%s'.", topic)
		}
		return fmt.Sprintf("Error retrieving policy information: %v", err)
	}
	return body
}
