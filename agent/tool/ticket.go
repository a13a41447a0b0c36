package tool

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

const ticketPrefix = "TICKET_"

// GenerateTicketID returns a fresh opaque ticket identifier: the constant
// prefix plus 8 uppercase hex characters of UUID randomness. The issuer keeps
// nothing; persisting the ID is the caller's concern.
func GenerateTicketID() string {
	id := uuid.New()
	return ticketPrefix + strings.ToUpper(hex.EncodeToString(id[:4]))
}
