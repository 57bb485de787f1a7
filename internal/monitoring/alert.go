package monitoring

import (
	"github.com/rs/zerolog/log"
)

// Alert surfaces a billing anomaly to the operator log (no pager wired yet)
func Alert(message string, labels map[string]string) {
	log.Error().
		Str("alert", message).
		Fields(labels).
		Msg("ALERT: billing issue detected")
}
