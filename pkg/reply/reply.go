// Package reply holds the pluggable automated-reply policy. A policy sees
// the inbound body and the tenant's display name and produces at most one
// outbound body.
package reply

import (
	"fmt"
	"strings"
)

// Policy returns the reply body for an inbound message, or "" for no reply.
type Policy func(body string, tenantName string) string

// None never replies.
func None(string, string) string {
	return ""
}

// Keyword is the default policy: a small fixed vocabulary with a catch-all
// handoff message.
func Keyword(body string, tenantName string) string {
	switch strings.ToLower(strings.TrimSpace(body)) {
	case "hola":
		return fmt.Sprintf("¡Hola! Soy el bot de %s. ¿En qué puedo ayudarte?", tenantName)
	case "ayuda":
		return "Puedes preguntar sobre nuestros servicios o productos."
	case "":
		return ""
	default:
		return "Gracias por tu mensaje. Un agente te responderá pronto."
	}
}
