/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package transport

import "strings"

// gatewayModels maps model ids to the display names some chat completion
// gateways expect in the "model" field.
var gatewayModels = map[string]string{
	"claude-sonnet-4.5": "Claude Sonnet 4.5",
	"claude-haiku-4.5":  "Claude Haiku 4.5",
	"claude-opus-4":     "Claude Opus 4",
}

// ResolveModel returns the name to send to an OpenAI-compatible gateway.
// Unknown ids pass through unchanged.
func ResolveModel(id string) string {
	if name, ok := gatewayModels[strings.ToLower(strings.TrimSpace(id))]; ok {
		return name
	}
	return strings.TrimSpace(id)
}

// normalizeBaseURL accepts both an API root and a full chat completions URL.
func normalizeBaseURL(u string) string {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	u = strings.TrimSuffix(u, "/chat/completions")
	return u + "/"
}
