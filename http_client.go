package main

import (
	"net/http"
	"time"
)

// Shared client for any outbound HTTP call made outside the Anthropic SDK.
// Every external call must have a deadline; a hung collaborator degrades
// to a visible error, it never wedges an interaction.
const externalHTTPTimeout = 30 * time.Second

var externalHTTPClient = &http.Client{
	Timeout: externalHTTPTimeout,
}
