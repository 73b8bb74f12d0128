package models

// Identity is the caller as seen by the server.
type Identity struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name,omitempty"`
	Node        string `json:"node,omitempty"`
	// Source is "tailscale" when resolved with WhoIs, "local" otherwise.
	Source string `json:"source"`
}
