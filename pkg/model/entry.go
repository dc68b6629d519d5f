package model

// SSHKeyEntry is the wire form exchanged between client and server. Server is
// the host identifier exactly as it appears in the trust file and may be a
// comma-joined hostname/IP alias list; it is opaque to the store. PublicKey is
// the full SSH public key line (algorithm, base64 body, optional comment).
type SSHKeyEntry struct {
	Server     string `json:"server" validate:"required"`
	PublicKey  string `json:"public_key" validate:"required"`
	Deprecated bool   `json:"deprecated"`
}
