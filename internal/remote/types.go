package remote

import (
	"photovault/internal/crypto"
	"photovault/internal/share"
)

// VaultRecord is what the server persists about a vault. Everything in it
// is public or wrapped; the server can store it verbatim without learning
// a single key.
type VaultRecord struct {
	VaultID         string            `json:"vault_id"`
	Name            string            `json:"name"`
	WrappedVaultKey string            `json:"wrapped_vault_key,omitempty"`
	KDF             *crypto.KDFParams `json:"kdf,omitempty"`
	CredentialID    string            `json:"credential_id,omitempty"`
}

// Challenge is the server's answer to an unlock request for a
// password-protected vault.
type Challenge struct {
	WrappedVaultKey string           `json:"wrapped_vault_key"`
	KDF             crypto.KDFParams `json:"kdf"`
}

// AuthenticatorChallenge starts a hardware unlock: the credential to
// exercise and the wrap source the PRF output is applied to. The server
// only releases it after verifying the authenticator assertion.
type AuthenticatorChallenge struct {
	CredentialID string `json:"credential_id"`
	WrapSource   string `json:"wrap_source"`
}

// ObjectRecord pairs an object with its wrapped content key.
type ObjectRecord struct {
	ObjectID          string `json:"object_id"`
	WrappedContentKey string `json:"wrapped_content_key"`
}

// ShareRecord addresses a share payload to a recipient.
type ShareRecord struct {
	RecipientID string         `json:"recipient_id"`
	Payload     *share.Payload `json:"payload"`
}
