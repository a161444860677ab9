package domain

// Field is one key/value row supplied by the field repository collaborator.
type Field struct {
	Key   string
	Value string
}

// UploadMode selects how a field batch is serialized before encryption.
type UploadMode string

const (
	// ModeSend shares field values with the recipients.
	ModeSend UploadMode = "send"
	// ModeRequest asks the recipients to share the named fields back.
	ModeRequest UploadMode = "request"
)

// UploadStatus is the per-recipient outcome of an upload batch.
type UploadStatus string

const (
	StatusStored              UploadStatus = "STORED"
	StatusAlreadyExists       UploadStatus = "EXISTS"
	StatusMissingField        UploadStatus = "MISSING_FIELD"
	StatusMissingRecipientKey UploadStatus = "MISSING_RECIPIENT_KEY"
	StatusError               UploadStatus = "ERROR"
)

// Credentials is the plaintext credential record. It lives in process memory
// only; the vault persists it exclusively as ciphertext.
type Credentials struct {
	Email        string `json:"owner_email"`
	Username     string `json:"owner_username"`
	SafePassword string `json:"owner_safe_password"` // hex of the stretched password
}

// SignatureRecord is the durable proof that a (password, username, email)
// combination was used at registration. Both fields are base64.
type SignatureRecord struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

// UserRecord is the registration payload posted to the relay.
type UserRecord struct {
	Owner        string `json:"owner"`
	CreatedAt    string `json:"creation_at"`
	ExpiresAt    string `json:"expires_at"`
	PubKey       string `json:"pubkey"`
	Verification string `json:"verification"`
	Signature    string `json:"signature"`
}

// Envelope is one per-recipient encrypted payload exchanged through the relay.
// Data is the base64 ciphertext of the serialized field batch, encrypted under
// the consumer's public key. Verification is the hex digest over
// owner, consumer and the plaintext hash; Signature is the owner's signature
// over the same digest bytes, base64.
type Envelope struct {
	Owner        string `json:"owner"`
	Consumer     string `json:"consumer,omitempty"`
	CreatedAt    string `json:"creation_at"`
	ExpiresAt    string `json:"expires_at"`
	Data         string `json:"data"`
	Verification string `json:"verification"`
	Signature    string `json:"signature"`
}
