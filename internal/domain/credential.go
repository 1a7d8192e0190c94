package domain

// Credential holds the stored salted hash for a principal. Immutable once stored.
type Credential struct {
	Principal     Principal
	PrincipalType PrincipalType
	HashedSecret  []byte
	Salt          []byte
}
