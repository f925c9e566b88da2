package types

// Identity is what the token verifier resolves a bearer credential to.
type Identity struct {
	UserID      int64
	DisplayName string
	Email       string
	Role        string
}
