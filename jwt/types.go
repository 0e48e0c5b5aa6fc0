package jwt

// Header is the JWT header
type Header struct {
	Algorithm string `json:"alg"`
	Type      string `json:"typ"`
	KeyID     string `json:"kid,omitempty"`
}

// Claims is the JWT payload. Scopes lists the wallet permissions the issuer granted.
type Claims struct {
	Issuer         string   `json:"iss,omitempty"` // owner address
	Subject        string   `json:"sub,omitempty"`
	Audience       string   `json:"aud,omitempty"`
	ExpirationTime string   `json:"exp,omitempty"` // unix seconds
	IssuedAt       string   `json:"iat,omitempty"`
	JWTID          string   `json:"jti,omitempty"`
	Scopes         []string `json:"scopes,omitempty"`
}
