package domain

const (
	RequesterIdCtxKey     = "rb-requesterId"
	RequesterScopesCtxKey = "rb-requesterScopes"
)

// Wallet permission scopes required to republish.
const (
	ScopeAccessAddress   = "ACCESS_ADDRESS"
	ScopeSignTransaction = "SIGN_TRANSACTION"
)

var RequiredScopes = []string{ScopeAccessAddress, ScopeSignTransaction}

type Source string

const (
	SourceCache         Source = "cache"
	SourceAuthoritative Source = "authoritative"
)

const (
	SignalProfilePublished = "profile.published"
)
