package domain

// TokenPair is the result of a login or refresh: a short-lived access token,
// a longer-lived refresh token, and the access token's lifetime in epoch
// millisecond terms.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresInMs  int64
}
