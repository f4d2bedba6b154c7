package dto

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}
