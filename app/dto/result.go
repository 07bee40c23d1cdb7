package dto

import "github.com/vibast-solutions/ms-go-jobboard/app/entity"

// SessionResult is what every token-issuing operation hands back to its transport.
type SessionResult struct {
	User  *entity.User
	Token string
}
