package http

import "github.com/vibast-solutions/ms-go-jobboard/app/types"

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

type UserData struct {
	User *types.UserResponse `json:"user"`
}

type JobData struct {
	Job *types.JobResponse `json:"job"`
}

// SessionResponse is returned by every operation that issues a session token.
type SessionResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Token   string   `json:"token"`
	Data    UserData `json:"data"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

type JobCreatedResponse struct {
	Status string  `json:"status"`
	Data   JobData `json:"data"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewSessionResponse(message, token string, user *types.UserResponse) *SessionResponse {
	return &SessionResponse{
		Status:  StatusSuccess,
		Message: message,
		Token:   token,
		Data:    UserData{User: user},
	}
}

func NewMessageResponse(message string) *MessageResponse {
	return &MessageResponse{Status: StatusSuccess, Data: nil, Message: message}
}
