package types

import (
	"time"

	"github.com/vibast-solutions/ms-go-jobboard/app/entity"
)

// UserResponse is the public view of a user. It never carries the password
// hash, the password change timestamp or reset token state.
type UserResponse struct {
	ID        uint64    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	About     string    `json:"about,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewUserResponse(user *entity.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		About:     user.About,
		CreatedAt: user.CreatedAt,
	}
}

type JobResponse struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	PostedBy    uint64    `json:"postedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewJobResponse(job *entity.Job) *JobResponse {
	if job == nil {
		return nil
	}
	return &JobResponse{
		ID:          job.ID,
		Title:       job.Title,
		Description: job.Description,
		PostedBy:    job.PostedBy,
		CreatedAt:   job.CreatedAt,
	}
}

// SessionReply is the gRPC counterpart of the HTTP session envelope.
type SessionReply struct {
	Message string        `json:"message,omitempty"`
	Token   string        `json:"token"`
	User    *UserResponse `json:"user"`
}

type MessageReply struct {
	Message string `json:"message"`
}
