package types

import (
	"errors"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"
)

var ErrInvalidJobID = errors.New("invalid job id")

type CreateJobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func NewCreateJobRequestFromContext(ctx echo.Context) (*CreateJobRequest, error) {
	var body CreateJobRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *CreateJobRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(0, 255)),
		validation.Field(&r.Description, validation.Length(0, 10000)),
	)
}

type ApplyForJobRequest struct {
	JobID       uint64 `json:"jobId,omitempty"`
	CoverLetter string `json:"coverLetter,omitempty"`
}

// NewApplyForJobRequestFromContext reads the job id from the :jobId path
// parameter and the optional cover letter from the body. When only the body
// fails to bind, the returned request still carries the job id.
func NewApplyForJobRequestFromContext(ctx echo.Context) (*ApplyForJobRequest, error) {
	jobID, err := strconv.ParseUint(ctx.Param("jobId"), 10, 64)
	if err != nil {
		return nil, ErrInvalidJobID
	}

	var body ApplyForJobRequest
	bindErr := ctx.Bind(&body)
	body.JobID = jobID
	if bindErr != nil {
		return &ApplyForJobRequest{JobID: jobID}, bindErr
	}

	return &body, nil
}

func (r *ApplyForJobRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.JobID, validation.Required),
		validation.Field(&r.CoverLetter, validation.Length(0, 10000)),
	)
}
