package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-jobboard/app/entity"
	"github.com/vibast-solutions/ms-go-jobboard/app/repository"
	"github.com/vibast-solutions/ms-go-jobboard/app/types"
)

type jobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	FindByID(ctx context.Context, id uint64) (*entity.Job, error)
}

type applicationRepository interface {
	Create(ctx context.Context, application *entity.Application) error
	ExistsForApplicant(ctx context.Context, jobID, applicantID uint64) (bool, error)
}

type ApplicationServiceOption func(*ApplicationService)

type ApplicationService struct {
	jobRepo         jobRepository
	applicationRepo applicationRepository
	events          EventRecorder
	now             Clock
}

func NewApplicationService(jobRepo jobRepository, applicationRepo applicationRepository, opts ...ApplicationServiceOption) *ApplicationService {
	svc := &ApplicationService{
		jobRepo:         jobRepo,
		applicationRepo: applicationRepo,
		events:          noopRecorder{},
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func WithApplicationClock(now Clock) ApplicationServiceOption {
	return func(s *ApplicationService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithApplicationEventRecorder(events EventRecorder) ApplicationServiceOption {
	return func(s *ApplicationService) {
		if events != nil {
			s.events = events
		}
	}
}

func (s *ApplicationService) CreateJob(ctx context.Context, owner *entity.User, req *types.CreateJobRequest) (job *entity.Job, err error) {
	defer func() { s.events.RecordAuthEvent("create_job", outcome(err)) }()

	if err = req.Validate(); err != nil {
		return nil, NewValidationError(err.Error())
	}

	now := s.now()
	job = &entity.Job{
		Title:       req.Title,
		Description: req.Description,
		PostedBy:    owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err = s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	return job, nil
}

// ApplyForJob records one application by applicant. Applying to a missing
// job, to one's own job, or twice to the same job is rejected. The job checks
// run before the cover letter is validated.
func (s *ApplicationService) ApplyForJob(ctx context.Context, applicant *entity.User, req *types.ApplyForJobRequest) (err error) {
	defer func() { s.events.RecordAuthEvent("apply_for_job", outcome(err)) }()

	job, err := s.eligibleJob(ctx, applicant, req.JobID)
	if err != nil {
		return err
	}
	if err = req.Validate(); err != nil {
		return NewValidationError(err.Error())
	}

	applied, err := s.applicationRepo.ExistsForApplicant(ctx, job.ID, applicant.ID)
	if err != nil {
		return fmt.Errorf("check existing application: %w", err)
	}
	if applied {
		return ErrAlreadyApplied
	}

	application := &entity.Application{
		JobID:       job.ID,
		ApplicantID: applicant.ID,
		CoverLetter: req.CoverLetter,
		CreatedAt:   s.now(),
	}
	if err = s.applicationRepo.Create(ctx, application); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyApplied
		}
		return fmt.Errorf("create application: %w", err)
	}

	return nil
}

// CheckEligibility runs the job lookups of ApplyForJob without a request body.
// Transports call it when the body could not be decoded.
func (s *ApplicationService) CheckEligibility(ctx context.Context, applicant *entity.User, jobID uint64) (err error) {
	if _, err = s.eligibleJob(ctx, applicant, jobID); err != nil {
		s.events.RecordAuthEvent("apply_for_job", outcome(err))
	}
	return err
}

func (s *ApplicationService) eligibleJob(ctx context.Context, applicant *entity.User, jobID uint64) (*entity.Job, error) {
	if jobID == 0 {
		return nil, ErrJobNotFound
	}

	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("find job: %w", err)
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	if job.PostedBy == applicant.ID {
		return nil, ErrSelfApplication
	}
	return job, nil
}
