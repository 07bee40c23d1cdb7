package controller

import (
	"context"
	"errors"
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-jobboard/app/dto/http"
	"github.com/vibast-solutions/ms-go-jobboard/app/entity"
	"github.com/vibast-solutions/ms-go-jobboard/app/middleware"
	"github.com/vibast-solutions/ms-go-jobboard/app/service"
	"github.com/vibast-solutions/ms-go-jobboard/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const msgApplicationSent = "Application sent!"

type applicationService interface {
	CreateJob(ctx context.Context, owner *entity.User, req *types.CreateJobRequest) (*entity.Job, error)
	ApplyForJob(ctx context.Context, applicant *entity.User, req *types.ApplyForJobRequest) error
	CheckEligibility(ctx context.Context, applicant *entity.User, jobID uint64) error
}

type ApplicationController struct {
	applicationService applicationService
}

func NewApplicationController(applicationService applicationService) *ApplicationController {
	return &ApplicationController{applicationService: applicationService}
}

func (c *ApplicationController) CreateJob(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return service.ErrNotLoggedIn
	}

	req, err := types.NewCreateJobRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind create job request")
		return service.ErrInvalidRequestBody
	}

	job, err := c.applicationService.CreateJob(ctx.Request().Context(), user, req)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"job_id":  job.ID,
		"user_id": user.ID,
	}).Info("Job created")
	return ctx.JSON(http.StatusCreated, httpdto.JobCreatedResponse{
		Status: httpdto.StatusSuccess,
		Data:   httpdto.JobData{Job: types.NewJobResponse(job)},
	})
}

func (c *ApplicationController) ApplyForJob(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return service.ErrNotLoggedIn
	}

	req, err := types.NewApplyForJobRequestFromContext(ctx)
	if err != nil {
		if errors.Is(err, types.ErrInvalidJobID) {
			return service.ErrInvalidJobID
		}
		logrus.WithError(err).Debug("Failed to bind apply for job request")
		if eligErr := c.applicationService.CheckEligibility(ctx.Request().Context(), user, req.JobID); eligErr != nil {
			return eligErr
		}
		return service.ErrInvalidRequestBody
	}

	logrus.WithFields(logrus.Fields{
		"job_id":  req.JobID,
		"user_id": user.ID,
	}).Info("Apply for job request received")
	if err = c.applicationService.ApplyForJob(ctx.Request().Context(), user, req); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"job_id":  req.JobID,
		"user_id": user.ID,
	}).Info("Application sent")
	return ctx.JSON(http.StatusOK, httpdto.NewMessageResponse(msgApplicationSent))
}
