package controller

import (
	"complaint_tracker_backend/internal/model"
	"complaint_tracker_backend/internal/service"
	"complaint_tracker_backend/internal/util"
	"context"

	"github.com/gin-gonic/gin"
)

type FeedbackAPI interface {
	AttachFeedback(ctx context.Context, actorID, complaintID uint, in service.FeedbackInput) (*model.StatusUpdate, error)
	Feedback(ctx context.Context, actorID, complaintID uint) (*model.StatusUpdate, error)
	FeedbackProvided(ctx context.Context, actorID, complaintID uint) (bool, error)
}

type FeedbackController struct {
	LedgerService FeedbackAPI
}

func NewFeedbackController(ledgerService FeedbackAPI) *FeedbackController {
	return &FeedbackController{LedgerService: ledgerService}
}

// swagger:model FeedbackRequest
type FeedbackRequest struct {
	Feedback           string `json:"feedback"`
	SatisfactionRating int    `json:"satisfactionRating" binding:"required,min=1,max=5" example:"5"`
	IsFullySolved      *bool  `json:"isFullySolved"`
	WouldRecommend     *bool  `json:"wouldRecommend"`
}

// Submit godoc
// @Summary Submit feedback on a resolved complaint
// @Description Accepted once per complaint
// @Tags feedback
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Complaint ID"
// @Param   body body FeedbackRequest true "Feedback"
// @Success 200 {object} util.Response{data=model.StatusUpdate}
// @Failure 400 {object} util.Response "Not resolved or invalid rating"
// @Failure 409 {object} util.Response "Feedback already submitted"
// @Router /feedback/complaint/{id} [post]
func (c *FeedbackController) Submit(ctx *gin.Context) {
	actorID, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req FeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.BindingMessage(err))
		return
	}

	entry, err := c.LedgerService.AttachFeedback(ctx.Request.Context(), actorID, id, service.FeedbackInput{
		Feedback:           req.Feedback,
		SatisfactionRating: req.SatisfactionRating,
		IsFullySolved:      req.IsFullySolved,
		WouldRecommend:     req.WouldRecommend,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, entry)
}

// Get godoc
// @Summary Feedback for a complaint
// @Tags feedback
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Complaint ID"
// @Success 200 {object} util.Response{data=model.StatusUpdate}
// @Failure 404 {object} util.Response
// @Router /feedback/complaint/{id} [get]
func (c *FeedbackController) Get(ctx *gin.Context) {
	actorID, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	entry, err := c.LedgerService.Feedback(ctx.Request.Context(), actorID, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, entry)
}

// Status godoc
// @Summary Whether feedback was given
// @Tags feedback
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Complaint ID"
// @Success 200 {object} util.Response{data=object}
// @Router /feedback/complaint/{id}/status [get]
func (c *FeedbackController) Status(ctx *gin.Context) {
	actorID, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	provided, err := c.LedgerService.FeedbackProvided(ctx.Request.Context(), actorID, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"feedbackProvided": provided})
}
