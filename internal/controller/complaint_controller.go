package controller

import (
	"complaint_tracker_backend/internal/model"
	"complaint_tracker_backend/internal/service"
	"complaint_tracker_backend/internal/util"
	"context"

	"github.com/gin-gonic/gin"
)

type ComplaintAPI interface {
	Create(ctx context.Context, actorID uint, in service.ComplaintInput) (*model.Complaint, error)
	ListForIdentity(ctx context.Context, actorID uint, resolvedOnly bool) ([]model.Complaint, error)
	ListByUser(ctx context.Context, actorID, userID uint) ([]model.Complaint, error)
	GetByID(ctx context.Context, actorID, id uint) (*model.Complaint, error)
	UpdateFields(ctx context.Context, actorID, id uint, in service.ComplaintInput) (*model.Complaint, error)
	TransitionStatus(ctx context.Context, actorID, id uint, change service.StatusChange) (*model.Complaint, *model.StatusUpdate, error)
	UpdateStatus(ctx context.Context, actorID, id uint, status string) (*model.Complaint, error)
	UpdatePriority(ctx context.Context, actorID, id uint, priority string) (*model.Complaint, error)
	Delete(ctx context.Context, actorID, id uint) error
}

type HistoryAPI interface {
	History(ctx context.Context, actorID, complaintID uint) ([]model.StatusUpdate, error)
}

type ComplaintController struct {
	ComplaintService ComplaintAPI
	LedgerService    HistoryAPI
}

func NewComplaintController(complaintService ComplaintAPI, ledgerService HistoryAPI) *ComplaintController {
	return &ComplaintController{
		ComplaintService: complaintService,
		LedgerService:    ledgerService,
	}
}

// swagger:model ComplaintRequest
type ComplaintRequest struct {
	Title         string `json:"title" binding:"required,max=200"`
	Description   string `json:"description" binding:"required"`
	Category      string `json:"category" binding:"required,oneof=Hostel Mess Maintenance Academic Transport Security" example:"Hostel"`
	Subcategory   string `json:"subcategory" binding:"max=100"`
	Location      string `json:"location" binding:"max=200"`
	ContactNumber string `json:"contactNumber" binding:"max=30"`
}

func (r ComplaintRequest) input() service.ComplaintInput {
	return service.ComplaintInput{
		Title:         r.Title,
		Description:   r.Description,
		Category:      r.Category,
		Subcategory:   r.Subcategory,
		Location:      r.Location,
		ContactNumber: r.ContactNumber,
	}
}

// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"IN_PROGRESS"`
}

// swagger:model UpdatePriorityRequest
type UpdatePriorityRequest struct {
	Priority string `json:"priority" binding:"required" example:"HIGH"`
}

// swagger:model StatusChangeRequest
type StatusChangeRequest struct {
	Status                 string `json:"status" binding:"required" example:"RESOLVED"`
	Comments               string `json:"comments"`
	NextSteps              string `json:"nextSteps"`
	ExpectedCompletionDate string `json:"expectedCompletionDate" binding:"omitempty,datetime=2006-01-02" example:"2026-03-10"`
}

// actor returns the authenticated user id, writing 401 when there is none.
func actor(ctx *gin.Context) (uint, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return 0, false
	}
	return claims.UserID, true
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := util.ParamUint(ctx, name)
	if err != nil {
		util.RespondError(ctx, err)
		return 0, false
	}
	return id, true
}

// Create godoc
// @Summary File a complaint
// @Tags complaints
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ComplaintRequest true "Complaint"
// @Success 200 {object} util.Response{data=model.Complaint}
// @Failure 400 {object} util.Response
// @Router /complaints [post]
func (c *ComplaintController) Create(ctx *gin.Context) {
	actorID, ok := actor(ctx)
	if !ok {
		return
	}
	var req ComplaintRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.BindingMessage(err))
		return
	}

	complaint, err := c.ComplaintService.Create(ctx.Request.Context(), actorID, req.input())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, complaint)
}

// List godoc
// @Summary List complaints visible to the caller
// @Description Students see their own, wardens and faculty their categories, admins everything
// @Tags complaints
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Complaint}
// @Router /complaints [get]
func (c *ComplaintController) List(ctx *gin.Context) {
	c.list(ctx, false)
}

// ListResolved godoc
// @Summary List resolved complaints visible to the caller
// @Tags complaints
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Complaint}
// @Router /complaints/resolved [get]
func (c *ComplaintController) ListResolved(ctx *gin.Context) {
	c.list(ctx, true)
}

func (c *ComplaintController) list(ctx *gin.Context, resolvedOnly bool) {
	actorID, ok := actor(ctx)
	if !ok {
		return
	}
	complaints, err := c.ComplaintService.ListForIdentity(ctx.Request.Context(), actorID, resolvedOnly)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, complaints)
}

// ListByUser godoc
// @Summary List a user's complaints
// @Description Allowed for the user themself and for admins
// @Tags complaints
// @Produce  json
// @Security ApiKeyAuth
// @Param   userId path int true "User ID"
// @Success 200 {object} util.Response{data=[]model.Complaint}
// @Failure 403 {object} util.Response
// @Router /complaints/user/{userId} [get]
func (c *ComplaintController) ListByUser(ctx *gin.Context) {
	actorID, ok := actor(ctx)
	if !ok {
		return
	}
	userID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}
	complaints, err := c.ComplaintService.ListByUser(ctx.Request.Context(), actorID, userID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, complaints)
}

// Get godoc
// @Summary Get one complaint
// @Tags complaints
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Complaint ID"
// @Success 200 {object} util.Response{data=model.Complaint}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /complaints/{id} [get]
func (c *ComplaintController) Get(ctx *gin.Context) {
	actorID, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	complaint, err := c.ComplaintService.GetByID(ctx.Request.Context(), actorID, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, complaint)
}

// Update godoc
// @Summary Edit an open complaint
// @Description Only the filing student, and only while the complaint is not resolved or rejected
// @Tags complaints
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Complaint ID"
// @Param   body body ComplaintRequest true "New field values"
// @Success 200 {object} util.Response{data=model.Complaint}
// @Failure 400 {object} util.Response "Closed complaint or invalid input"
// @Failure 403 {object} util.Response
// @Router /complaints/{id} [put]
func (c *ComplaintController) Update(ctx *gin.Context) {
	actorID, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req ComplaintRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.BindingMessage(err))
		return
	}
	complaint, err := c.ComplaintService.UpdateFields(ctx.Request.Context(), actorID, id, req.input())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, complaint)
}

// UpdateStatus godoc
// @Summary Set status
// @Tags complaints
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Complaint ID"
// @Param   body body UpdateStatusRequest true "Status"
// @Success 200 {object} util.Response{data=model.Complaint}
// @Failure 403 {object} util.Response
// @Router /complaints/{id}/status [put]
func (c *ComplaintController) UpdateStatus(ctx *gin.Context) {
	actorID, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.BindingMessage(err))
		return
	}
	complaint, err := c.ComplaintService.UpdateStatus(ctx.Request.Context(), actorID, id, req.Status)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, complaint)
}

// UpdatePriority godoc
// @Summary Set priority
// @Tags complaints
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Complaint ID"
// @Param   body body UpdatePriorityRequest true "Priority"
// @Success 200 {object} util.Response{data=model.Complaint}
// @Failure 403 {object} util.Response
// @Router /complaints/{id}/priority [put]
func (c *ComplaintController) UpdatePriority(ctx *gin.Context) {
	actorID, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req UpdatePriorityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.BindingMessage(err))
		return
	}
	complaint, err := c.ComplaintService.UpdatePriority(ctx.Request.Context(), actorID, id, req.Priority)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, complaint)
}

// TransitionStatus godoc
// @Summary Change status with a progress note
// @Description Appends one status history entry. Wardens and faculty are limited to their categories.
// @Tags complaints
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Complaint ID"
// @Param   body body StatusChangeRequest true "Status change"
// @Success 200 {object} util.Response{data=model.Complaint}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /complaints/{id}/update-status [put]
func (c *ComplaintController) TransitionStatus(ctx *gin.Context) {
	actorID, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req StatusChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.BindingMessage(err))
		return
	}
	complaint, _, err := c.ComplaintService.TransitionStatus(ctx.Request.Context(), actorID, id, service.StatusChange{
		Status:                 req.Status,
		Comments:               req.Comments,
		NextSteps:              req.NextSteps,
		ExpectedCompletionDate: req.ExpectedCompletionDate,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, complaint)
}

// Delete godoc
// @Summary Delete a complaint and its history
// @Tags complaints
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Complaint ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /complaints/{id} [delete]
func (c *ComplaintController) Delete(ctx *gin.Context) {
	actorID, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.ComplaintService.Delete(ctx.Request.Context(), actorID, id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Complaint deleted successfully"})
}

// History godoc
// @Summary Status history, newest first
// @Tags complaints
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Complaint ID"
// @Success 200 {object} util.Response{data=[]model.StatusUpdate}
// @Failure 403 {object} util.Response
// @Router /complaints/{id}/status-history [get]
func (c *ComplaintController) History(ctx *gin.Context) {
	actorID, ok := actor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	history, err := c.LedgerService.History(ctx.Request.Context(), actorID, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, history)
}
