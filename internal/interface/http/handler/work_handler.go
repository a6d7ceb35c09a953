package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/dto"
	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/response"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/assignment"
)

// WorkHandler - назначения и сдачи работ.
type WorkHandler struct {
	listMyUC          *assignment.ListMyAssignmentsUseCase
	startWorkUC       *assignment.StartWorkUseCase
	submitWorkUC      *assignment.SubmitWorkUseCase
	listSubmissionsUC *assignment.ListSubmissionsUseCase
	reviewUC          *assignment.ReviewSubmissionUseCase
}

func NewWorkHandler(
	listMyUC *assignment.ListMyAssignmentsUseCase,
	startWorkUC *assignment.StartWorkUseCase,
	submitWorkUC *assignment.SubmitWorkUseCase,
	listSubmissionsUC *assignment.ListSubmissionsUseCase,
	reviewUC *assignment.ReviewSubmissionUseCase,
) *WorkHandler {
	return &WorkHandler{
		listMyUC:          listMyUC,
		startWorkUC:       startWorkUC,
		submitWorkUC:      submitWorkUC,
		listSubmissionsUC: listSubmissionsUC,
		reviewUC:          reviewUC,
	}
}

func (h *WorkHandler) ListMyAssignments(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	items, err := h.listMyUC.Execute(c.Request.Context(), actor, c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAssignmentDetailsResponses(items))
}

func (h *WorkHandler) StartWork(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(c, "id", "некорректный ID назначения")
	if !ok {
		return
	}

	o, err := h.startWorkUC.Execute(c.Request.Context(), actor, assignmentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToOrderResponse(o))
}

// SubmitWork - multipart-форма: message и файлы в поле files.
func (h *WorkHandler) SubmitWork(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(c, "id", "некорректный ID назначения")
	if !ok {
		return
	}

	uploads, release, err := formUploads(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer release()

	result, err := h.submitWorkUC.Execute(c.Request.Context(), assignment.SubmitWorkInput{
		Actor:        actor,
		AssignmentID: assignmentID,
		Message:      c.PostForm("message"),
		Files:        uploads,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.SubmissionWithOrderResponse{
		Submission: dto.ToSubmissionResponse(result.Submission),
		Order:      dto.ToOrderResponse(result.Order),
	})
}

func (h *WorkHandler) ListSubmissions(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id", "некорректный ID заказа")
	if !ok {
		return
	}

	items, err := h.listSubmissionsUC.Execute(c.Request.Context(), actor, orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToSubmissionResponses(items))
}

func (h *WorkHandler) ReviewSubmission(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	submissionID, ok := parseIDParam(c, "id", "некорректный ID сдачи")
	if !ok {
		return
	}

	var req dto.ReviewSubmissionRequest
	if !bind(c, &req) {
		return
	}

	result, err := h.reviewUC.Execute(c.Request.Context(), assignment.ReviewSubmissionInput{
		Actor:        actor,
		SubmissionID: submissionID,
		Decision:     req.Decision,
		Note:         req.Note,
		Rating:       req.Rating,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.SubmissionWithOrderResponse{
		Submission: dto.ToSubmissionResponse(result.Submission),
		Order:      dto.ToOrderResponse(result.Order),
	})
}
