package handlers

import (
	"net/http"

	"quizpanel/services"

	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	quizService     *services.QuizService
	questionService *services.QuestionService
}

func NewQuizHandler(quizService *services.QuizService, questionService *services.QuestionService) *QuizHandler {
	return &QuizHandler{
		quizService:     quizService,
		questionService: questionService,
	}
}

func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	quizzes, err := h.quizService.ListQuizzes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, quizzes, "")
}

func (h *QuizHandler) GetQuizByID(c *gin.Context) {
	quizID, ok := parseID(c, "id")
	if !ok {
		return
	}

	quiz, err := h.quizService.GetQuizByID(c.Request.Context(), quizID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, quiz, "")
}

func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindError(err))
		return
	}

	var creator *uint
	if userID, exists := c.Get("user_id"); exists {
		id := userID.(uint)
		creator = &id
	}

	quiz, err := h.quizService.CreateQuiz(c.Request.Context(), creator, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, quiz, "Quiz created successfully")
}

func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	quizID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindError(err))
		return
	}

	quiz, err := h.quizService.UpdateQuiz(c.Request.Context(), quizID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, quiz, "Quiz updated successfully")
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	quizID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.quizService.DeleteQuiz(c.Request.Context(), quizID); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, nil, "Quiz deleted successfully")
}

func (h *QuizHandler) GetQuestion(c *gin.Context) {
	questionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	question, err := h.questionService.GetQuestion(c.Request.Context(), questionID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, question, "")
}

func (h *QuizHandler) CreateQuestion(c *gin.Context) {
	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindError(err))
		return
	}

	question, err := h.questionService.CreateQuestion(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, question, "Question created successfully")
}

func (h *QuizHandler) UpdateQuestion(c *gin.Context) {
	questionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, bindError(err))
		return
	}

	question, err := h.questionService.UpdateQuestion(c.Request.Context(), questionID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, question, "Question updated successfully")
}

func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	questionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.questionService.DeleteQuestion(c.Request.Context(), questionID); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, nil, "Question deleted successfully")
}

func (h *QuizHandler) DeleteOption(c *gin.Context) {
	optionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.questionService.DeleteOption(c.Request.Context(), optionID); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, nil, "Option deleted successfully")
}
