package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/algotutor-api/internal/dto"
	"github.com/noah-isme/algotutor-api/internal/middleware"
	"github.com/noah-isme/algotutor-api/internal/service"
	"github.com/noah-isme/algotutor-api/internal/utils"
)

// QuestionHandler serves the student Q&A board.
type QuestionHandler struct {
	questions service.QuestionService
	locales   *LocaleResolver
	logger    zerolog.Logger
}

// NewQuestionHandler constructs the handler.
func NewQuestionHandler(questions service.QuestionService, locales *LocaleResolver, logger zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		questions: questions,
		locales:   locales,
		logger:    logger.With().Str("component", "question_handler").Logger(),
	}
}

// Register wires question routes. Students submit anonymously; answering
// and pinning need an authenticated principal.
func (h *QuestionHandler) Register(router fiber.Router, protect fiber.Handler) {
	signedIn := middleware.AuthOptions{}

	router.Get("/pinned", h.pinned)
	router.Post("", middleware.RateLimit("questions", 5, time.Minute), h.submit)
	router.Get("/pending", protect, middleware.WithAuth(h.pending, signedIn))
	router.Get("/answered", protect, middleware.WithAuth(h.answered, signedIn))
	router.Put("/:id/answer", protect, middleware.WithAuth(h.answer, signedIn))
	router.Post("/:id/pin", protect, middleware.WithAuth(h.pin, signedIn))
}

func (h *QuestionHandler) pinned(c *fiber.Ctx) error {
	items := h.questions.Pinned()
	return utils.OK(c, dto.NewPublicQuestionResponseSlice(items), "pinned questions", fiber.Map{"total": len(items)})
}

func (h *QuestionHandler) submit(c *fiber.Ctx) error {
	var payload dto.QuestionSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	question, err := h.questions.Submit(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to submit question")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "question submitted", fiber.Map{"id": question.ID})
}

func (h *QuestionHandler) pending(c *fiber.Ctx) error {
	items, err := h.questions.Pending(currentPrincipal(c))
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to list questions")
	}
	return utils.OK(c, dto.NewQuestionResponseSlice(items), "pending questions", fiber.Map{"total": len(items)})
}

func (h *QuestionHandler) answered(c *fiber.Ctx) error {
	items, err := h.questions.Answered(currentPrincipal(c))
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to list questions")
	}
	return utils.OK(c, dto.NewQuestionResponseSlice(items), "answered questions", fiber.Map{"total": len(items)})
}

func (h *QuestionHandler) answer(c *fiber.Ctx) error {
	var payload dto.AnswerRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	question, applied, err := h.questions.Answer(c.UserContext(), currentPrincipal(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to answer question")
	}
	return sendMutation(c, "answer saved", dto.NewQuestionResponse(question), applied)
}

func (h *QuestionHandler) pin(c *fiber.Ctx) error {
	question, applied, err := h.questions.TogglePin(c.UserContext(), currentPrincipal(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, h.logger, h.locales, err, "failed to pin question")
	}
	return sendMutation(c, "pin toggled", dto.NewQuestionResponse(question), applied)
}
