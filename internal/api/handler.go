package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/emicklei/go-restful/v3"
	"github.com/medbench/medbench/internal/api/middleware"
	"github.com/medbench/medbench/internal/gateway"
	"github.com/medbench/medbench/internal/models"
	"github.com/medbench/medbench/internal/orchestrator"
	"github.com/medbench/medbench/internal/store"
	"github.com/rs/zerolog"
)

type Handler struct {
	orchestrator *orchestrator.Orchestrator
	logger       *zerolog.Logger
}

func NewHandler(orch *orchestrator.Orchestrator, logger *zerolog.Logger) *Handler {
	return &Handler{
		orchestrator: orch,
		logger:       logger,
	}
}

// POST /api/v1/test
func (h *Handler) Test(req *restful.Request, resp *restful.Response) {
	var testRequest TestRequest
	if err := req.ReadEntity(&testRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if testRequest.Question == "" {
		middleware.HandleError(resp, errors.New("question must not be empty"), http.StatusBadRequest)
		return
	}

	targets := make([]models.ModelID, 0, len(testRequest.Models))
	for _, id := range testRequest.Models {
		targets = append(targets, models.ModelID(id))
	}

	ctx := req.Request.Context()
	result, err := h.orchestrator.RunTurn(ctx, orchestrator.TurnRequest{
		ConversationID: testRequest.ConversationID,
		Message:        testRequest.Question,
		Models:         targets,
		RunsPerModel:   testRequest.NumRuns,
	})
	if err != nil {
		h.writeError(resp, err)
		return
	}

	h.logger.Info().
		Int64("conversation_id", result.Conversation.ID).
		Int("turn", result.Turn.TurnNumber).
		Int("results", len(result.Results)).
		Msg("Turn complete")

	resp.WriteHeaderAndEntity(http.StatusOK, newTestResponse(result))
}

// POST /api/v1/conversations/{conversation_id}/score
func (h *Handler) Score(req *restful.Request, resp *restful.Response) {
	conversationID, ok := h.conversationID(req, resp)
	if !ok {
		return
	}

	ctx := req.Request.Context()
	result, err := h.orchestrator.ScoreConversation(ctx, conversationID)
	if err != nil {
		h.writeError(resp, err)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// GET /api/v1/conversations/{conversation_id}/aggregate
func (h *Handler) Aggregate(req *restful.Request, resp *restful.Response) {
	conversationID, ok := h.conversationID(req, resp)
	if !ok {
		return
	}

	ctx := req.Request.Context()
	result, err := h.orchestrator.Aggregate(ctx, conversationID)
	if err != nil {
		h.writeError(resp, err)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// GET /api/v1/conversations/{conversation_id}
func (h *Handler) Conversation(req *restful.Request, resp *restful.Response) {
	conversationID, ok := h.conversationID(req, resp)
	if !ok {
		return
	}

	ctx := req.Request.Context()
	conv, turns, err := h.orchestrator.History(ctx, conversationID)
	if err != nil {
		h.writeError(resp, err)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, ConversationResponse{Conversation: conv, Turns: turns})
}

// GET /api/v1/models
func (h *Handler) Models(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, ModelsResponse{Models: h.orchestrator.SupportedModels()})
}

// GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	})
}

func (h *Handler) conversationID(req *restful.Request, resp *restful.Response) (int64, bool) {
	raw := req.PathParameter("conversation_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleError(resp, errors.New("conversation_id must be a positive integer"), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(resp *restful.Response, err error) {
	var configErr *gateway.ConfigurationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		middleware.HandleError(resp, err, http.StatusNotFound)
	case errors.As(err, &configErr):
		middleware.HandleError(resp, err, http.StatusBadRequest)
	default:
		h.logger.Error().Err(err).Msg("request failed")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
	}
}
