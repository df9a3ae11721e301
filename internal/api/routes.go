package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/medbench/medbench/internal/api/middleware"
	"github.com/medbench/medbench/internal/models"
	"github.com/medbench/medbench/internal/orchestrator"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("/health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.GET("/models").
			To(handler.Models).
			Doc("List supported model ids").
			Metadata(restfulspec.KeyOpenAPITags, []string{"models"}).
			Writes(ModelsResponse{}).
			Returns(200, "OK", ModelsResponse{}))

	ws.
		Route(ws.POST("/test").
			To(handler.Test).
			Doc("Run one benchmark turn across the selected models").
			Metadata(restfulspec.KeyOpenAPITags, []string{"benchmark"}).
			Reads(TestRequest{}).
			Writes(TestResponse{}).
			Returns(200, "OK", TestResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(404, "Conversation Not Found", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/conversations/{conversation_id}/score").
			To(handler.Score).
			Doc("Score every unscored response of a conversation").
			Metadata(restfulspec.KeyOpenAPITags, []string{"benchmark"}).
			Param(ws.PathParameter("conversation_id", "Conversation id").DataType("integer")).
			Writes(orchestrator.ScoreResult{}).
			Returns(200, "OK", orchestrator.ScoreResult{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(404, "Conversation Not Found", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/conversations/{conversation_id}/aggregate").
			To(handler.Aggregate).
			Doc("Aggregate scored responses into per-model statistics").
			Metadata(restfulspec.KeyOpenAPITags, []string{"benchmark"}).
			Param(ws.PathParameter("conversation_id", "Conversation id").DataType("integer")).
			Writes(models.AggregateResult{}).
			Returns(200, "OK", models.AggregateResult{}).
			Returns(404, "Conversation Not Found", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/conversations/{conversation_id}").
			To(handler.Conversation).
			Doc("Fetch the full turn/response log of a conversation").
			Metadata(restfulspec.KeyOpenAPITags, []string{"benchmark"}).
			Param(ws.PathParameter("conversation_id", "Conversation id").DataType("integer")).
			Writes(ConversationResponse{}).
			Returns(200, "OK", ConversationResponse{}).
			Returns(404, "Conversation Not Found", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}
