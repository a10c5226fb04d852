package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"legal-search/answer"
	"legal-search/logging"
	"legal-search/service/query"
)

const requestIDHeader = "X-Request-Id"

type questionAnswerer interface {
	Handle(ctx context.Context, q answer.Query) (*answer.Answer, error)
}

type server struct {
	answerer    questionAnswerer
	defaultTopK int
	logger      *slog.Logger
}

func (s *server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestID())
	router.Use(cors.Default()) // Allow all origins

	router.GET("/", s.rootHandler)
	router.HEAD("/", s.rootHandler)
	router.GET("/health", s.healthHandler)
	router.POST("/query", s.queryHandler)

	return router
}

// requestID reads X-Request-Id or generates one, echoes it back and puts it on the request
// context so slog calls made with that context carry it.
func (s *server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if strings.TrimSpace(rid) == "" {
			rid = uuid.NewString()
		}

		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), rid))
		c.Writer.Header().Set(requestIDHeader, rid)

		start := time.Now()
		c.Next()

		s.logger.InfoContext(c.Request.Context(), "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

func (s *server) rootHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, query.RootBody)
}

func (s *server) healthHandler(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, query.HealthBody)
}

func (s *server) queryHandler(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()

	var payload query.RequestPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		s.logger.ErrorContext(reqCtx, "failed to bind request to expected object", slog.Any("error", err))
		ctx.JSON(http.StatusUnprocessableEntity, query.ErrorBody{Detail: err.Error()})
		return
	}
	if payload.Question == nil {
		ctx.JSON(http.StatusUnprocessableEntity, query.ErrorBody{Detail: "question is required"})
		return
	}

	result, err := s.answerer.Handle(reqCtx, payload.ToQuery(s.defaultTopK))
	if err != nil {
		s.logger.ErrorContext(reqCtx, "failed to answer question", slog.Any("error", err))
		ctx.JSON(http.StatusInternalServerError, query.ErrorBody{Detail: err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, result)
}
