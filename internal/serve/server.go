package serve

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"sermonbot/pkg/answer"
	"sermonbot/pkg/retriever"
	"sermonbot/pkg/vectorstore"
)

// ChatRequest is the POST /chat body.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply envelope. The chat endpoint always answers with
// 200 and a friendly message; only malformed requests get an error status.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse is returned for malformed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports service liveness and index size.
type HealthResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}

// Server is the HTTP chat surface over the retrieval pipeline.
type Server struct {
	echo      *echo.Echo
	retriever *retriever.Retriever
	generator *answer.Generator
	store     vectorstore.Store
	logger    *slog.Logger
}

// NewServer wires the routes.
func NewServer(ret *retriever.Retriever, gen *answer.Generator, store vectorstore.Store, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:      e,
		retriever: ret,
		generator: gen,
		store:     store,
		logger:    logger,
	}

	e.POST("/chat", s.handleChat)
	e.GET("/health", s.handleHealth)

	return s
}

// Start blocks serving on addr.
func (s *Server) Start(addr string) error {
	s.logger.Info("chat server listening", "addr", addr)
	return s.echo.Start(addr)
}

// ServeHTTP makes the server testable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
	}

	question := strings.TrimSpace(req.Message)
	if question == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no message provided"})
	}

	ctx := c.Request().Context()

	if answer.IsSmallTalk(question) {
		return c.JSON(http.StatusOK, ChatResponse{Answer: s.generator.SmallTalk(ctx, question)})
	}

	res := s.retriever.Retrieve(ctx, question)

	sources := make([]answer.Source, 0, len(res.Sources))
	for _, src := range res.Sources {
		sources = append(sources, answer.Source{Title: src.Title, URL: src.URL})
	}

	return c.JSON(http.StatusOK, ChatResponse{
		Answer: s.generator.Grounded(ctx, question, res.Context, sources),
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	count, err := s.store.Count(c.Request().Context())
	if err != nil {
		s.logger.Warn("failed to count index", "error", err)
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Documents: count})
}
