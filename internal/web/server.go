// Package web serves a single-page form in front of the chat backend.
// Each POST is one ask-action rendered on the server.
package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"datachat-cli/internal/api"
	"datachat-cli/internal/logger"
	"datachat-cli/internal/service"
	"datachat-cli/internal/session"
)

type Options struct {
	MaxRows int
	// Agent preselected in the form.
	Agent string
	// AllowOrigins enables CORS for these origins.
	AllowOrigins []string
}

type Server struct {
	client api.ChatAPI
	opts   Options
	engine *gin.Engine
}

func NewServer(client api.ChatAPI, opts Options) *Server {
	if opts.MaxRows <= 0 {
		opts.MaxRows = service.DefaultMaxRows
	}
	if opts.Agent == "" {
		opts.Agent = api.AgentAuto
	}
	s := &Server{client: client, opts: opts}
	s.engine = s.setupRouter()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("web UI listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Errorf("web UI on %s stopped: %v", addr, err)
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("web UI shutdown: %v", err)
			return err
		}
		logger.Infof("web UI stopped")
		return nil
	}
}

func (s *Server) setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(requestLogger())
	router.Use(gin.Recovery())

	if len(s.opts.AllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: s.opts.AllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost},
			AllowHeaders: []string{"Content-Type", "X-Request-ID"},
			MaxAge:       12 * time.Hour,
		}))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})
	router.GET("/", s.handleIndex)
	router.POST("/ask", s.handleAskForm)

	apiGroup := router.Group("/api")
	apiGroup.POST("/ask", s.handleAskJSON)

	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		logger.WithFields(logger.Fields{
			"request_id":  requestID,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("web request")
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	st := session.New(s.opts.MaxRows)
	s.writePage(c, http.StatusOK, newPageData(st, "", s.opts.Agent))
}

// ask runs one ask-action to completion.
func (s *Server) ask(ctx context.Context, question, agent string) (session.State, error) {
	st, req, err := session.Ask(session.New(s.opts.MaxRows), question, agent)
	if err != nil {
		return st, err
	}
	resp, raw, err := s.client.Chat(ctx, req)
	st = session.Complete(st, st.Seq, resp, raw, err)
	if err != nil {
		logger.WithError(err).WithField("kind", session.ErrorLabel(err)).Warn("chat request failed")
	}
	return st, nil
}

func (s *Server) handleAskForm(c *gin.Context) {
	question := c.PostForm("question")
	agent := strings.ToLower(strings.TrimSpace(c.PostForm("agent")))
	if !api.ValidAgent(agent) {
		agent = s.opts.Agent
	}

	st, err := s.ask(c.Request.Context(), question, agent)
	status := http.StatusOK
	if errors.Is(err, api.ErrEmptyInput) {
		status = http.StatusBadRequest
	}
	s.writePage(c, status, newPageData(st, question, agent))
}

func (s *Server) writePage(c *gin.Context, status int, d pageData) {
	body, err := renderPage(d)
	if err != nil {
		logger.WithError(err).Error("rendering page")
		c.String(http.StatusInternalServerError, "rendering page failed")
		return
	}
	c.Data(status, "text/html; charset=utf-8", body)
}

type askRequest struct {
	Message string `json:"message"`
	Agent   string `json:"agent"`
}

type askResponse struct {
	AnswerText string     `json:"answer_text"`
	SQL        string     `json:"sql"`
	Columns    []string   `json:"columns"`
	Rows       [][]string `json:"rows"`
	RowCount   int        `json:"row_count"`
	Truncated  bool       `json:"truncated"`
	Notice     string     `json:"notice,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	Agent      string     `json:"agent,omitempty"`
	Mode       string     `json:"mode,omitempty"`
	Source     string     `json:"source"`
	Tab        string     `json:"tab"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// handleAskJSON returns the normalized result. Cells are plain text, the
// caller escapes them for its own output.
func (s *Server) handleAskJSON(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorBody{Kind: "bad_request", Message: err.Error()}})
		return
	}
	agent := strings.ToLower(strings.TrimSpace(req.Agent))
	if agent != "" && !api.ValidAgent(agent) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorBody{Kind: "bad_request", Message: "unknown agent " + req.Agent}})
		return
	}

	st, err := s.ask(c.Request.Context(), req.Message, agent)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorBody{Kind: session.ErrorLabel(err), Message: err.Error()}})
		return
	}
	if st.Outcome == session.OutcomeFailed {
		c.JSON(statusFor(st.Err), gin.H{"error": errorBody{Kind: session.ErrorLabel(st.Err), Message: st.Err.Error()}})
		return
	}

	tbl := st.Table(service.PlainCell)
	res := st.Result
	c.JSON(http.StatusOK, askResponse{
		AnswerText: res.AnswerText,
		SQL:        res.SQL,
		Columns:    res.Columns,
		Rows:       tbl.Body,
		RowCount:   tbl.RowCount,
		Truncated:  tbl.Truncated,
		Notice:     tbl.Notice,
		Notes:      res.Notes,
		Agent:      res.Agent,
		Mode:       res.Mode,
		Source:     res.Source.String(),
		Tab:        st.Tab.String(),
	})
}

func statusFor(err error) int {
	switch {
	case api.IsKind(err, api.KindTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusBadGateway
	}
}
