// Package judgehttp exposes the judging pipeline over HTTP: one endpoint
// per language plus a generic endpoint taking a language field, per
// spec.md §6.
package judgehttp

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"codejudge/internal/metrics"
	"codejudge/internal/model"
	"codejudge/internal/service"
	appErr "codejudge/pkg/errors"
)

// Handler binds a Service to gin routes.
type Handler struct {
	svc *service.Service
}

// NewHandler builds a Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register wires one route per known language plus the generic endpoint,
// and the Prometheus scrape endpoint, onto r.
func (h *Handler) Register(r gin.IRouter, authMiddleware gin.HandlerFunc) {
	group := r.Group("/judge")
	if authMiddleware != nil {
		group.Use(authMiddleware)
	}

	for _, lang := range []model.Language{model.Java, model.Python, model.C, model.Cpp, model.Go, model.CSharp} {
		lang := lang
		group.POST("/"+languagePath(lang), func(c *gin.Context) {
			h.judge(c, lang)
		})
	}
	group.POST("", func(c *gin.Context) {
		lang := model.Language(c.PostForm("language"))
		if lang == "" {
			writeError(c, appErr.New(appErr.InvalidParams).WithMessage("language field is required"))
			return
		}
		h.judge(c, lang)
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func (h *Handler) judge(c *gin.Context, lang model.Language) {
	req, err := parseRequest(c, lang)
	if err != nil {
		writeError(c, err)
		return
	}

	resp, err := h.svc.Judge(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func parseRequest(c *gin.Context, lang model.Language) (model.Request, error) {
	sourceFile, sourceHeader, err := c.Request.FormFile("sourceCode")
	if err != nil {
		return model.Request{}, appErr.New(appErr.InvalidParams).WithMessage("sourceCode file is required")
	}
	defer sourceFile.Close()
	sourceBytes, err := io.ReadAll(sourceFile)
	if err != nil {
		return model.Request{}, appErr.Wrapf(err, appErr.InvalidParams, "read sourceCode failed")
	}

	expectedFile, _, err := c.Request.FormFile("expectedOutput")
	if err != nil {
		return model.Request{}, appErr.New(appErr.InvalidParams).WithMessage("expectedOutput file is required")
	}
	defer expectedFile.Close()
	expectedBytes, err := io.ReadAll(expectedFile)
	if err != nil {
		return model.Request{}, appErr.Wrapf(err, appErr.InvalidParams, "read expectedOutput failed")
	}

	req := model.Request{
		Language:       lang,
		SourceCode:     sourceBytes,
		SourceFilename: sourceHeader.Filename,
		ExpectedOutput: expectedBytes,
	}

	if inputFile, _, err := c.Request.FormFile("input"); err == nil {
		defer inputFile.Close()
		inputBytes, err := io.ReadAll(inputFile)
		if err != nil {
			return model.Request{}, appErr.Wrapf(err, appErr.InvalidParams, "read input failed")
		}
		req.Input = inputBytes
		req.HasInput = true
	}

	timeLimit, err := strconv.Atoi(c.PostForm("timeLimit"))
	if err != nil {
		return model.Request{}, appErr.New(appErr.InvalidParams).WithMessage("timeLimit must be an integer")
	}
	req.TimeLimitSec = timeLimit

	memoryLimit, err := strconv.Atoi(c.PostForm("memoryLimit"))
	if err != nil {
		return model.Request{}, appErr.New(appErr.InvalidParams).WithMessage("memoryLimit must be an integer")
	}
	req.MemoryLimitMB = memoryLimit

	return req, nil
}

func writeError(c *gin.Context, err error) {
	structured := appErr.GetError(err)
	c.JSON(structured.HTTPStatus(), gin.H{
		"statusCode": int(structured.Code),
		"status":     "error",
		"error":      structured.Message,
	})
}

func languagePath(lang model.Language) string {
	switch lang {
	case model.Java:
		return "java"
	case model.Python:
		return "python"
	case model.C:
		return "c"
	case model.Cpp:
		return "cpp"
	case model.Go:
		return "go"
	case model.CSharp:
		return "csharp"
	default:
		return string(lang)
	}
}
