package judgehttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"codejudge/internal/admission"
	"codejudge/internal/execution"
	"codejudge/internal/judgehttp"
	"codejudge/internal/model"
	"codejudge/internal/policy"
	"codejudge/internal/sandbox/driver"
	sandboxresult "codejudge/internal/sandbox/result"
	sandboxspec "codejudge/internal/sandbox/spec"
	"codejudge/internal/service"
	"codejudge/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeEngine struct {
	runFn func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error)
}

func (f *fakeEngine) Run(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
	return f.runFn(ctx, spec)
}

func (f *fakeEngine) KillExecution(ctx context.Context, executionID string) error {
	return nil
}

func newTestRouter(t *testing.T, eng *fakeEngine) *gin.Engine {
	t.Helper()
	registry := policy.NewRegistry()
	registry.Register(model.LanguagePolicy{Language: model.Python, RunCommand: "python3 {src}"})

	store, err := execution.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	v := validator.New(validator.Bounds{MinTimeSec: 1, MaxTimeSec: 10, MinMemoryMB: 16, MaxMemoryMB: 512}, registry)
	svc := service.New(service.Config{
		Validator: v,
		Registry:  registry,
		Store:     store,
		Admission: admission.New(4),
		Driver:    driver.New(eng),
	})

	r := gin.New()
	judgehttp.NewHandler(svc).Register(r, nil)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for field, content := range files {
		part, err := writer.CreateFormFile(field, field+".txt")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for field, value := range fields {
		if err := writer.WriteField(field, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestRouter_Python_Accepted(t *testing.T) {
	eng := &fakeEngine{runFn: func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
		if spec.StdoutPath != "" {
			if err := os.WriteFile(spec.StdoutPath, []byte("hi\n"), 0o644); err != nil {
				t.Fatalf("write stdout: %v", err)
			}
		}
		return sandboxresult.RunResult{ExitCode: 0}, nil
	}}
	router := newTestRouter(t, eng)

	body, contentType := multipartBody(t,
		map[string]string{"timeLimit": "5", "memoryLimit": "128"},
		map[string]string{"sourceCode": "print('hi')", "expectedOutput": "hi\n"},
	)

	req := httptest.NewRequest(http.MethodPost, "/judge/python", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body %q", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["status"] != "Accepted" {
		t.Errorf("expected status Accepted, got %v", resp["status"])
	}
}

func TestRouter_MissingSourceFile(t *testing.T) {
	eng := &fakeEngine{runFn: func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
		t.Fatal("engine should not run without a source file")
		return sandboxresult.RunResult{}, nil
	}}
	router := newTestRouter(t, eng)

	body, contentType := multipartBody(t,
		map[string]string{"timeLimit": "5", "memoryLimit": "128"},
		map[string]string{"expectedOutput": "hi\n"},
	)

	req := httptest.NewRequest(http.MethodPost, "/judge/python", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRouter_GenericEndpoint_RequiresLanguageField(t *testing.T) {
	eng := &fakeEngine{runFn: func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
		t.Fatal("engine should not run without a language field")
		return sandboxresult.RunResult{}, nil
	}}
	router := newTestRouter(t, eng)

	body, contentType := multipartBody(t,
		map[string]string{"timeLimit": "5", "memoryLimit": "128"},
		map[string]string{"sourceCode": "print('hi')", "expectedOutput": "hi\n"},
	)

	req := httptest.NewRequest(http.MethodPost, "/judge", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, &fakeEngine{runFn: func(ctx context.Context, spec sandboxspec.RunSpec) (sandboxresult.RunResult, error) {
		return sandboxresult.RunResult{}, nil
	}})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
