package errors_test

import (
	"testing"

	appErr "codejudge/pkg/errors"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		code appErr.ErrorCode
		want int
	}{
		{"invalid params", appErr.InvalidParams, 400},
		{"code too large", appErr.CodeTooLarge, 400},
		{"unknown language", appErr.LanguageNotSupported, 400},
		{"not found", appErr.NotFound, 404},
		{"throttled", appErr.JudgeQueueFull, 429},
		{"sandbox unavailable", appErr.SandboxUnavailable, 500},
		{"service unavailable", appErr.ServiceUnavailable, 503},
		{"timeout", appErr.Timeout, 504},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.HTTPStatus(); got != tt.want {
				t.Errorf("%v.HTTPStatus() = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
