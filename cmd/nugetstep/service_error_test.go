// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nugetstep/nugetstep/internal/issue"
)

func TestNewServiceError_PanicsOnNilErr(t *testing.T) {
	t.Parallel()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on nil Err, got none")
		}
		if msg, ok := r.(string); !ok || msg != "ServiceError: Err must not be nil" {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()

	newServiceError(nil, 0, "")
}

func TestServiceError_ErrorAndUnwrap(t *testing.T) {
	t.Parallel()

	underlying := errors.New("underlying error")
	svcErr := newServiceError(underlying, issue.InstallerFailedId, "")

	if svcErr.Error() != "underlying error" {
		t.Errorf("Error() = %q, want %q", svcErr.Error(), "underlying error")
	}
	if !errors.Is(svcErr, underlying) {
		t.Error("errors.Is should find underlying error via Unwrap")
	}
	if svcErr.IssueID != issue.InstallerFailedId {
		t.Errorf("IssueID = %d, want %d", svcErr.IssueID, issue.InstallerFailedId)
	}
}

func TestRenderServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		svcErr    *ServiceError
		wantExact string
		wantMore  string
	}{
		{name: "nil", svcErr: nil, wantExact: ""},
		{name: "styled message only", svcErr: newServiceError(errors.New("x"), 0, "only this"), wantExact: "only this"},
		{name: "issue catalog entry", svcErr: newServiceError(errors.New("x"), issue.ExecutableNotFoundId, "styled: "), wantMore: "styled: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			renderServiceError(&buf, tt.svcErr, "dark")

			if tt.wantMore != "" {
				if !strings.HasPrefix(buf.String(), tt.wantMore) || buf.Len() <= len(tt.wantMore) {
					t.Errorf("expected %q followed by issue help, got %q", tt.wantMore, buf.String())
				}
				return
			}
			if buf.String() != tt.wantExact {
				t.Errorf("output = %q, want %q", buf.String(), tt.wantExact)
			}
		})
	}
}
