package api

import (
	"encoding/json"
	"testing"
)

func TestAPIErrorError(t *testing.T) {
	err := NewValidationError("chunk_size", "chunk_size must be between 1 and 1000")
	want := "invalid_request: chunk_size must be between 1 and 1000 (param: chunk_size)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	err = NewServerError("boom")
	if err.Error() != "server_error: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		wantType ErrorType
		wantCode string
	}{
		{"validation", NewValidationError("p", "m"), ErrorTypeInvalidRequest, CodeValidation},
		{"invalid request", NewInvalidRequestError("p", "m"), ErrorTypeInvalidRequest, ""},
		{"authentication", NewAuthenticationError("m"), ErrorTypeAuthentication, CodeMissingCredential},
		{"permission", NewPermissionError("m"), ErrorTypePermission, CodeInvalidCredential},
		{"too many requests", NewTooManyRequestsError(CodeRateLimited, "m"), ErrorTypeTooManyRequests, CodeRateLimited},
		{"not found", NewNotFoundError("m"), ErrorTypeNotFound, ""},
		{"server", NewServerError("m"), ErrorTypeServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", tt.err.Type, tt.wantType)
			}
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
		})
	}
}

func TestErrorResponseJSON(t *testing.T) {
	data, err := json.Marshal(ErrorResponse{Error: NewPermissionError("Invalid API key")})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"error":{"type":"permission_error","code":"invalid_credential","message":"Invalid API key"}}`
	if string(data) != want {
		t.Errorf("JSON = %s, want %s", data, want)
	}
}
