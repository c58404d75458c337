package apikey

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rhuss/strom/pkg/auth"
)

const testSecret = "sk-test-secret"

func TestVerify(t *testing.T) {
	a := New(testSecret)

	tests := []struct {
		name       string
		credential string
		want       error
	}{
		{"matching", testSecret, nil},
		{"missing", "", auth.ErrMissingCredential},
		{"wrong", "sk-wrong", auth.ErrInvalidCredential},
		{"prefix of secret", "sk-test", auth.ErrInvalidCredential},
		{"secret with suffix", testSecret + "x", auth.ErrInvalidCredential},
		{"case differs", "SK-TEST-SECRET", auth.ErrInvalidCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.Verify(tt.credential)
			if tt.want == nil {
				if err != nil {
					t.Errorf("Verify(%q) = %v, want nil", tt.credential, err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Verify(%q) = %v, want %v", tt.credential, err, tt.want)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	a := New(testSecret)

	tests := []struct {
		name     string
		header   string
		set      bool
		decision auth.Decision
		wantErr  error
	}{
		{"valid key", testSecret, true, auth.Yes, nil},
		{"wrong key", "nope", true, auth.No, auth.ErrInvalidCredential},
		{"absent header", "", false, auth.Abstain, nil},
		{"empty header", "", true, auth.Abstain, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest("POST", "/api/v1/stream/text", nil)
			if tt.set {
				r.Header.Set(Header, tt.header)
			}

			result := a.Authenticate(context.Background(), r)
			if result.Decision != tt.decision {
				t.Fatalf("Decision = %v, want %v", result.Decision, tt.decision)
			}
			if tt.wantErr != nil && !errors.Is(result.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", result.Err, tt.wantErr)
			}
			if tt.decision == auth.Yes {
				if result.Identity == nil || result.Identity.Subject == "" {
					t.Fatal("expected identity with subject")
				}
				if result.Identity.Method != Method {
					t.Errorf("Method = %q, want %q", result.Identity.Method, Method)
				}
			}
		})
	}
}

func TestSubjectDoesNotLeakSecret(t *testing.T) {
	a := New(testSecret)
	r, _ := http.NewRequest("GET", "/", nil)
	r.Header.Set(Header, testSecret)

	result := a.Authenticate(context.Background(), r)
	if result.Decision != auth.Yes {
		t.Fatalf("Decision = %v, want Yes", result.Decision)
	}
	if result.Identity.Subject == testSecret {
		t.Error("subject must not be the secret itself")
	}
	if got, want := result.Identity.Subject, New(testSecret).subject; got != want {
		t.Errorf("subject not stable: %q vs %q", got, want)
	}
}

func TestEmptySecretMatchesNothing(t *testing.T) {
	a := New("")
	if err := a.Verify("anything"); !errors.Is(err, auth.ErrInvalidCredential) {
		t.Errorf("Verify = %v, want ErrInvalidCredential", err)
	}
}

func TestInChain(t *testing.T) {
	chain := auth.NewChain(New(testSecret))

	tests := []struct {
		name     string
		key      string
		decision auth.Decision
		wantErr  error
	}{
		{"valid", testSecret, auth.Yes, nil},
		{"missing", "", auth.No, auth.ErrMissingCredential},
		{"invalid", "bad", auth.No, auth.ErrInvalidCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest("GET", "/", nil)
			if tt.key != "" {
				r.Header.Set(Header, tt.key)
			}
			result := chain.Authenticate(context.Background(), r)
			if result.Decision != tt.decision {
				t.Errorf("Decision = %v, want %v", result.Decision, tt.decision)
			}
			if tt.wantErr != nil && !errors.Is(result.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", result.Err, tt.wantErr)
			}
		})
	}
}
