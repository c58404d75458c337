package api

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func ptr(i int) *int { return &i }

// ---------------------------------------------------------------------------
// TestValidate
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		req       StreamRequest
		wantParam string // empty means valid
	}{
		{"text valid", &TextRequest{Text: "hello"}, ""},
		{"text empty", &TextRequest{Text: ""}, "text"},
		{"text chunk_size 0", &TextRequest{Text: "x", ChunkSize: ptr(0)}, "chunk_size"},
		{"text chunk_size 1001", &TextRequest{Text: "x", ChunkSize: ptr(1001)}, "chunk_size"},
		{"text chunk_size 1000", &TextRequest{Text: "x", ChunkSize: ptr(1000)}, ""},

		{"audio valid", &AudioRequest{AudioURL: "https://example.com/a.wav"}, ""},
		{"audio missing url", &AudioRequest{}, "audio_url"},
		{"audio bad scheme", &AudioRequest{AudioURL: "ftp://example.com/a.wav"}, "audio_url"},
		{"audio no host", &AudioRequest{AudioURL: "http://"}, "audio_url"},
		{"audio sample_rate low", &AudioRequest{AudioURL: "http://x.io/a", SampleRate: ptr(7999)}, "sample_rate"},
		{"audio sample_rate high", &AudioRequest{AudioURL: "http://x.io/a", SampleRate: ptr(192001)}, "sample_rate"},

		{"video valid", &VideoRequest{VideoURL: "http://x.io/v.mp4", FPS: ptr(120)}, ""},
		{"video fps 0", &VideoRequest{VideoURL: "http://x.io/v.mp4", FPS: ptr(0)}, "fps"},
		{"video fps 121", &VideoRequest{VideoURL: "http://x.io/v.mp4", FPS: ptr(121)}, "fps"},

		{"data valid", &DataRequest{Data: Fields{{Key: "a", Value: []byte("1")}}}, ""},
		{"data empty", &DataRequest{Data: Fields{}}, "data"},
		{"data bad format", &DataRequest{Data: Fields{{Key: "a", Value: []byte("1")}}, Format: "yaml"}, "format"},

		{"logs defaults", &LogsRequest{}, ""},
		{"logs bad level", &LogsRequest{LogLevel: "TRACE"}, "log_level"},
		{"logs lowercase level", &LogsRequest{LogLevel: "info"}, "log_level"},
		{"logs lines 10001", &LogsRequest{Lines: ptr(10001)}, "lines"},

		{"metrics defaults", &MetricsRequest{}, ""},
		{"metrics interval 61", &MetricsRequest{Interval: ptr(61)}, "interval"},

		{"chat valid", &ChatRequest{Message: "hi"}, ""},
		{"chat empty", &ChatRequest{}, "message"},

		{"transcription valid", &TranscriptionRequest{AudioURL: "https://x.io/a"}, ""},
		{"transcription short lang", &TranscriptionRequest{AudioURL: "https://x.io/a", Language: "e"}, "language"},
		{"transcription long lang", &TranscriptionRequest{AudioURL: "https://x.io/a", Language: "en-GB-x"}, "language"},

		{"translation valid", &TranslationRequest{Text: "hola", TargetLang: "de"}, ""},
		{"translation missing target", &TranslationRequest{Text: "hola"}, "target_lang"},
		{"translation bad source", &TranslationRequest{Text: "hola", SourceLang: "x", TargetLang: "de"}, "source_lang"},
		{"translation whitespace text", &TranslationRequest{Text: "   ", TargetLang: "de"}, ""},

		{"analysis valid", &AnalysisRequest{Content: "c", AnalysisType: AnalysisTopic}, ""},
		{"analysis missing type", &AnalysisRequest{Content: "c"}, "analysis_type"},
		{"analysis unknown type", &AnalysisRequest{Content: "c", AnalysisType: "emotion"}, "analysis_type"},
		{"analysis empty content", &AnalysisRequest{AnalysisType: AnalysisSummary}, "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantParam == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error on %q", tt.wantParam)
			}
			if err.Param != tt.wantParam {
				t.Errorf("Param = %q, want %q", err.Param, tt.wantParam)
			}
			if err.Type != ErrorTypeInvalidRequest {
				t.Errorf("Type = %q, want %q", err.Type, ErrorTypeInvalidRequest)
			}
			if err.Code != CodeValidation {
				t.Errorf("Code = %q, want %q", err.Code, CodeValidation)
			}
		})
	}
}

func TestValidateAppliesDefaults(t *testing.T) {
	text := &TextRequest{Text: "abc"}
	if err := text.Validate(); err != nil {
		t.Fatal(err)
	}
	if *text.ChunkSize != DefaultChunkSize {
		t.Errorf("chunk_size = %d, want %d", *text.ChunkSize, DefaultChunkSize)
	}

	audio := &AudioRequest{AudioURL: "http://x.io/a"}
	if err := audio.Validate(); err != nil {
		t.Fatal(err)
	}
	if *audio.SampleRate != DefaultSampleRate {
		t.Errorf("sample_rate = %d, want %d", *audio.SampleRate, DefaultSampleRate)
	}

	video := &VideoRequest{VideoURL: "http://x.io/v"}
	if err := video.Validate(); err != nil {
		t.Fatal(err)
	}
	if *video.FPS != DefaultFPS {
		t.Errorf("fps = %d, want %d", *video.FPS, DefaultFPS)
	}

	data := &DataRequest{Data: Fields{{Key: "k", Value: []byte(`"v"`)}}}
	if err := data.Validate(); err != nil {
		t.Fatal(err)
	}
	if data.Format != FormatJSON {
		t.Errorf("format = %q, want %q", data.Format, FormatJSON)
	}

	logs := &LogsRequest{}
	if err := logs.Validate(); err != nil {
		t.Fatal(err)
	}
	if logs.LogLevel != LevelInfo || *logs.Lines != DefaultLogLines {
		t.Errorf("logs defaults = (%q, %d), want (%q, %d)", logs.LogLevel, *logs.Lines, LevelInfo, DefaultLogLines)
	}

	chat := &ChatRequest{Message: "hi"}
	if err := chat.Validate(); err != nil {
		t.Fatal(err)
	}
	if chat.Model != DefaultChatModel {
		t.Errorf("model = %q, want %q", chat.Model, DefaultChatModel)
	}

	tr := &TranslationRequest{Text: "x", TargetLang: "fr"}
	if err := tr.Validate(); err != nil {
		t.Fatal(err)
	}
	if tr.SourceLang != DefaultLanguage {
		t.Errorf("source_lang = %q, want %q", tr.SourceLang, DefaultLanguage)
	}
}

func TestValidateMessageMentionsBounds(t *testing.T) {
	err := (&TextRequest{Text: "x", ChunkSize: ptr(5000)}).Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Message, "1") || !strings.Contains(err.Message, "1000") {
		t.Errorf("message %q should mention the allowed range", err.Message)
	}
}
