package api

// Kind identifies a stream endpoint and the producer that serves it.
type Kind string

const (
	KindText          Kind = "text"
	KindAudio         Kind = "audio"
	KindVideo         Kind = "video"
	KindData          Kind = "data"
	KindLogs          Kind = "logs"
	KindMetrics       Kind = "metrics"
	KindChat          Kind = "chat"
	KindTranscription Kind = "transcription"
	KindTranslation   Kind = "translation"
	KindAnalysis      Kind = "analysis"
)

// Kinds lists every stream kind in endpoint registration order.
var Kinds = []Kind{
	KindText,
	KindAudio,
	KindVideo,
	KindData,
	KindLogs,
	KindMetrics,
	KindChat,
	KindTranscription,
	KindTranslation,
	KindAnalysis,
}

// contentTypes maps each kind to the media type of its response body.
var contentTypes = map[Kind]string{
	KindText:          "text/plain",
	KindAudio:         "audio/wav",
	KindVideo:         "video/mp4",
	KindData:          "application/json",
	KindLogs:          "text/plain",
	KindMetrics:       "application/json",
	KindChat:          "text/event-stream",
	KindTranscription: "text/plain",
	KindTranslation:   "text/plain",
	KindAnalysis:      "application/json",
}

// ContentType returns the response media type for the kind.
func (k Kind) ContentType() string {
	if ct, ok := contentTypes[k]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Valid reports whether k is a known stream kind.
func (k Kind) Valid() bool {
	_, ok := contentTypes[k]
	return ok
}

// StreamRequest is the validated input of a single stream. Implementations
// are created once per inbound call and never mutated after validation.
type StreamRequest interface {
	Kind() Kind
	// Validate applies defaults and checks ranges. It returns nil when the
	// request may be handed to a producer.
	Validate() *APIError
}

// TextRequest streams the given text in fixed-size slices.
type TextRequest struct {
	Text      string `json:"text"`
	ChunkSize *int   `json:"chunk_size,omitempty"`
}

// AudioRequest streams placeholder audio blocks.
type AudioRequest struct {
	AudioURL   string `json:"audio_url"`
	SampleRate *int   `json:"sample_rate,omitempty"`
}

// VideoRequest streams placeholder frames paced by FPS.
type VideoRequest struct {
	VideoURL string `json:"video_url"`
	FPS      *int   `json:"fps,omitempty"`
}

// Data output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXML  = "xml"
)

// DataRequest streams the key/value pairs of Data in the requested format.
type DataRequest struct {
	Data   Fields `json:"data"`
	Format string `json:"format,omitempty"`
}

// Log levels accepted by the logs stream.
const (
	LevelDebug    = "DEBUG"
	LevelInfo     = "INFO"
	LevelWarning  = "WARNING"
	LevelError    = "ERROR"
	LevelCritical = "CRITICAL"
)

// LogsRequest streams Lines synthetic log lines at LogLevel.
type LogsRequest struct {
	LogLevel string `json:"log_level,omitempty"`
	Lines    *int   `json:"lines,omitempty"`
}

// MetricsRequest streams system metrics until the client goes away.
// Interval is the pacing in seconds.
type MetricsRequest struct {
	Interval *int `json:"interval,omitempty"`
}

// ChatRequest streams a chat reply as server-sent events.
type ChatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

// TranscriptionRequest streams transcript tokens for an audio URL.
type TranscriptionRequest struct {
	AudioURL string `json:"audio_url"`
	Language string `json:"language,omitempty"`
}

// TranslationRequest streams Text word by word tagged with TargetLang.
type TranslationRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang"`
}

// Analysis kinds.
const (
	AnalysisSentiment = "sentiment"
	AnalysisEntity    = "entity"
	AnalysisTopic     = "topic"
	AnalysisSummary   = "summary"
)

// AnalysisRequest streams a precomputed analysis result for Content.
type AnalysisRequest struct {
	Content      string `json:"content"`
	AnalysisType string `json:"analysis_type"`
}

func (*TextRequest) Kind() Kind          { return KindText }
func (*AudioRequest) Kind() Kind         { return KindAudio }
func (*VideoRequest) Kind() Kind         { return KindVideo }
func (*DataRequest) Kind() Kind          { return KindData }
func (*LogsRequest) Kind() Kind          { return KindLogs }
func (*MetricsRequest) Kind() Kind       { return KindMetrics }
func (*ChatRequest) Kind() Kind          { return KindChat }
func (*TranscriptionRequest) Kind() Kind { return KindTranscription }
func (*TranslationRequest) Kind() Kind   { return KindTranslation }
func (*AnalysisRequest) Kind() Kind      { return KindAnalysis }
