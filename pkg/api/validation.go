package api

import (
	"fmt"
	"net/url"
	"unicode/utf8"
)

// Defaults and bounds for stream request fields.
const (
	DefaultChunkSize  = 10
	MinChunkSize      = 1
	MaxChunkSize      = 1000
	DefaultSampleRate = 44100
	MinSampleRate     = 8000
	MaxSampleRate     = 192000
	DefaultFPS        = 30
	MinFPS            = 1
	MaxFPS            = 120
	DefaultLogLines   = 100
	MinLogLines       = 1
	MaxLogLines       = 10000
	DefaultInterval   = 1
	MinInterval       = 1
	MaxInterval       = 60
	DefaultChatModel  = "gpt-3.5-turbo"
	DefaultLanguage   = "en"
	MinLanguageLen    = 2
	MaxLanguageLen    = 5
)

var (
	dataFormats   = map[string]bool{FormatJSON: true, FormatCSV: true, FormatXML: true}
	logLevels     = map[string]bool{LevelDebug: true, LevelInfo: true, LevelWarning: true, LevelError: true, LevelCritical: true}
	analysisTypes = map[string]bool{AnalysisSentiment: true, AnalysisEntity: true, AnalysisTopic: true, AnalysisSummary: true}
)

func (r *TextRequest) Validate() *APIError {
	if utf8.RuneCountInString(r.Text) == 0 {
		return NewValidationError("text", "text must not be empty")
	}
	if r.ChunkSize == nil {
		r.ChunkSize = intPtr(DefaultChunkSize)
	}
	return checkRange("chunk_size", *r.ChunkSize, MinChunkSize, MaxChunkSize)
}

func (r *AudioRequest) Validate() *APIError {
	if err := checkURL("audio_url", r.AudioURL); err != nil {
		return err
	}
	if r.SampleRate == nil {
		r.SampleRate = intPtr(DefaultSampleRate)
	}
	return checkRange("sample_rate", *r.SampleRate, MinSampleRate, MaxSampleRate)
}

func (r *VideoRequest) Validate() *APIError {
	if err := checkURL("video_url", r.VideoURL); err != nil {
		return err
	}
	if r.FPS == nil {
		r.FPS = intPtr(DefaultFPS)
	}
	return checkRange("fps", *r.FPS, MinFPS, MaxFPS)
}

func (r *DataRequest) Validate() *APIError {
	if len(r.Data) == 0 {
		return NewValidationError("data", "data must contain at least one key")
	}
	if r.Format == "" {
		r.Format = FormatJSON
	}
	if !dataFormats[r.Format] {
		return NewValidationError("format", "format must be json, csv, or xml")
	}
	return nil
}

func (r *LogsRequest) Validate() *APIError {
	if r.LogLevel == "" {
		r.LogLevel = LevelInfo
	}
	if !logLevels[r.LogLevel] {
		return NewValidationError("log_level", "log_level must be one of DEBUG, INFO, WARNING, ERROR, CRITICAL")
	}
	if r.Lines == nil {
		r.Lines = intPtr(DefaultLogLines)
	}
	return checkRange("lines", *r.Lines, MinLogLines, MaxLogLines)
}

func (r *MetricsRequest) Validate() *APIError {
	if r.Interval == nil {
		r.Interval = intPtr(DefaultInterval)
	}
	return checkRange("interval", *r.Interval, MinInterval, MaxInterval)
}

func (r *ChatRequest) Validate() *APIError {
	if utf8.RuneCountInString(r.Message) == 0 {
		return NewValidationError("message", "message must not be empty")
	}
	if r.Model == "" {
		r.Model = DefaultChatModel
	}
	return nil
}

func (r *TranscriptionRequest) Validate() *APIError {
	if err := checkURL("audio_url", r.AudioURL); err != nil {
		return err
	}
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	return checkLanguage("language", r.Language)
}

func (r *TranslationRequest) Validate() *APIError {
	if utf8.RuneCountInString(r.Text) == 0 {
		return NewValidationError("text", "text must not be empty")
	}
	if r.SourceLang == "" {
		r.SourceLang = DefaultLanguage
	}
	if err := checkLanguage("source_lang", r.SourceLang); err != nil {
		return err
	}
	if r.TargetLang == "" {
		return NewValidationError("target_lang", "target_lang is required")
	}
	return checkLanguage("target_lang", r.TargetLang)
}

func (r *AnalysisRequest) Validate() *APIError {
	if utf8.RuneCountInString(r.Content) == 0 {
		return NewValidationError("content", "content must not be empty")
	}
	if r.AnalysisType == "" {
		return NewValidationError("analysis_type", "analysis_type is required")
	}
	if !analysisTypes[r.AnalysisType] {
		return NewValidationError("analysis_type", "analysis_type must be one of sentiment, entity, topic, summary")
	}
	return nil
}

func checkRange(param string, v, lo, hi int) *APIError {
	if v < lo || v > hi {
		return NewValidationError(param, fmt.Sprintf("%s must be between %d and %d", param, lo, hi))
	}
	return nil
}

func checkLanguage(param, code string) *APIError {
	n := utf8.RuneCountInString(code)
	if n < MinLanguageLen || n > MaxLanguageLen {
		return NewValidationError(param, fmt.Sprintf("%s must be %d to %d characters", param, MinLanguageLen, MaxLanguageLen))
	}
	return nil
}

// checkURL accepts absolute http and https URLs with a host.
func checkURL(param, raw string) *APIError {
	if raw == "" {
		return NewValidationError(param, param+" is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return NewValidationError(param, param+" must be a valid http or https URL")
	}
	return nil
}

func intPtr(i int) *int { return &i }
