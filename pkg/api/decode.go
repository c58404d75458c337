package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// NewRequest returns an empty request value for the kind, or nil when the
// kind is unknown.
func NewRequest(kind Kind) StreamRequest {
	switch kind {
	case KindText:
		return &TextRequest{}
	case KindAudio:
		return &AudioRequest{}
	case KindVideo:
		return &VideoRequest{}
	case KindData:
		return &DataRequest{}
	case KindLogs:
		return &LogsRequest{}
	case KindMetrics:
		return &MetricsRequest{}
	case KindChat:
		return &ChatRequest{}
	case KindTranscription:
		return &TranscriptionRequest{}
	case KindTranslation:
		return &TranslationRequest{}
	case KindAnalysis:
		return &AnalysisRequest{}
	}
	return nil
}

// DecodeRequest decodes a JSON body into the request type for kind and
// validates it. Unknown fields are ignored.
func DecodeRequest(kind Kind, body []byte) (StreamRequest, *APIError) {
	req := NewRequest(kind)
	if req == nil {
		return nil, NewNotFoundError(fmt.Sprintf("unknown stream kind %q", kind))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, NewValidationError("body", "request body is required")
	}

	if err := json.Unmarshal(body, req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, NewValidationError(typeErr.Field, fmt.Sprintf("%s has the wrong type: expected %s", typeErr.Field, typeErr.Value))
		}
		// Fields only backs the data mapping.
		if errors.Is(err, ErrNotObject) {
			return nil, NewValidationError("data", "data must be a JSON object")
		}
		return nil, NewInvalidRequestError("body", "invalid JSON: "+err.Error())
	}

	if apiErr := req.Validate(); apiErr != nil {
		return nil, apiErr
	}
	return req, nil
}

// DecodeMetricsQuery builds a metrics request from query parameters.
// defaultInterval is used when the interval parameter is absent.
func DecodeMetricsQuery(q url.Values, defaultInterval int) (*MetricsRequest, *APIError) {
	req := &MetricsRequest{}
	if raw := q.Get("interval"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, NewValidationError("interval", "interval must be an integer")
		}
		req.Interval = &n
	} else if defaultInterval > 0 {
		req.Interval = intPtr(defaultInterval)
	}
	if apiErr := req.Validate(); apiErr != nil {
		return nil, apiErr
	}
	return req, nil
}
