package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/wordbubbles/pkg/bubble"
	"github.com/matzehuels/wordbubbles/pkg/buildinfo"
	"github.com/matzehuels/wordbubbles/pkg/cloud"
	"github.com/matzehuels/wordbubbles/pkg/errors"
	"github.com/matzehuels/wordbubbles/pkg/observability"
	"github.com/matzehuels/wordbubbles/pkg/pipeline"
	"github.com/matzehuels/wordbubbles/pkg/report"
)

// HeaderCache reports whether the response came from the cache ("hit") or
// was computed ("miss").
const HeaderCache = "X-Cache"

// layoutRequest is the body of both POST routes.
type layoutRequest struct {
	Items       []bubble.Item      `json:"items,omitempty"`
	Frequencies report.Frequencies `json:"frequencies,omitempty"`
	Report      json.RawMessage    `json:"report,omitempty"`
	Source      string             `json:"source,omitempty"`
	Options     pipeline.Options   `json:"options"`
}

// items returns the request's items. Exactly one input field may be set.
// The report is decoded leniently since the upstream payload grows fields
// this server does not know about.
func (req *layoutRequest) items() ([]bubble.Item, error) {
	hasReport := len(req.Report) > 0 && !bytes.Equal(req.Report, []byte("null"))
	given := 0
	for _, set := range []bool{req.Items != nil, req.Frequencies != nil, hasReport} {
		if set {
			given++
		}
	}
	if given != 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, `exactly one of "items", "frequencies" or "report" is required`)
	}

	switch {
	case hasReport:
		res, err := report.Read(bytes.NewReader(req.Report))
		if err != nil {
			return nil, err
		}
		return res.Items(req.Options.Source)
	case req.Frequencies != nil:
		return req.Frequencies.Items(), nil
	default:
		return req.Items, nil
	}
}

// decodeRequest reads the body over the server defaults.
func (s *Server) decodeRequest(r *http.Request) ([]bubble.Item, pipeline.Options, error) {
	req := layoutRequest{Options: s.defaults()}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, pipeline.Options{}, errors.New(errors.ErrCodeTooLarge, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	if dec.More() {
		return nil, pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "request body holds more than one JSON value")
	}

	if req.Source != "" {
		req.Options.Source = req.Source
	}
	if req.Options.Source != "" {
		if err := pipeline.ValidateSource(req.Options.Source); err != nil {
			return nil, pipeline.Options{}, err
		}
	}
	req.Options.Logger = s.logger

	items, err := req.items()
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	return items, req.Options, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Current())
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	items, opts, err := s.decodeRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), items, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, err := cloud.Marshal(c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeBytes(w, pipeline.ContentTypes[pipeline.FormatJSON], data)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, err)
		return
	}

	items, opts, err := s.decodeRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	result, err := s.runner.Execute(r.Context(), items, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	setCacheHeader(w, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	w.Header().Set("X-Cloud-ID", result.Cloud.ID.String())
	writeBytes(w, pipeline.ContentTypes[format], result.Artifacts[format])
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// writeError responds with the JSON error envelope. Uncoded errors are
// logged and reported as a generic internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if stderrors.Is(err, context.DeadlineExceeded) && errors.GetCode(err) == "" {
		err = errors.Wrap(errors.ErrCodeTimeout, err, "request timed out")
	}

	status := errors.HTTPStatus(err)
	var se *statusError
	if stderrors.As(err, &se) {
		status = se.status
	}

	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if code == "" {
		observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
		code, msg = errors.ErrCodeInternal, "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		http.Error(w, `{"error":{"code":"INTERNAL_ERROR","message":"encode response"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	_, _ = io.Copy(w, &buf)
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(HeaderCache, "hit")
	} else {
		w.Header().Set(HeaderCache, "miss")
	}
}

func errNotFound(r *http.Request) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}

func errMethodNotAllowed(r *http.Request) error {
	return &statusError{
		status: http.StatusMethodNotAllowed,
		err:    errors.New(errors.ErrCodeUnsupported, "method %s not allowed on %s", r.Method, r.URL.Path),
	}
}

// statusError overrides the status derived from the error code.
type statusError struct {
	status int
	err    *errors.Error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }
