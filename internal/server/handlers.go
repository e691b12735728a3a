package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/ocrinput"
	"github.com/MeKo-Tech/credex/internal/regcode"
	"github.com/MeKo-Tech/credex/internal/registry"
)

// Error kinds reported in ErrorResponse.Kind.
const (
	kindInvalidRequest          = "invalid_request"
	kindInvalidDocument         = "invalid_document"
	kindBodyTooLarge            = "body_too_large"
	kindMethodNotAllowed        = "method_not_allowed"
	kindVerificationUnavailable = "verification_unavailable"
	kindRegistryError           = "registry_error"
	kindMalformedCode           = "malformed_code"
	kindInvalidCode             = "invalid_code"
)

// apiError is a failed request ready to be written to the client.
type apiError struct {
	status int
	kind   string
	msg    string
}

// extractRequest carries the per-request extraction switches.
type extractRequest struct {
	format ocrinput.Format
	verify bool
}

func parseExtractRequest(r *http.Request) (extractRequest, *apiError) {
	q := r.URL.Query()
	format, err := ocrinput.ParseFormat(q.Get("format"))
	if err != nil {
		return extractRequest{}, &apiError{http.StatusBadRequest, kindInvalidRequest, err.Error()}
	}
	verify := false
	if v := q.Get("verify"); v != "" {
		verify, err = strconv.ParseBool(v)
		if err != nil {
			return extractRequest{}, &apiError{http.StatusBadRequest, kindInvalidRequest, fmt.Sprintf("invalid verify flag %q", v)}
		}
	}
	return extractRequest{format: format, verify: verify}, nil
}

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, r, &apiError{http.StatusMethodNotAllowed, kindMethodNotAllowed, "method not allowed"})
		return
	}

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		Version:  s.version,
		Registry: s.registry != nil,
		Time:     time.Now().UTC().Format(time.RFC3339),
	})
}

// extractHandler runs an extraction over a posted token document.
func (s *Server) extractHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErrorResponse(w, r, &apiError{http.StatusMethodNotAllowed, kindMethodNotAllowed, "method not allowed"})
		return
	}

	req, apiErr := parseExtractRequest(r)
	if apiErr != nil {
		s.writeErrorResponse(w, r, apiErr)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorResponse(w, r, &apiError{http.StatusRequestEntityTooLarge, kindBodyTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)})
			return
		}
		s.writeErrorResponse(w, r, &apiError{http.StatusBadRequest, kindInvalidRequest, "failed to read request body"})
		return
	}
	requestBytes.Observe(float64(len(body)))

	resp, apiErr := s.process(r.Context(), requestID(r), body, req, "http")
	if apiErr != nil {
		s.writeErrorResponse(w, r, apiErr)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// process decodes, extracts and optionally verifies one token document. It
// is shared by the HTTP and websocket transports.
func (s *Server) process(ctx context.Context, id string, body []byte, req extractRequest, transport string) (*ExtractResponse, *apiError) {
	if req.verify && s.registry == nil {
		return nil, &apiError{http.StatusNotImplemented, kindVerificationUnavailable, "no registry is configured"}
	}

	tokens, err := ocrinput.DecodeBytes(body, req.format)
	if err != nil {
		extractionsTotal.WithLabelValues(transport, "invalid").Inc()
		return nil, &apiError{http.StatusBadRequest, kindInvalidDocument, err.Error()}
	}

	start := time.Now()
	result := s.extractor.Extract(tokens)
	extractionDuration.WithLabelValues(transport).Observe(time.Since(start).Seconds())
	extractionsTotal.WithLabelValues(transport, "success").Inc()
	tokensPerDocument.Observe(float64(len(tokens)))
	recordFields(result)

	resp := &ExtractResponse{RequestID: id, Result: result}
	if !req.verify {
		return resp, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	v, err := registry.Verify(ctx, s.registry, result, registry.WithClock(s.now))
	if err != nil {
		verificationsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Registry verification failed", "request_id", id, "error", err)
		return nil, &apiError{http.StatusBadGateway, kindRegistryError, "registry lookup failed"}
	}
	switch {
	case v.Found && v.Expired:
		verificationsTotal.WithLabelValues("expired").Inc()
	case v.Found:
		verificationsTotal.WithLabelValues("found").Inc()
	default:
		verificationsTotal.WithLabelValues("not_found").Inc()
	}
	resp.Verification = v
	return resp, nil
}

func recordFields(res *extract.Result) {
	for _, f := range extract.Fields() {
		outcome := "missing"
		if _, ok := res.Value(f); ok {
			outcome = "found"
		}
		fieldsExtracted.WithLabelValues(string(f), outcome).Inc()
	}
}

// canonicalizeHandler corrects a single registration code.
func (s *Server) canonicalizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErrorResponse(w, r, &apiError{http.StatusMethodNotAllowed, kindMethodNotAllowed, "method not allowed"})
		return
	}

	var req CanonicalizeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeErrorResponse(w, r, &apiError{http.StatusBadRequest, kindInvalidRequest, "body must be a JSON object with a \"code\" field"})
		return
	}

	codes, err := regcode.ExpandText(req.Code)
	if err != nil {
		kind := kindInvalidCode
		if errors.Is(err, regcode.ErrMalformedCode) {
			kind = kindMalformedCode
		}
		canonicalizationsTotal.WithLabelValues(kind).Inc()
		s.writeErrorResponse(w, r, &apiError{http.StatusUnprocessableEntity, kind, err.Error()})
		return
	}
	canonicalizationsTotal.WithLabelValues("success").Inc()

	s.writeJSON(w, http.StatusOK, CanonicalizeResponse{
		RequestID: requestID(r),
		Canonical: codes[0].String(),
		Variants:  regcode.Strings(codes),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, r *http.Request, e *apiError) {
	s.writeJSON(w, e.status, ErrorResponse{
		RequestID: requestID(r),
		Kind:      e.kind,
		Error:     e.msg,
	})
}
