package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v4"
	"go.uber.org/zap"

	"nowplaying/internal/core"
	"nowplaying/pkg/musiclink"
	"nowplaying/pkg/text"
)

const contentTypeMsgpack = "application/msgpack"

// ParseRequest is the body of POST /v1/parse.
type ParseRequest struct {
	Kind          string                  `json:"kind"`
	Text          string                  `json:"text"`
	FallbackTitle string                  `json:"fallbackTitle,omitempty"`
	MediaSession  *musiclink.MediaSession `json:"mediaSession,omitempty"`
	OriginURL     string                  `json:"originUrl,omitempty"`
	// Duration and CurrentTime are seconds as numbers, or "hh:mm:ss" strings.
	Duration            any    `json:"duration,omitempty"`
	CurrentTime         any    `json:"currentTime,omitempty"`
	UniqueID            string `json:"uniqueId,omitempty"`
	IsPlaying           bool   `json:"isPlaying,omitempty"`
	IsPodcast           bool   `json:"isPodcast,omitempty"`
	IsScrobblingAllowed bool   `json:"isScrobblingAllowed,omitempty"`
	Connector           string `json:"connector,omitempty"`
}

// ParseResponse is the body of a successful parse.
type ParseResponse struct {
	Song        core.CloneableData `json:"song"`
	UniqueID    string             `json:"uniqueId,omitempty"`
	ArtistTrack string             `json:"artistTrack,omitempty"`
	Normalizer  string             `json:"normalizer"`
	Seen        bool               `json:"seen"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// connectorLabel is a connector known only by its label.
type connectorLabel string

func (c connectorLabel) Label() string { return string(c) }

var errUnknownKind = errors.New("unknown source kind")

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if s.limiter != nil {
		if allowed, retryAfter := s.limiter.Allow(clientID(r)); !allowed {
			s.metrics.RecordParse("", outcomeRateLimited)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(retryAfter)))
			s.writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
	}

	var body ParseRequest
	if err := s.decodeRequest(w, r, &body); err != nil {
		s.metrics.RecordParse("", outcomeBadRequest)
		s.writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	req, err := toCoreRequest(body)
	if err != nil {
		s.metrics.RecordParse("", outcomeBadRequest)
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var connector core.Connector
	if body.Connector != "" {
		connector = connectorLabel(body.Connector)
	}

	outcome, err := s.processor.Process(r.Context(), req, connector)
	kind := string(req.Source.EffectiveKind())
	s.metrics.RecordProcessingTime(kind, time.Since(start))

	switch {
	case errors.Is(err, core.ErrUnsupportedSource):
		s.metrics.RecordParse("", outcomeUnsupported)
		s.writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, core.ErrNotRecognized):
		s.metrics.RecordParse("", outcomeNotRecognized)
		s.writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		s.logger.Warn("Parse failed", requestIDField(r), zap.String("kind", kind), zap.Error(err))
		s.writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	s.metrics.RecordParse(outcome.Normalizer, outcomeRecognized)
	if outcome.Seen {
		s.metrics.RecordRepeat()
	}

	resp := ParseResponse{
		Song:        outcome.Song.CloneableData(),
		ArtistTrack: outcome.Song.ArtistTrackString(),
		Normalizer:  outcome.Normalizer,
		Seen:        outcome.Seen,
	}
	resp.UniqueID, _ = outcome.Song.UniqueID()

	s.writeResponse(w, r, http.StatusOK, resp)
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, dst *ParseRequest) error {
	body := http.MaxBytesReader(w, r.Body, s.maxRequestBytes)

	if mediaType(r.Header.Get("Content-Type")) == contentTypeMsgpack {
		return msgpack.NewDecoder(body).UseJSONTag(true).Decode(dst)
	}

	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after request object")
	}
	return nil
}

func toCoreRequest(body ParseRequest) (core.Request, error) {
	kind, ok := musiclink.ParseSourceKind(body.Kind)
	if !ok {
		return core.Request{}, fmt.Errorf("%w: %q", errUnknownKind, body.Kind)
	}

	return core.Request{
		Source: musiclink.Source{
			Kind:          kind,
			Text:          body.Text,
			FallbackTitle: body.FallbackTitle,
			MediaSession:  body.MediaSession,
			OriginURL:     body.OriginURL,
		},
		Time:                text.NewTimeInfo(timeValue(body.CurrentTime), timeValue(body.Duration)),
		UniqueID:            body.UniqueID,
		IsPlaying:           body.IsPlaying,
		IsPodcast:           body.IsPodcast,
		IsScrobblingAllowed: body.IsScrobblingAllowed,
	}, nil
}

// retryAfterSeconds rounds up to whole seconds, never below one.
func retryAfterSeconds(d time.Duration) int {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}

// timeValue converts "mm:ss" style strings to seconds and passes numbers through.
func timeValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return text.StringToSeconds(s)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.logger.Debug("Parse request rejected",
		requestIDField(r),
		zap.Int("status", status),
		zap.String("reason", message))
	s.writeResponse(w, r, status, errorResponse{Error: message})
}

func (s *Server) writeResponse(w http.ResponseWriter, r *http.Request, status int, v any) {
	if wantsMsgpack(r) {
		w.Header().Set("Content-Type", contentTypeMsgpack)
		w.WriteHeader(status)
		if err := msgpack.NewEncoder(w).UseJSONTag(true).Encode(v); err != nil {
			s.logger.Debug("Failed to write response", zap.Error(err))
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("Failed to write response", zap.Error(err))
	}
}

func wantsMsgpack(r *http.Request) bool {
	for _, accepted := range strings.Split(r.Header.Get("Accept"), ",") {
		if mediaType(accepted) == contentTypeMsgpack {
			return true
		}
	}
	return false
}

func mediaType(header string) string {
	mt, _, err := mime.ParseMediaType(strings.TrimSpace(header))
	if err != nil {
		return ""
	}
	return mt
}

// clientID identifies the caller for rate limiting by remote IP.
func clientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
