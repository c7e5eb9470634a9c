// Package source acquires single decoded BGR frames from a camera device, an
// uploaded file or a remote URL.
package source

import (
	"context"
	"fmt"

	"histoview/internal/logger"
	"histoview/internal/models"
	"histoview/internal/opencv/conversion"
	"histoview/internal/opencv/safe"
)

const component = "FrameSource"

// Static acquires frames from uploaded bytes or a URL.
type Static struct {
	fetcher Fetcher
	log     logger.Logger
}

func NewStatic(fetcher Fetcher, log logger.Logger) *Static {
	return &Static{fetcher: fetcher, log: log}
}

// Acquire decodes sel.Upload when present, otherwise fetches and decodes
// sel.URL. Upload wins: the URL is never fetched alongside it.
//
// A malformed upload returns ErrMalformedUpload. Every URL failure returns a
// *FetchError matching ErrNoInput, so callers see one uniform signal while
// the fault kind stays available for logging.
func (s *Static) Acquire(ctx context.Context, sel models.Selection) (*safe.Mat, error) {
	switch {
	case sel.HasUpload():
		frame, err := Decode(sel.Upload)
		if err != nil {
			s.log.Warning(component, "uploaded image rejected", map[string]interface{}{
				"name":  sel.UploadName,
				"bytes": len(sel.Upload),
				"error": err.Error(),
			})
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedUpload, sel.UploadName, err)
		}
		s.logDecoded("upload", sel.UploadName, frame)
		return frame, nil

	case sel.HasURL():
		frame, err := s.fromURL(ctx, sel.URL)
		if err != nil {
			kind, _ := Fault(err)
			s.log.Warning(component, "url acquisition failed", map[string]interface{}{
				"url":   sel.URL,
				"fault": kind.String(),
				"error": err.Error(),
			})
			return nil, err
		}
		s.logDecoded("url", sel.URL, frame)
		return frame, nil

	default:
		return nil, ErrNoInput
	}
}

func (s *Static) fromURL(ctx context.Context, rawURL string) (*safe.Mat, error) {
	body, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		if _, ok := Fault(err); ok {
			return nil, err
		}
		return nil, &FetchError{Kind: FaultUnreachable, URL: rawURL, Err: err}
	}

	frame, err := Decode(body)
	if err != nil {
		return nil, &FetchError{Kind: FaultMalformedBody, URL: rawURL, Err: err}
	}
	return frame, nil
}

func (s *Static) logDecoded(origin, name string, frame *safe.Mat) {
	fields := conversion.Describe(frame).Fields()
	fields["origin"] = origin
	fields["name"] = name
	s.log.Debug(component, "static frame decoded", fields)
}

// Request names one acquisition: a camera read from an already opened
// Device, or a static selection.
type Request struct {
	Kind      models.SourceKind
	Device    Device
	Selection models.Selection
}

// Source dispatches a Request to the right origin.
type Source struct {
	static *Static
}

func New(static *Static) *Source {
	return &Source{static: static}
}

func (s *Source) Acquire(ctx context.Context, req Request) (*safe.Mat, error) {
	if req.Kind == models.SourceCamera {
		return ReadFrame(req.Device)
	}
	return s.static.Acquire(ctx, req.Selection)
}
