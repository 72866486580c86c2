package intake

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aquamarinepk/aqm"
)

var ErrExtractorUnavailable = errors.New("extractor not configured")

// Image is an uploaded order slip.
type Image struct {
	Data        []byte
	ContentType string
	Filename    string
}

type Extractor interface {
	Extract(ctx context.Context, img Image) ([]Candidate, error)
}

// ServiceRequester is the part of aqm.ServiceClient the vision client needs.
type ServiceRequester interface {
	Request(ctx context.Context, method, path string, body interface{}) (*aqm.SuccessResponse, error)
}

// VisionClient asks the vision service to read an order slip.
type VisionClient struct {
	client ServiceRequester
}

func NewVisionClient(client ServiceRequester) *VisionClient {
	return &VisionClient{client: client}
}

type extractRequest struct {
	Image       string `json:"image"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename,omitempty"`
}

func (c *VisionClient) Extract(ctx context.Context, img Image) ([]Candidate, error) {
	if c == nil || c.client == nil {
		return nil, ErrExtractorUnavailable
	}

	req := extractRequest{
		Image:       base64.StdEncoding.EncodeToString(img.Data),
		ContentType: img.ContentType,
		Filename:    img.Filename,
	}

	resp, err := c.client.Request(ctx, "POST", "/extractions", req)
	if err != nil {
		return nil, fmt.Errorf("vision extraction: %w", err)
	}

	return decodeCandidates(resp)
}

// decodeCandidates accepts either a bare list or {"candidates": [...]}.
func decodeCandidates(resp *aqm.SuccessResponse) ([]Candidate, error) {
	if resp == nil || resp.Data == nil {
		return []Candidate{}, nil
	}

	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, err
	}

	var list []Candidate
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Candidates []Candidate `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	if wrapped.Candidates == nil {
		return []Candidate{}, nil
	}
	return wrapped.Candidates, nil
}
