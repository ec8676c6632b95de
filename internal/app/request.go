package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"socialdemo/pkg/config"
)

type Method string

const (
	MethodManual    Method = "manual"
	MethodAutomatic Method = "automatic"
)

var ErrInvalidRequest = errors.New("invalid generation request")

// GenerationRequest describes one batch of demo content.
type GenerationRequest struct {
	Method             Method `json:"method"`
	CompanyName        string `json:"company_name,omitempty"`
	CompanyDescription string `json:"company_description,omitempty"`
	SourceURL          string `json:"source_url,omitempty"`
	ItemsPerKind       int    `json:"items_per_kind"`
}

func (r GenerationRequest) Validate() error {
	if r.ItemsPerKind < 0 {
		return fmt.Errorf("%w: items per kind must not be negative", ErrInvalidRequest)
	}

	switch r.Method {
	case MethodManual:
		if strings.TrimSpace(r.CompanyName) == "" {
			return fmt.Errorf("%w: company name is required", ErrInvalidRequest)
		}
		if strings.TrimSpace(r.CompanyDescription) == "" {
			return fmt.Errorf("%w: company description is required", ErrInvalidRequest)
		}
	case MethodAutomatic:
		u, err := url.Parse(r.SourceURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: a valid source url is required", ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: unknown method %q", ErrInvalidRequest, r.Method)
	}
	return nil
}

// UnitCount is the number of batch units the request expands to.
func (r GenerationRequest) UnitCount() int {
	return 3 * r.ItemsPerKind
}

// RequestFromConfig converts the configured scheduler request.
func RequestFromConfig(rc config.RequestConfig) GenerationRequest {
	return GenerationRequest{
		Method:             Method(strings.ToLower(strings.TrimSpace(rc.Method))),
		CompanyName:        rc.CompanyName,
		CompanyDescription: rc.CompanyDescription,
		SourceURL:          rc.SourceURL,
		ItemsPerKind:       rc.ItemsPerKind,
	}
}
