// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/view"
)

// maxBodyBytes caps request bodies; payloads are a handful of short fields.
const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("malformed request body")

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		// Oversized bodies and aborted uploads are client errors.
		p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
		return p
	}
	p.body = body
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	body := bytes.TrimSpace(p.body)
	if len(body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if strings.Contains(p.contentType, "application/json") || body[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(body))
		// Keep numbers as written so amounts are not rounded through float64.
		dec.UseNumber()
		p.jsonData = make(map[string]interface{})
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = errMalformedBody
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(body))
	if p.err != nil {
		p.err = errMalformedBody
	}
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParsePayload reads the five record fields. Amount and date are converted
// here; an unparseable non-empty value is a validation error on that field.
// Everything else is left to core.Payload.Validate.
func ParsePayload(p *RequestBodyParser) (core.Payload, error) {
	out := core.Payload{
		Title:       p.Get("title"),
		Category:    strings.ToLower(p.Get("category")),
		Description: p.Get("description"),
	}

	if raw := p.Get("amount"); raw != "" {
		amount, err := core.ParseAmount(raw)
		if err != nil {
			return core.Payload{}, core.NewValidationError("amount", core.ErrInvalidAmount.Error())
		}
		out.Amount = amount
	}

	if raw := p.Get("date"); raw != "" {
		date, err := core.ParseDate(raw)
		if err != nil {
			return core.Payload{}, core.NewValidationError("date", "date must be YYYY-MM-DD")
		}
		out.Date = date
	}

	return out, nil
}

// ParseTableQuery reads the sort and filter state of the transactions view.
// A sort key without a direction behaves like a click on that column.
func ParseTableQuery(q url.Values) (view.SortConfig, view.Filter, error) {
	sortCfg := view.DefaultSort()
	if raw := strings.TrimSpace(q.Get("sort")); raw != "" {
		key, err := view.ParseSortKey(raw)
		if err != nil {
			return sortCfg, view.Filter{}, core.NewValidationError("sort", err.Error())
		}
		sortCfg = sortCfg.Request(key)
	}
	if raw := strings.TrimSpace(q.Get("dir")); raw != "" {
		dir, err := view.ParseDirection(raw)
		if err != nil {
			return sortCfg, view.Filter{}, core.NewValidationError("dir", err.Error())
		}
		sortCfg.Direction = dir
	}

	filter := view.Filter{Search: strings.TrimSpace(q.Get("search"))}

	typ, err := view.ParseTypeFilter(q.Get("type"))
	if err != nil {
		return sortCfg, view.Filter{}, core.NewValidationError("type", err.Error())
	}
	filter.Type = typ

	bucket, err := view.ParseBucket(q.Get("amount"))
	if err != nil {
		return sortCfg, view.Filter{}, core.NewValidationError("amount", err.Error())
	}
	filter.Amount = bucket

	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		date, err := core.ParseDate(raw)
		if err != nil {
			return sortCfg, view.Filter{}, core.NewValidationError("date", "date must be YYYY-MM-DD")
		}
		filter.Date = date
	}

	return sortCfg, filter, nil
}

// ParseRecent reads the dashboard history length.
func ParseRecent(q url.Values) (int, error) {
	raw := strings.TrimSpace(q.Get("recent"))
	if raw == "" {
		return view.DefaultRecent, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > maxRecent {
		return 0, core.NewValidationError("recent", "recent must be between 0 and "+strconv.Itoa(maxRecent))
	}
	return n, nil
}

const maxRecent = 50
