package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Pagination describes the window a list response covers.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ListResult is a normalised list response.
type ListResult struct {
	Records    []domain.Record
	Pagination Pagination
}

type listEnvelope struct {
	Data       []domain.Record `json:"data"`
	Pagination *Pagination     `json:"pagination"`
}

// parseList accepts a raw array or a {data, pagination} envelope.
// For raw arrays the pagination is synthesised from the request window.
func parseList(resp *ports.Response, limit, offset int) (*ListResult, error) {
	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 {
		return &ListResult{Records: []domain.Record{}}, nil
	}

	if body[0] == '[' {
		var records []domain.Record
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, malformed(resp, "list array", err)
		}
		return &ListResult{Records: nonNil(records), Pagination: synthesise(len(records), limit, offset)}, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, malformed(resp, "list envelope", err)
	}
	if _, ok := probe["data"]; !ok {
		return nil, malformed(resp, "list envelope", errors.New("missing data"))
	}
	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, malformed(resp, "list envelope", err)
	}

	result := &ListResult{Records: nonNil(env.Data)}
	if env.Pagination != nil {
		result.Pagination = *env.Pagination
	} else {
		result.Pagination = synthesise(len(env.Data), limit, offset)
	}
	return result, nil
}

func synthesise(n, limit, offset int) Pagination {
	if limit <= 0 {
		limit = n
	}
	return Pagination{Limit: limit, Offset: offset, Total: n}
}

func nonNil(records []domain.Record) []domain.Record {
	if records == nil {
		return []domain.Record{}
	}
	return records
}

// parseRecord accepts a bare object or one wrapped in {data: {...}}.
func parseRecord(resp *ports.Response) (domain.Record, error) {
	var rec domain.Record
	if err := json.Unmarshal(resp.Body, &rec); err != nil {
		return nil, malformed(resp, "record", err)
	}
	if rec == nil {
		return nil, malformed(resp, "record", errors.New("empty body"))
	}
	if inner, ok := rec["data"].(map[string]any); ok {
		if _, hasID := rec[domain.FieldID]; !hasID {
			return domain.Record(inner), nil
		}
	}
	return rec, nil
}

func malformed(resp *ports.Response, what string, err error) error {
	return &domain.RemoteError{
		Status:  resp.Status,
		Message: fmt.Sprintf("malformed %s in response", what),
		Err:     err,
	}
}

// Decode converts a record into a typed entity such as domain.Content.
// Field names follow the json tags; timestamps are parsed from RFC3339.
func Decode[T any](rec domain.Record) (*T, error) {
	var out T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Squash:  true,
		Result:  &out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(map[string]any(rec)); err != nil {
		return nil, fmt.Errorf("decode %T: %w", out, err)
	}
	return &out, nil
}

// DecodeAll converts every record, stopping at the first failure.
func DecodeAll[T any](records []domain.Record) ([]T, error) {
	out := make([]T, 0, len(records))
	for i, rec := range records {
		v, err := Decode[T](rec)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, *v)
	}
	return out, nil
}
