package dto

import (
	"bytes"
	"strconv"

	json "github.com/goccy/go-json"
)

// SuccessResponse is the envelope for successful calls.
// @Description Standard success envelope
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ErrorResponse is the envelope for failed calls.
// @Description Standard error envelope
type ErrorResponse struct {
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Status  int                    `json:"status,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MessageResponse represents a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}

// PaginationInfo describes one page of a listing.
type PaginationInfo struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPaginationInfo computes the page count for total items.
func NewPaginationInfo(page, limit int, total int64) PaginationInfo {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PaginationInfo{Page: page, Limit: limit, Total: total, Pages: pages}
}

// FlexString accepts either a JSON string or a JSON number; clients send
// years of experience both ways.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return err
	}
	*f = FlexString(b)
	return nil
}

func (f FlexString) String() string { return string(f) }
