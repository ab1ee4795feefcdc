// Package dto provides Data Transfer Objects for API requests.
// Responses serialize the domain entities directly; only inbound
// payloads get dedicated types here.
package dto

import (
	"taskhive/internal/core/id"
	"taskhive/internal/domain"
)

// ListQuery contains common list parameters bound from the query string.
type ListQuery struct {
	Search         string `form:"search"`
	DeptID         string `form:"deptId"`
	OrderBy        string `form:"orderBy"`
	Limit          int    `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset         int    `form:"offset" binding:"omitempty,min=0"`
	IncludeDeleted bool   `form:"includeDeleted"`
	DeletedOnly    bool   `form:"deletedOnly"`
}

// ToFilter converts the query into a domain list filter scoped to orgID.
// Tombstone visibility defaults to live records; deletedOnly wins over
// includeDeleted when both are set.
func (q *ListQuery) ToFilter(orgID id.ID) (domain.ListFilter, error) {
	f := domain.DefaultListFilter()
	f.OrgID = orgID
	f.Search = q.Search

	if q.DeptID != "" {
		deptID, err := id.Parse(q.DeptID)
		if err != nil {
			return f, err
		}
		f.DeptID = deptID
	}
	if q.OrderBy != "" {
		f.OrderBy = q.OrderBy
	}
	if q.Limit > 0 {
		f.Limit = q.Limit
	}
	f.Offset = q.Offset

	switch {
	case q.DeletedOnly:
		f.Visibility = domain.DeletedOnly
	case q.IncludeDeleted:
		f.Visibility = domain.WithDeleted
	}

	return f, nil
}

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
