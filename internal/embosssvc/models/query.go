package models

import (
	"time"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleViewer     Role = "viewer"
)

// RequesterScope is the identity a query runs under. A viewer with a branch
// affiliation only ever sees that branch, whatever the criteria ask for.
type RequesterScope struct {
	UserID string
	Role   Role
	Branch string
}

// Restricted reports whether results must be pinned to the requester's branch.
func (s RequesterScope) Restricted() bool {
	return s.Role == RoleViewer && s.Branch != ""
}

// QueryCriteria are the recognized filter options. All are optional.
type QueryCriteria struct {
	Text     string
	DateFrom *time.Time
	DateTo   *time.Time
	Branches []string
}

// BranchGroup is one branch partition of a query result.
type BranchGroup struct {
	BranchCode string       `json:"branch_code"`
	Count      int          `json:"count"`
	Rows       []CardRecord `json:"rows"`
}

// QueryResult is the filtered row set grouped by branch code, groups in
// ascending lexicographic branch order.
type QueryResult struct {
	Total  int           `json:"total"`
	Groups []BranchGroup `json:"groups"`
}

// Rows flattens the result back into grouped row order.
func (r *QueryResult) Rows() []CardRecord {
	out := make([]CardRecord, 0, r.Total)
	for _, g := range r.Groups {
		out = append(out, g.Rows...)
	}
	return out
}
