package service

import (
	"context"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/cardops/emboss-services/internal/embosssvc/models"
	"github.com/cardops/emboss-services/internal/embosssvc/store"
)

// QueryService filters the master table and partitions the result by branch.
type QueryService struct {
	master *store.MasterStore
}

func NewQueryService(master *store.MasterStore) *QueryService {
	return &QueryService{master: master}
}

func (s *QueryService) Query(ctx context.Context, criteria models.QueryCriteria, scope models.RequesterScope) (*models.QueryResult, error) {
	rows, err := s.master.Load(ctx)
	if err != nil {
		return nil, err
	}

	branches := allowedBranches(criteria.Branches, scope)
	needle := strings.ToLower(criteria.Text)
	dateBound := criteria.DateFrom != nil || criteria.DateTo != nil

	groups := make(map[string][]models.CardRecord)
	total := 0
	for _, row := range rows {
		if branches != nil && !branches[row.BranchCode] {
			continue
		}
		if needle != "" && !matchesText(row, needle) {
			continue
		}
		// Rows without an orderable issuance date only survive unbounded queries.
		if dateBound && !row.IssuanceDate.Between(criteria.DateFrom, criteria.DateTo) {
			continue
		}
		groups[row.BranchCode] = append(groups[row.BranchCode], row)
		total++
	}

	codes := make([]string, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	// Branch codes are strings; "09" sorts before "9" and must stay that way.
	sort.Strings(codes)

	result := &models.QueryResult{Total: total, Groups: make([]models.BranchGroup, 0, len(codes))}
	for _, code := range codes {
		result.Groups = append(result.Groups, models.BranchGroup{
			BranchCode: code,
			Count:      len(groups[code]),
			Rows:       groups[code],
		})
	}
	return result, nil
}

// Summary returns per-branch counts without the row payloads.
func (s *QueryService) Summary(ctx context.Context, criteria models.QueryCriteria, scope models.RequesterScope) (*models.QueryResult, error) {
	result, err := s.Query(ctx, criteria, scope)
	if err != nil {
		return nil, err
	}
	for i := range result.Groups {
		result.Groups[i].Rows = nil
	}
	return result, nil
}

// allowedBranches resolves the branch filter under the requester's scope.
// For a restricted viewer the requested set is intersected with their own
// branch: out-of-scope branches are silently dropped (and logged), never
// honored. Returns nil when all branches pass.
func allowedBranches(requested []string, scope models.RequesterScope) map[string]bool {
	if scope.Restricted() {
		for _, b := range requested {
			if strings.TrimSpace(b) != scope.Branch {
				log.Warnf("user %s requested branch %s outside viewer scope %s, narrowing",
					scope.UserID, b, scope.Branch)
			}
		}
		if len(requested) > 0 && !containsBranch(requested, scope.Branch) {
			// Criteria named only foreign branches; the intersection is empty.
			return map[string]bool{}
		}
		return map[string]bool{scope.Branch: true}
	}
	if len(requested) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(requested))
	for _, b := range requested {
		allowed[strings.TrimSpace(b)] = true
	}
	return allowed
}

func containsBranch(branches []string, branch string) bool {
	for _, b := range branches {
		if strings.TrimSpace(b) == branch {
			return true
		}
	}
	return false
}

func matchesText(row models.CardRecord, needle string) bool {
	return strings.Contains(strings.ToLower(row.CustomerName), needle) ||
		strings.Contains(strings.ToLower(row.AccountNumber), needle) ||
		strings.Contains(strings.ToLower(row.CardNumber), needle)
}
