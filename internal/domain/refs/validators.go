package refs

import (
	"context"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/id"
)

// Cardinality limits on list-valued references.
const (
	MaxAssignees   = 20
	MaxWatchers    = 10
	MaxMentions    = 25
	MaxRecipients  = 100
	MaxThreadDepth = 5
)

// ValidateDeptInOrg checks that the department belongs to the stated
// organization.
func ValidateDeptInOrg(ctx context.Context, probe Prober, deptID, orgID id.ID) error {
	ref, err := probe(ctx, deptID)
	if err != nil {
		return err
	}
	if ref == nil {
		return apperror.NewReferentialIntegrity("deptId", "department does not exist or is deleted").
			WithDetail("id", deptID)
	}
	if ref.OrgID != orgID {
		return apperror.NewReferentialIntegrity("deptId", "department belongs to a different organization").
			WithDetail("id", deptID)
	}
	return nil
}

// ValidateActor checks that an actor reference (createdBy, addedBy,
// authorId, uploadedBy) is a live user in the same organization and
// department as the entity being written.
func ValidateActor(ctx context.Context, probe UserProber, field string, userID, orgID, deptID id.ID) error {
	u, err := probe(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperror.NewReferentialIntegrity(field, "user does not exist or is deleted").
			WithDetail("id", userID)
	}
	if u.OrgID != orgID {
		return apperror.NewReferentialIntegrity(field, "user belongs to a different organization").
			WithDetail("id", userID)
	}
	if !id.IsNil(deptID) && u.DeptID != deptID {
		return apperror.NewReferentialIntegrity(field, "user belongs to a different department").
			WithDetail("id", userID)
	}
	return nil
}

// ListOptions shapes a list-valued reference check.
type ListOptions struct {
	Field   string
	OrgID   id.ID
	MaxSize int

	// HODOnly restricts members to head-of-department roles (watchers).
	HODOnly bool
}

// ValidateUserList checks a list of user references: no duplicates, within
// the cardinality limit, every member live and same-tenant, and optionally
// restricted to head-of-department roles.
func ValidateUserList(ctx context.Context, probe UserProber, ids []id.ID, opts ListOptions) error {
	if opts.MaxSize > 0 && len(ids) > opts.MaxSize {
		return apperror.NewReferentialIntegrity(opts.Field, "too many references").
			WithDetail("max", opts.MaxSize).
			WithDetail("got", len(ids))
	}

	seen := make(map[id.ID]struct{}, len(ids))
	for _, userID := range ids {
		if _, dup := seen[userID]; dup {
			return apperror.NewReferentialIntegrity(opts.Field, "duplicate reference").
				WithDetail("id", userID)
		}
		seen[userID] = struct{}{}

		u, err := probe(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return apperror.NewReferentialIntegrity(opts.Field, "user does not exist or is deleted").
				WithDetail("id", userID)
		}
		if u.OrgID != opts.OrgID {
			return apperror.NewReferentialIntegrity(opts.Field, "user belongs to a different organization").
				WithDetail("id", userID)
		}
		if opts.HODOnly && !u.Role.IsHeadOfDepartment() {
			return apperror.NewReferentialIntegrity(opts.Field, "user is not a head of department").
				WithDetail("id", userID).
				WithDetail("role", string(u.Role))
		}
	}

	return nil
}

// ValidateParent resolves a polymorphic parent reference and checks it is a
// live record of an allowed type in the same organization.
func ValidateParent(
	ctx context.Context,
	resolver *Resolver,
	field string,
	parentType string,
	parentID id.ID,
	orgID id.ID,
	allowed []string,
) (*Ref, error) {
	permitted := false
	for _, t := range allowed {
		if t == parentType {
			permitted = true
			break
		}
	}
	if !permitted {
		return nil, apperror.NewReferentialIntegrity(field, "parent type not allowed here").
			WithDetail("parentType", parentType)
	}

	ref, err := resolver.Resolve(ctx, field, parentType, parentID)
	if err != nil {
		return nil, err
	}
	if ref.OrgID != orgID {
		return nil, apperror.NewReferentialIntegrity(field, "parent belongs to a different organization").
			WithDetail("id", parentID)
	}

	return ref, nil
}
