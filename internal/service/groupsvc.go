package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Wakana-github/score-sheet-sub000/internal/domain"
)

const (
	maxGroupNameLen = 64
	maxGroupMembers = 50
)

type GroupsStore interface {
	OwnedGroupGetter
	CreateGroup(ctx context.Context, g domain.Group) (domain.Group, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]domain.Group, error)
	ReplaceGroup(ctx context.Context, g domain.Group) (domain.Group, error)
	DeleteGroup(ctx context.Context, groupID, userID string) error
}

type GroupService struct {
	Groups GroupsStore
	NewID  func() string
	Now    func() time.Time
}

func (s *GroupService) defaults() {
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.NewID == nil {
		s.NewID = func() string { return uuid.NewString() }
	}
}

func (s *GroupService) CreateGroup(ctx context.Context, userID string, in domain.GroupInput) (domain.Group, error) {
	s.defaults()

	name, err := normalizeGroupName(in.GroupName)
	if err != nil {
		return domain.Group{}, err
	}
	members, err := s.resolveMembers(nil, in.Members)
	if err != nil {
		return domain.Group{}, err
	}

	now := s.Now().UTC()
	return s.Groups.CreateGroup(ctx, domain.Group{
		ID:        s.NewID(),
		UserID:    userID,
		GroupName: name,
		Members:   members,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *GroupService) ListGroups(ctx context.Context, userID string) ([]domain.Group, error) {
	return s.Groups.ListGroupsForUser(ctx, userID)
}

func (s *GroupService) GetGroup(ctx context.Context, userID, groupID string) (domain.Group, error) {
	if _, err := uuid.Parse(groupID); err != nil {
		return domain.Group{}, domain.NewValidationError(map[string]string{"groupId": "must be a valid id"})
	}
	return s.Groups.GetOwnedGroup(ctx, groupID, userID)
}

// ReplaceGroup renames a group and replaces its roster. Members sent with an
// existing id keep it, so their history follows the new name.
func (s *GroupService) ReplaceGroup(ctx context.Context, userID, groupID string, in domain.GroupInput) (domain.Group, error) {
	s.defaults()

	existing, err := s.GetGroup(ctx, userID, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	name, err := normalizeGroupName(in.GroupName)
	if err != nil {
		return domain.Group{}, err
	}
	members, err := s.resolveMembers(existing.Members, in.Members)
	if err != nil {
		return domain.Group{}, err
	}

	existing.GroupName = name
	existing.Members = members
	existing.UpdatedAt = s.Now().UTC()
	return s.Groups.ReplaceGroup(ctx, existing)
}

func (s *GroupService) DeleteGroup(ctx context.Context, userID, groupID string) error {
	if _, err := uuid.Parse(groupID); err != nil {
		return domain.NewValidationError(map[string]string{"groupId": "must be a valid id"})
	}
	return s.Groups.DeleteGroup(ctx, groupID, userID)
}

func normalizeGroupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxGroupNameLen {
		return "", domain.NewValidationError(map[string]string{"groupName": "must be 1-64 characters"})
	}
	return name, nil
}

// resolveMembers assigns ids to new members. An id is only accepted when it
// already belongs to the group.
func (s *GroupService) resolveMembers(existing []domain.Member, in []domain.Member) ([]domain.Member, error) {
	if len(in) > maxGroupMembers {
		return nil, domain.NewValidationError(map[string]string{"members": "too many members"})
	}

	known := make(map[string]bool, len(existing))
	for _, m := range existing {
		known[m.MemberID] = true
	}

	out := make([]domain.Member, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, m := range in {
		name := strings.TrimSpace(m.Name)
		if name == "" || len(name) > maxNameLen {
			return nil, domain.NewValidationError(map[string]string{"members": "names must be 1-50 characters"})
		}
		id := strings.TrimSpace(m.MemberID)
		switch {
		case id == "":
			id = s.NewID()
		case !known[id]:
			return nil, domain.NewValidationError(map[string]string{"members": "unknown member id " + id})
		case seen[id]:
			return nil, domain.NewValidationError(map[string]string{"members": "member listed twice"})
		}
		seen[id] = true
		out = append(out, domain.Member{MemberID: id, Name: name})
	}
	return out, nil
}
