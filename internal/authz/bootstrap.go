package authz

import (
	"fmt"

	"github.com/levpat/marketplace-blog/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.RoleUser,
			Policies: []Policy{
				{Object: "/posts/", Action: "*"},
				{Object: "/categories/", Action: "GET"},
				{Object: "/categories/create", Action: "POST"},
				{Object: "/users/me", Action: "GET"},
				{Object: "/users/me/login-logs", Action: "GET"},
				{Object: "/auth/logout", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role:     constants.RoleAdmin,
			Inherits: []string{constants.RoleUser},
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
			Immutable: true,
		},
	}
}

// IsBuiltinRole 判断是否为预置角色
func IsBuiltinRole(role string) bool {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return false
	}
	for _, seed := range BuiltinRoleSeeds() {
		if !seed.Immutable {
			continue
		}
		if seedRole, err := NormalizeRole(seed.Role); err == nil && seedRole == normalized {
			return true
		}
	}
	return false
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}

	changed := false
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
		if err != nil {
			return fmt.Errorf("check builtin role failed: %w", err)
		}
		if !exists {
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor)
			if err != nil {
				return fmt.Errorf("create builtin role failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole)
			if err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			added, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action)
			if err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
			if added {
				changed = true
			}
		}
	}

	if changed {
		return s.saveAndReload()
	}
	return nil
}
