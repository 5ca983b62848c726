package roles

import (
	"testing"

	"github.com/iov-one/custodia"
	"github.com/iov-one/custodia/custodiatest"
	"github.com/iov-one/custodia/errors"
)

func TestAssignRoleMsgValidate(t *testing.T) {
	target := custodiatest.NewCondition().Address()

	cases := map[string]struct {
		Msg     AssignRoleMsg
		WantErr *errors.Error
	}{
		"valid message": {
			Msg: AssignRoleMsg{
				Metadata: &custodia.Metadata{Schema: 1},
				Target:   target,
				Role:     RoleMember,
			},
		},
		"owner role cannot be granted": {
			Msg: AssignRoleMsg{
				Metadata: &custodia.Metadata{Schema: 1},
				Target:   target,
				Role:     RoleOwner,
			},
			WantErr: errors.ErrInput,
		},
		"unknown role": {
			Msg: AssignRoleMsg{
				Metadata: &custodia.Metadata{Schema: 1},
				Target:   target,
				Role:     Role(66),
			},
			WantErr: errors.ErrInput,
		},
		"missing target": {
			Msg: AssignRoleMsg{
				Metadata: &custodia.Metadata{Schema: 1},
				Role:     RoleMember,
			},
			WantErr: errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.Msg.Validate(); !tc.WantErr.Is(err) {
				t.Fatalf("want %q, got %+v", tc.WantErr, err)
			}
		})
	}
}

func TestRoleCovers(t *testing.T) {
	if !RoleOwner.Covers(RoleAdmin) {
		t.Fatal("owner must cover admin")
	}
	if !RoleAdmin.Covers(RoleAdmin) {
		t.Fatal("a role must cover itself")
	}
	if RoleMember.Covers(RoleAdmin) {
		t.Fatal("member must not cover admin")
	}
	if RoleViewer.Covers(RoleMember) {
		t.Fatal("viewer must not cover member")
	}
}
