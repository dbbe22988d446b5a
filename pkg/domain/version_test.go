package domain_test

import (
	"testing"

	"github.com/opst/dmcatalog/pkg/domain"
	"pgregory.net/rapid"
)

func TestResolveVersion(t *testing.T) {
	ptr := func(i int) *int { return &i }

	for name, testcase := range map[string]struct {
		members []domain.FamilyMember
		want    domain.VersionResolution
	}{
		"no members: initial version": {
			members: nil,
			want:    domain.VersionResolution{Version: domain.InitialVersion},
		},
		"one member: next version and demote it": {
			members: []domain.FamilyMember{
				{Version: 0, Latest: true, Status: domain.Valid},
			},
			want: domain.VersionResolution{Version: 1, Demote: ptr(0)},
		},
		"latest is not the max (max is deleted)": {
			members: []domain.FamilyMember{
				{Version: 0, Latest: false, Status: domain.Valid},
				{Version: 1, Latest: true, Status: domain.Invalid},
				{Version: 2, Latest: false, Status: domain.Deleted},
			},
			want: domain.VersionResolution{Version: 3, Demote: ptr(1)},
		},
		"all members are deleted: nothing to demote": {
			members: []domain.FamilyMember{
				{Version: 0, Status: domain.Deleted},
				{Version: 1, Status: domain.Deleted},
			},
			want: domain.VersionResolution{Version: 2},
		},
	} {
		t.Run(name, func(t *testing.T) {
			got := domain.ResolveVersion(testcase.members)
			if got.Version != testcase.want.Version {
				t.Errorf("version: got %d, want %d", got.Version, testcase.want.Version)
			}
			switch {
			case got.Demote == nil && testcase.want.Demote == nil:
			case got.Demote == nil || testcase.want.Demote == nil:
				t.Errorf("demote: got %v, want %v", got.Demote, testcase.want.Demote)
			case *got.Demote != *testcase.want.Demote:
				t.Errorf("demote: got %d, want %d", *got.Demote, *testcase.want.Demote)
			}
		})
	}
}

func TestResolveVersion_SequentialRegistrations(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 50).Draw(rt, "registrations")

		members := []domain.FamilyMember{}
		for i := 0; i < n; i++ {
			res := domain.ResolveVersion(members)
			if res.Demote != nil {
				for j := range members {
					if members[j].Version == *res.Demote {
						members[j].Latest = false
					}
				}
			}
			members = append(members, domain.FamilyMember{
				Version: res.Version, Latest: true, Status: domain.Valid,
			})
		}

		latests := 0
		for i, m := range members {
			if m.Version != i {
				rt.Fatalf("version #%d is %d", i, m.Version)
			}
			if m.Latest {
				latests += 1
				if m.Version != n-1 {
					rt.Fatalf("latest is version %d, not %d", m.Version, n-1)
				}
			}
		}
		if latests != 1 {
			rt.Fatalf("%d latests are found", latests)
		}
	})
}

func TestNextVersion(t *testing.T) {
	for name, testcase := range map[string]struct {
		versions []int
		want     int
	}{
		"empty":      {versions: nil, want: 0},
		"contiguous": {versions: []int{0, 1, 2}, want: 3},
		"unordered":  {versions: []int{4, 0, 2}, want: 5},
	} {
		t.Run(name, func(t *testing.T) {
			if got := domain.NextVersion(testcase.versions); got != testcase.want {
				t.Errorf("got %d, want %d", got, testcase.want)
			}
		})
	}
}

func TestElectLatest(t *testing.T) {
	for name, testcase := range map[string]struct {
		members []domain.FamilyMember
		want    int
		wantOk  bool
	}{
		"no members": {
			members: nil, wantOk: false,
		},
		"max is alive": {
			members: []domain.FamilyMember{
				{Version: 0, Status: domain.Valid},
				{Version: 1, Status: domain.Invalid},
			},
			want: 1, wantOk: true,
		},
		"max is deleted": {
			members: []domain.FamilyMember{
				{Version: 0, Status: domain.Valid},
				{Version: 1, Status: domain.Uploading},
				{Version: 2, Status: domain.Deleted},
			},
			want: 1, wantOk: true,
		},
		"all are deleted": {
			members: []domain.FamilyMember{
				{Version: 0, Status: domain.Deleted},
			},
			wantOk: false,
		},
	} {
		t.Run(name, func(t *testing.T) {
			got, ok := domain.ElectLatest(testcase.members)
			if ok != testcase.wantOk {
				t.Fatalf("ok: got %v, want %v", ok, testcase.wantOk)
			}
			if ok && got != testcase.want {
				t.Errorf("got %d, want %d", got, testcase.want)
			}
		})
	}
}
