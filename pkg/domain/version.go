package domain

// FamilyMember is a summary of a Data in a Family, for version resolution.
type FamilyMember struct {
	Version int
	Latest  bool
	Status  Status
}

// VersionResolution is the result of ResolveVersion.
type VersionResolution struct {
	// version to be assigned for the new Data. The new Data becomes the latest.
	Version int

	// version of the Data which should be demoted from the latest.
	//
	// nil if no member is the latest.
	Demote *int
}

// ResolveVersion decides the version of a new Data in a family.
//
// Versions of deleted members are also taken because natural keys are never reused.
func ResolveVersion(members []FamilyMember) VersionResolution {
	res := VersionResolution{Version: InitialVersion}
	if len(members) == 0 {
		return res
	}

	max := members[0].Version
	for _, m := range members {
		if max < m.Version {
			max = m.Version
		}
		if m.Latest {
			v := m.Version
			res.Demote = &v
		}
	}
	res.Version = max + 1
	return res
}

// NextVersion returns the version which a new Data in the family would get.
func NextVersion(versions []int) int {
	next := InitialVersion
	for _, v := range versions {
		if next <= v {
			next = v + 1
		}
	}
	return next
}

// ElectLatest returns the version which should be the latest in the family.
//
// It is the max version among members which are not deleted.
// The second return value is false when no such member exists.
func ElectLatest(members []FamilyMember) (int, bool) {
	found := false
	latest := 0
	for _, m := range members {
		if m.Status == Deleted {
			continue
		}
		if !found || latest < m.Version {
			latest = m.Version
			found = true
		}
	}
	return latest, found
}
