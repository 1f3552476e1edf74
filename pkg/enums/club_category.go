package enums

import "fmt"

// ClubCategory classifies a club for approval policy and directory grouping.
type ClubCategory string

const (
	ClubCategoryCultural  ClubCategory = "cultural"
	ClubCategoryTechnical ClubCategory = "technical"
	ClubCategoryAffinity  ClubCategory = "affinity"
	ClubCategoryBody      ClubCategory = "body"
	ClubCategoryAdmin     ClubCategory = "admin"
	ClubCategoryOther     ClubCategory = "other"
)

var validClubCategories = []ClubCategory{
	ClubCategoryCultural,
	ClubCategoryTechnical,
	ClubCategoryAffinity,
	ClubCategoryBody,
	ClubCategoryAdmin,
	ClubCategoryOther,
}

// String implements fmt.Stringer.
func (c ClubCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ClubCategory.
func (c ClubCategory) IsValid() bool {
	for _, candidate := range validClubCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// AutoApproves reports whether new roles in clubs of this category skip the
// pending state.
func (c ClubCategory) AutoApproves() bool {
	return c == ClubCategoryBody || c == ClubCategoryAdmin
}

// ParseClubCategory converts raw input into a ClubCategory.
func ParseClubCategory(value string) (ClubCategory, error) {
	for _, candidate := range validClubCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid club category %q", value)
}
