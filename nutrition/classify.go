package nutrition

import "strings"

type CategoryKind string

const (
	CategoryVegetable CategoryKind = "vegetable"
	CategoryDairyEgg  CategoryKind = "dairy-egg"
	CategoryGrain     CategoryKind = "grain"
	CategoryLegume    CategoryKind = "legume"
	CategorySpice     CategoryKind = "spice"
	CategoryOil       CategoryKind = "oil"
	CategoryFruit     CategoryKind = "fruit"
	CategoryOther     CategoryKind = "other"
)

var categoryKeywords = []struct {
	kind     CategoryKind
	keywords []string
}{
	{CategoryVegetable, []string{"vegetable"}},
	{CategoryDairyEgg, []string{"dairy", "egg"}},
	{CategoryGrain, []string{"grain", "flour"}},
	{CategoryLegume, []string{"lentil", "legume"}},
	{CategorySpice, []string{"spice", "condiment"}},
	{CategoryOil, []string{"oil", "fat"}},
	{CategoryFruit, []string{"fruit"}},
}

// CategoryKindOf classifies a shopping category by its label. The first
// matching keyword group wins.
func CategoryKindOf(name string) CategoryKind {
	lower := strings.ToLower(name)
	for _, group := range categoryKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.kind
			}
		}
	}
	return CategoryOther
}

type SourceKind string

const (
	SourceVideo  SourceKind = "video"
	SourceSocial SourceKind = "social"
	SourceBlog   SourceKind = "blog"
)

func SourceKindOf(sourceType string) SourceKind {
	switch strings.ToLower(sourceType) {
	case "youtube":
		return SourceVideo
	case "instagram":
		return SourceSocial
	default:
		return SourceBlog
	}
}

const (
	CuisineSouthIndian = "South Indian"
	CuisineNorthIndian = "North Indian"
	CuisineContinental = "Continental"
)

// CuisineBadge maps a free-text cuisine label onto one of the known badges,
// or returns the label unchanged.
func CuisineBadge(label string) string {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "south"):
		return CuisineSouthIndian
	case strings.Contains(lower, "north"):
		return CuisineNorthIndian
	case strings.Contains(lower, "continental"), strings.Contains(lower, "indo"):
		return CuisineContinental
	default:
		return label
	}
}
