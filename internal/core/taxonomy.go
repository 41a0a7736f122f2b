package core

// Category lists changed between form revisions. The Taxonomy table keeps
// every revision's lists addressable by name so call sites never branch on
// a revision; the latest list is the default.

// TaxonomyTag names one enumerated field of the transaction form.
type TaxonomyTag string

const (
	TagIncomeCategories   TaxonomyTag = "income_categories"
	TagOutgoingCategories TaxonomyTag = "outgoing_categories"
	TagSubCategories      TaxonomyTag = "sub_categories"
	TagMedicalConditions  TaxonomyTag = "medical_conditions"
	TagGroups             TaxonomyTag = "groups"
)

// Taxonomy maps enumerated form tags to their allowed values.
type Taxonomy struct {
	Revision string
	values   map[TaxonomyTag][]string
}

// DefaultTaxonomy returns the latest observed category lists. Superseded
// revisions stay available through TaxonomyRevision for reading old files.
func DefaultTaxonomy() Taxonomy {
	return taxonomyRevisions[len(taxonomyRevisions)-1]
}

// TaxonomyRevision returns the lists of a named revision, falling back to
// the default when the name is unknown.
func TaxonomyRevision(name string) Taxonomy {
	for _, t := range taxonomyRevisions {
		if t.Revision == name {
			return t
		}
	}
	return DefaultTaxonomy()
}

// Values returns the allowed values for a tag. The returned slice is a copy.
func (t Taxonomy) Values(tag TaxonomyTag) []string {
	return append([]string(nil), t.values[tag]...)
}

// Allowed reports whether value is in the tag's list. Empty values are
// allowed for tags that are optional on the form.
func (t Taxonomy) Allowed(tag TaxonomyTag, value string) bool {
	if value == "" {
		return tag == TagSubCategories || tag == TagMedicalConditions
	}
	for _, v := range t.values[tag] {
		if v == value {
			return true
		}
	}
	return false
}

// MedicalSubCategory is the disbursement sub-category that makes the
// medical-condition field meaningful.
const MedicalSubCategory = "Medical help"

var taxonomyRevisions = []Taxonomy{
	{
		Revision: "v1",
		values: map[TaxonomyTag][]string{
			TagIncomeCategories:   {"Zakat", "Sadaka"},
			TagOutgoingCategories: {"Zakat", "Sadaka"},
			TagSubCategories:      {"Medical help", "Food aid", "Other"},
			TagMedicalConditions:  {"Heart", "Kidney", "Cancer", "Other"},
			TagGroups:             {GroupBrother, GroupSister},
		},
	},
	{
		Revision: "v2",
		values: map[TaxonomyTag][]string{
			TagIncomeCategories:   {"Zakat", "Sadaka", "Fitra", "General Fund"},
			TagOutgoingCategories: {"Zakat", "Sadaka", "Fitra", "General Fund"},
			TagSubCategories:      {"Medical help", "Food aid", "Education", "Housing", "Other"},
			TagMedicalConditions:  {"Heart", "Kidney", "Cancer", "Surgery", "Other"},
			TagGroups:             {GroupBrother, GroupSister, GroupNone},
		},
	},
}
