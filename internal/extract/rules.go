// Package extract carves job-listing fields out of raw HTML using ordered
// pre/post delimiter rules. There is no HTML parser involved: every
// operation is a plain substring search.
package extract

// Field names a value carried by a FieldRuleSet.
type Field string

const (
	FieldMaster           Field = "master"
	FieldTitle            Field = "title"
	FieldCompany          Field = "company"
	FieldJobsiteID        Field = "jobsiteId"
	FieldLocation         Field = "location"
	FieldPostDateTime     Field = "postDateTime"
	FieldLinkToJobListing Field = "linkToJobListing"
)

// Rule is one extraction approach: the text between the first Pre and the
// first Post that follows it. KeepPre and KeepPost retain the delimiters
// in the result.
type Rule struct {
	Pre      string
	Post     string
	KeepPre  bool
	KeepPost bool
}

// FieldRuleSet maps each field to its ordered approaches. The first rule
// that yields a non-empty result wins.
type FieldRuleSet map[Field][]Rule
