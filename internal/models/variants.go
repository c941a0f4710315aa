package models

// EventVariant describes the behavior behind a RoleEvent's Type
// discriminator. A variant is either plain (never touches role status)
// or status-changing (declares ResultStatus plus the statuses it may be
// applied from). Conditional variants replace the generic source set
// with an AppliesFrom predicate and are never run through the generic
// transition validator.
type EventVariant struct {
	// Key is the Type discriminator stored on the event record. The
	// base variant uses the empty key.
	Key string

	// Label is the human-readable name shown in variant choices.
	Label string

	// Summary is the default summary stored on events of this variant
	// when the caller supplies none.
	Summary string

	// Abstract marks a placeholder variant that can never be
	// instantiated. Creation attempts fail validation on the type
	// field.
	Abstract bool

	// ResultStatus is the status the role takes when the variant
	// applies. Zero for plain variants.
	ResultStatus Status

	// ValidSources is the set of statuses the transition is legal
	// from. Non-empty for every concrete status-changing variant
	// without a predicate.
	ValidSources []Status

	// AppliesFrom, when set, decides per current status whether this
	// variant changes the role's status. It replaces both ValidSources
	// and the generic validator: when it reports false the event is
	// recorded as a plain note instead of failing.
	AppliesFrom func(current Status) bool

	// Reopen marks the variant whose projection is the reopen history
	// scan rather than the generic status assignment.
	Reopen bool
}

// StatusChanging reports whether the variant ever assigns a role status.
func (v *EventVariant) StatusChanging() bool {
	return v.ResultStatus != "" || v.Reopen
}

// Conditional reports whether admissibility is decided by a predicate
// instead of the generic source-status set.
func (v *EventVariant) Conditional() bool {
	return v.AppliesFrom != nil
}

// AdmissibleFrom reports whether the variant may be applied to a role
// in the given status. Plain variants are always admissible.
func (v *EventVariant) AdmissibleFrom(current Status) bool {
	if v.Abstract {
		return false
	}
	if v.AppliesFrom != nil {
		return v.AppliesFrom(current)
	}
	if !v.StatusChanging() {
		return true
	}
	// Source membership wins over the self-transition rule so that
	// variants listing their own result status (closed) stay
	// idempotent.
	for _, s := range v.ValidSources {
		if s == current {
			return true
		}
	}
	return false
}

// variantCatalogue is the closed set of event variants, in the order
// they are offered to callers. The base (empty key) variant doubles as
// the "no type selected" choice.
var variantCatalogue = []*EventVariant{
	{Key: "", Label: "Note", Summary: "Logged a note"},
	{Key: "status", Label: "Status change", Abstract: true},
	{Key: "contacted", Label: "Contacted", Summary: "Was contacted by the employer"},
	{
		Key: "applied", Label: "Applied", Summary: "Submitted an application",
		ResultStatus: StatusApplied,
		ValidSources: []Status{StatusNew},
	},
	{
		Key: "pitched", Label: "Pitched", Summary: "Pitched directly to the employer",
		ResultStatus: StatusApplied,
		ValidSources: []Status{StatusNew},
	},
	{
		// Referred only advances a role that has not been applied to
		// yet; on a role already in flight it is recorded as a note.
		Key: "referred", Label: "Referred", Summary: "Received a referral",
		ResultStatus: StatusApplied,
		AppliesFrom:  func(current Status) bool { return current == StatusNew },
	},
	{
		Key: "interview", Label: "Interview", Summary: "Interviewed for the role",
		ResultStatus: StatusInterviewing,
		ValidSources: []Status{StatusApplied, StatusInterviewing},
	},
	{
		Key: "offered", Label: "Offered", Summary: "Received an offer",
		ResultStatus: StatusOffered,
		ValidSources: []Status{StatusInterviewing},
	},
	{
		Key: "accepted", Label: "Accepted", Summary: "Accepted the offer",
		ResultStatus: StatusClosed,
		ValidSources: []Status{StatusOffered},
	},
	{
		Key: "declined", Label: "Declined", Summary: "Declined the offer",
		ResultStatus: StatusClosed,
		ValidSources: []Status{StatusOffered},
	},
	{
		Key: "rejected", Label: "Rejected", Summary: "Was rejected by the employer",
		ResultStatus: StatusClosed,
		ValidSources: []Status{StatusApplied, StatusInterviewing, StatusOffered},
	},
	{
		Key: "withdrawn", Label: "Withdrawn", Summary: "Withdrew from the process",
		ResultStatus: StatusClosed,
		ValidSources: []Status{StatusApplied, StatusInterviewing},
	},
	{
		Key: "expired", Label: "Expired", Summary: "Posting or process expired",
		ResultStatus: StatusClosed,
		ValidSources: []Status{StatusNew, StatusApplied, StatusInterviewing, StatusOffered},
	},
	{
		Key: "closed", Label: "Closed", Summary: "Closed the role",
		ResultStatus: StatusClosed,
		ValidSources: []Status{StatusNew, StatusApplied, StatusInterviewing, StatusOffered, StatusClosed},
	},
	{
		// Reopening is only offered on closed roles and is never
		// status-validated; its projection scans history instead.
		Key: "reopened", Label: "Reopened", Summary: "Reopened the role",
		Reopen:      true,
		AppliesFrom: func(current Status) bool { return current == StatusClosed },
	},
}

var variantsByKey = func() map[string]*EventVariant {
	m := make(map[string]*EventVariant, len(variantCatalogue))
	for _, v := range variantCatalogue {
		m[v.Key] = v
	}
	return m
}()

// VariantFor resolves a Type discriminator to its variant. Unknown keys
// resolve to the base variant, matching the behavior for an empty key.
func VariantFor(key string) *EventVariant {
	if v, ok := variantsByKey[key]; ok {
		return v
	}
	return variantsByKey[""]
}

// VariantChoice is one (label, key) pair offered to form-rendering
// callers.
type VariantChoice struct {
	Label string `json:"label"`
	Key   string `json:"key"`
}

// ApplicableVariants returns the ordered choices legal for a role in
// the given status. The base placeholder is always included.
func ApplicableVariants(current Status) []VariantChoice {
	choices := make([]VariantChoice, 0, len(variantCatalogue))
	for _, v := range variantCatalogue {
		if v.Key == "" || v.AdmissibleFrom(current) {
			choices = append(choices, VariantChoice{Label: v.Label, Key: v.Key})
		}
	}
	return choices
}
