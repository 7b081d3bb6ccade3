package domain

// Decision roles a contact can hold in the buying process.
const (
	RoleDecisionMaker      = "Decision Maker"
	RoleInfluencer         = "Influencer"
	RoleEndUser            = "End User"
	RoleChampion           = "Champion"
	RoleGatekeeper         = "Gatekeeper"
	RoleTechnicalEvaluator = "Technical Evaluator"
	RoleIntern             = "Intern"
)

// DefaultRole is assigned when a lead is created without a decision role.
const DefaultRole = RoleInfluencer

// Priority is the sales priority set by the owning rep.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// Communication channels a lead prefers.
const (
	ChannelEmail    = "Email"
	ChannelPhone    = "Phone"
	ChannelLinkedIn = "LinkedIn"
	ChannelWebsite  = "Website"
	ChannelReferral = "Referral"
	ChannelEvent    = "Event"
	ChannelOther    = "Other"
)

// Location is the optional postal location of a lead.
type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// IsEmpty reports whether no location field is set.
func (l Location) IsEmpty() bool {
	return l.City == "" && l.State == "" && l.Country == ""
}

var knownRoles = map[string]bool{
	RoleDecisionMaker:      true,
	RoleInfluencer:         true,
	RoleEndUser:            true,
	RoleChampion:           true,
	RoleGatekeeper:         true,
	RoleTechnicalEvaluator: true,
	RoleIntern:             true,
}

var knownChannels = map[string]bool{
	ChannelEmail:    true,
	ChannelPhone:    true,
	ChannelLinkedIn: true,
	ChannelWebsite:  true,
	ChannelReferral: true,
	ChannelEvent:    true,
	ChannelOther:    true,
}

func IsKnownRole(role string) bool {
	return knownRoles[role]
}

func IsKnownChannel(channel string) bool {
	return knownChannels[channel]
}

func IsKnownPriority(priority string) bool {
	switch Priority(priority) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
