package domain

// Status is the lifecycle status of a lead.
type Status string

const (
	StatusNew       Status = "New"
	StatusContacted Status = "Contacted"
	StatusQualified Status = "Qualified"
	StatusNurturing Status = "Nurturing"
	StatusCold      Status = "Cold"
	StatusLost      Status = "Lost"
	StatusRejected  Status = "Rejected"
	StatusConverted Status = "Converted"
)

var knownStatuses = map[Status]struct{}{
	StatusNew:       {},
	StatusContacted: {},
	StatusQualified: {},
	StatusNurturing: {},
	StatusCold:      {},
	StatusLost:      {},
	StatusRejected:  {},
	StatusConverted: {},
}

// coldStatuses are statuses that count as a dead or cooling lead for decay.
var coldStatuses = map[Status]bool{
	StatusCold:     true,
	StatusLost:     true,
	StatusRejected: true,
}

func IsKnownStatus(status Status) bool {
	_, ok := knownStatuses[status]
	return ok
}

// IsColdStatus returns true if the status marks the lead as cold, lost or rejected.
func IsColdStatus(status Status) bool {
	return coldStatuses[status]
}

// Statuses returns all known statuses in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusNew,
		StatusContacted,
		StatusQualified,
		StatusNurturing,
		StatusCold,
		StatusLost,
		StatusRejected,
		StatusConverted,
	}
}
