package email

const defaultFromName = "Lead Portal"

const subjectHotLeadFmt = "Hot lead: %s (%d)"
