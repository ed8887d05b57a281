package domain

// SubjectType identifies the kind of principal behind an API call or event.
type SubjectType string

const (
	SubjectTypeService SubjectType = "SERVICE"
	SubjectTypeSystem  SubjectType = "SYSTEM"
)
