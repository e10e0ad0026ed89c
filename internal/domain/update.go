package domain

// Update is the tagged variant produced at the Slack boundary and
// consumed by entry registration. Decoding the loosely-typed interaction
// payload into one of these is the only place UI schema drift is
// tolerated.
type Update interface{ isUpdate() }

// Submission carries a full modal submit: a description plus optional
// work-type and program selections ("" means the field was left unset).
type Submission struct {
	Description  string
	WorkTypeCode string
	ProgramCode  string
}

func (Submission) isUpdate() {}

// SelectField names which reference field a Selection changes.
type SelectField int

const (
	SelectWorkType SelectField = iota
	SelectProgram
)

// Selection is a single in-modal select change, applied without touching
// the description.
type Selection struct {
	Field SelectField
	Code  string
}

func (Selection) isUpdate() {}
