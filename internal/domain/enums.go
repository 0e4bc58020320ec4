package domain

// DataType classifies the kind of value a placeholder expects. It drives
// which validation and normalization rules apply to submitted values.
type DataType string

const (
	DataTypeText     DataType = "text"
	DataTypeName     DataType = "name"
	DataTypeDate     DataType = "date"
	DataTypeCurrency DataType = "currency"
	DataTypeNumber   DataType = "number"
	DataTypeEmail    DataType = "email"
	DataTypePhone    DataType = "phone"
	DataTypeAddress  DataType = "address"
	DataTypeState    DataType = "state"
	DataTypeCompany  DataType = "company"
	DataTypeTitle    DataType = "title"
	DataTypeURL      DataType = "url"
)

// Valid reports whether dt is one of the known data types.
func (dt DataType) Valid() bool {
	switch dt {
	case DataTypeText, DataTypeName, DataTypeDate, DataTypeCurrency,
		DataTypeNumber, DataTypeEmail, DataTypePhone, DataTypeAddress,
		DataTypeState, DataTypeCompany, DataTypeTitle, DataTypeURL:
		return true
	}
	return false
}

// DetectionKind identifies which syntactic pattern produced an occurrence.
type DetectionKind string

const (
	KindDoubleUnderscore DetectionKind = "double_underscore"
	KindUnderscore       DetectionKind = "underscore"
	KindBracket          DetectionKind = "bracket"
	KindCurly            DetectionKind = "curly"
	KindDoubleCurly      DetectionKind = "double_curly"
	KindAngle            DetectionKind = "angle"
	KindBlankField       DetectionKind = "blank_field"
)

// AttemptStatus is the lifecycle state of a validation attempt for a field.
type AttemptStatus string

const (
	// StatusPending means no value has been accepted for the field yet.
	StatusPending AttemptStatus = "pending"
	// StatusAwaitingConfirmation means a normalized alternative was proposed
	// and the caller must accept or reject it.
	StatusAwaitingConfirmation AttemptStatus = "awaiting_confirmation"
	// StatusAccepted means a value passed validation or was confirmed.
	StatusAccepted AttemptStatus = "accepted"
	// StatusAutoAccepted means the submitted value was taken as-is after
	// repeated identical rejections.
	StatusAutoAccepted AttemptStatus = "auto_accepted"
)

// Terminal reports whether the status ends the attempt lifecycle.
func (s AttemptStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusAutoAccepted
}

// SessionStatus tracks a fill session from creation through finalization.
type SessionStatus string

const (
	SessionOpen      SessionStatus = "open"
	SessionFinalized SessionStatus = "finalized"
)
