package domain

// FieldDescription declares one widget of a detail view or wizard step.
type FieldDescription struct {
	Name     string `json:"name" mapstructure:"name"`
	HelpText string `json:"helpText,omitempty" mapstructure:"help_text"`
	Widget   string `json:"widget,omitempty" mapstructure:"widget"`
	Required bool   `json:"required,omitempty" mapstructure:"required"`
}

// Column declares one list view column.
type Column struct {
	Header   string `json:"header" mapstructure:"header"`
	Accessor string `json:"accessor" mapstructure:"accessor"`
}

// FieldPolicy partitions a resource's fields into those sent on update and
// those only displayed.
type FieldPolicy struct {
	Writable []string `json:"writableFields" mapstructure:"writable_fields"`
	ReadOnly []string `json:"readOnlyFields" mapstructure:"read_only_fields"`
}

// IsWritable reports whether a field may be sent on update. With no
// writable list every field that is not read-only is writable.
func (p FieldPolicy) IsWritable(name string) bool {
	for _, ro := range p.ReadOnly {
		if ro == name {
			return false
		}
	}
	if len(p.Writable) == 0 {
		return true
	}
	for _, w := range p.Writable {
		if w == name {
			return true
		}
	}
	return false
}

// Payload returns the subset of record that may be sent on update.
func (p FieldPolicy) Payload(record Record) Record {
	payload := make(Record, len(record))
	for key, value := range record {
		if p.IsWritable(key) {
			payload[key] = value
		}
	}
	return payload
}
