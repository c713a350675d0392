package domain

// Filter narrows a list query. Operation, when set, qualifies the lookup
// (e.g. "equals", "icontains") and is sent as name__operation.
type Filter struct {
	Name      string `json:"filterName" mapstructure:"name"`
	Value     string `json:"value" mapstructure:"value"`
	Operation string `json:"filterOperation,omitempty" mapstructure:"operation"`
}

// NewFilter creates a filter without an operation.
func NewFilter(name, value string) Filter {
	return Filter{Name: name, Value: value}
}

// WithOperation returns a copy of the filter qualified by the given operation.
func (f Filter) WithOperation(operation string) Filter {
	return Filter{Name: f.Name, Value: f.Value, Operation: operation}
}

// WithValue returns a copy of the filter carrying a new value.
func (f Filter) WithValue(value string) Filter {
	return Filter{Name: f.Name, Value: value, Operation: f.Operation}
}

// TableFilter is a filter bound to a list column.
type TableFilter struct {
	ID    string `json:"id"`
	Value Filter `json:"value"`
}

// FilterValues extracts the filters carried by table filters, preserving order.
func FilterValues(tableFilters []TableFilter) []Filter {
	if len(tableFilters) == 0 {
		return nil
	}
	filters := make([]Filter, len(tableFilters))
	for i, tf := range tableFilters {
		filters[i] = tf.Value
	}
	return filters
}
