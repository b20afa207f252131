package host

// Extras carries typed values alongside an intent.
type Extras map[string]any

// Intent is a message delivered to a named service.
type Intent struct {
	Action string
	Extras Extras
}

// NewIntent returns an intent for action with empty extras.
func NewIntent(action string) Intent {
	return Intent{Action: action, Extras: Extras{}}
}

// With returns a copy of the intent with key set to value.
func (in Intent) With(key string, value any) Intent {
	extras := make(Extras, len(in.Extras)+1)
	for k, v := range in.Extras {
		extras[k] = v
	}
	extras[key] = value
	in.Extras = extras
	return in
}

func (e Extras) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// String returns the string extra, or def when missing or of another type.
func (e Extras) String(key, def string) string {
	if v, ok := e[key].(string); ok {
		return v
	}
	return def
}

func (e Extras) Bool(key string, def bool) bool {
	if v, ok := e[key].(bool); ok {
		return v
	}
	return def
}

// Int64 accepts any integer type.
func (e Extras) Int64(key string, def int64) int64 {
	switch v := e[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint32:
		return int64(v)
	}
	return def
}
