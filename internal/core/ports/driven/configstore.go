package driven

// ConfigStore keeps flat settings under dotted keys such as
// "openalex.email". Set and Delete change the in-memory copy; Save writes
// it out. Values are strings, integers, floats or booleans.
type ConfigStore interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
	Save() error

	// Path names the backing file, for messages.
	Path() string
}
