package watcher

// EventKind classifies what happened to a watched file.
type EventKind int

const (
	Created EventKind = iota
	Modified
	Deleted
)

func (k EventKind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// FileEvent is a single filesystem change that survived filtering. Path is
// absolute; relative rewriting happens when the event is acted on.
type FileEvent struct {
	Path string
	Kind EventKind
}

func (e FileEvent) String() string {
	return e.Kind.String() + " " + e.Path
}
