package shape

import "fmt"

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	UnsupportedFormat ErrorKind = iota + 1
	InvalidScale
	MissingField
	InvalidField
	UnknownFixtureType
)

func (k ErrorKind) String() string {
	switch k {
	case UnsupportedFormat:
		return "unsupported format"
	case InvalidScale:
		return "invalid scale"
	case MissingField:
		return "missing field"
	case InvalidField:
		return "invalid field"
	case UnknownFixtureType:
		return "unknown fixture type"
	default:
		return "parse error"
	}
}

// ParseError reports why a shape document was rejected. Key is the dotted
// path of the offending entry, Value the rejected value when there is one.
type ParseError struct {
	Kind  ErrorKind
	Key   string
	Value any
}

// Sentinels for errors.Is; they match any ParseError of the same kind.
var (
	ErrUnsupportedFormat  = &ParseError{Kind: UnsupportedFormat}
	ErrInvalidScale       = &ParseError{Kind: InvalidScale}
	ErrMissingField       = &ParseError{Kind: MissingField}
	ErrInvalidField       = &ParseError{Kind: InvalidField}
	ErrUnknownFixtureType = &ParseError{Kind: UnknownFixtureType}
)

func (e *ParseError) Error() string {
	switch {
	case e.Key != "" && e.Value != nil:
		return fmt.Sprintf("shape: %s %s: %v", e.Kind, e.Key, e.Value)
	case e.Key != "":
		return fmt.Sprintf("shape: %s %s", e.Kind, e.Key)
	case e.Value != nil:
		return fmt.Sprintf("shape: %s: %v", e.Kind, e.Value)
	default:
		return "shape: " + e.Kind.String()
	}
}

func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Key == "" || t.Key == e.Key)
}
