package result

// Kind tells transport how a service operation ended.
type Kind int

const (
	KindOK Kind = iota
	KindNotFound
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// Result is what every service operation returns to transport. Only an OK
// result may carry a value.
type Result[T any] struct {
	kind     Kind
	message  string
	value    T
	hasValue bool
}

// Envelope is the wire form of a Result.
type Envelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func OK[T any](message string, value T) Result[T] {
	return Result[T]{kind: KindOK, message: message, value: value, hasValue: true}
}

// Done is a success without a payload, e.g. a deletion.
func Done[T any](message string) Result[T] {
	return Result[T]{kind: KindOK, message: message}
}

func NotFound[T any](message string) Result[T] {
	return Result[T]{kind: KindNotFound, message: message}
}

func Fail[T any](message string) Result[T] {
	return Result[T]{kind: KindFailed, message: message}
}

func (r Result[T]) Kind() Kind       { return r.kind }
func (r Result[T]) Message() string  { return r.message }
func (r Result[T]) Succeeded() bool  { return r.kind == KindOK }
func (r Result[T]) IsNotFound() bool { return r.kind == KindNotFound }

// Value returns the payload and whether there is one.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.hasValue
}

func (r Result[T]) Envelope() Envelope {
	env := Envelope{Status: r.Succeeded(), Message: r.message}
	if r.hasValue {
		env.Data = r.value
	}
	return env
}
