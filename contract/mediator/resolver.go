package mediator

import (
	"fmt"
	"reflect"
)

// Kind names the capability a Contract asks for.
type Kind uint8

const (
	KindSignalHandler Kind = iota + 1
	KindNotificationHandler
	KindPipelineBehaviour
	KindPreProcessor
	KindPostProcessor
	KindExceptionAction
	KindExceptionHandler
)

var kindNames = map[Kind]string{
	KindSignalHandler:       "SignalHandler",
	KindNotificationHandler: "NotificationHandler",
	KindPipelineBehaviour:   "PipelineBehaviour",
	KindPreProcessor:        "PreProcessor",
	KindPostProcessor:       "PostProcessor",
	KindExceptionAction:     "ExceptionAction",
	KindExceptionHandler:    "ExceptionHandler",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}

	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Contract identifies what is requested from a Resolver. It is comparable and
// can be used as a map key. Unused type fields are nil.
type Contract struct {
	Kind     Kind
	Message  reflect.Type
	Response reflect.Type
	Error    reflect.Type
}

func (c Contract) String() string {
	s := c.Kind.String() + "[" + typeString(c.Message)
	if c.Response != nil {
		s += ", " + typeString(c.Response)
	}

	if c.Error != nil {
		s += ", " + typeString(c.Error)
	}

	return s + "]"
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}

// Resolver is the boundary to the host's composition layer.
// Resolve returns the single instance registered for c; ResolveAll returns every
// instance in registration order, or an empty slice.
// Implementations must be safe for concurrent use.
type Resolver interface {
	Resolve(c Contract) (any, bool)
	ResolveAll(c Contract) []any
}

// RootErrorCategory is the last category visited by the exception pipeline.
// Registering for it catches every error.
var RootErrorCategory = reflect.TypeFor[error]()

// HandlerContract identifies the single handler for S.
func HandlerContract[S Signal[R], R any]() Contract {
	return Contract{Kind: KindSignalHandler, Message: reflect.TypeFor[S](), Response: reflect.TypeFor[R]()}
}

// NotificationHandlerContract identifies every handler of N.
func NotificationHandlerContract[N Notification]() Contract {
	return Contract{Kind: KindNotificationHandler, Message: reflect.TypeFor[N]()}
}

// BehaviourContract identifies the pipeline behaviours wrapping S.
func BehaviourContract[S Signal[R], R any]() Contract {
	return Contract{Kind: KindPipelineBehaviour, Message: reflect.TypeFor[S](), Response: reflect.TypeFor[R]()}
}

// PreProcessorContract identifies the pre-processors run before S is handled.
func PreProcessorContract[S any]() Contract {
	return Contract{Kind: KindPreProcessor, Message: reflect.TypeFor[S]()}
}

// PostProcessorContract identifies the post-processors run after S succeeds.
func PostProcessorContract[S Signal[R], R any]() Contract {
	return Contract{Kind: KindPostProcessor, Message: reflect.TypeFor[S](), Response: reflect.TypeFor[R]()}
}

// ExceptionActionContract is the contract for actions on S failing with category E.
func ExceptionActionContract[S any, E error]() Contract {
	return ExceptionActionContractOf(reflect.TypeFor[S](), reflect.TypeFor[E]())
}

// ExceptionActionContractOf is the reflect-typed form used while walking error categories.
func ExceptionActionContractOf(message, category reflect.Type) Contract {
	return Contract{Kind: KindExceptionAction, Message: message, Error: category}
}

// ExceptionHandlerContract is the contract for handlers recovering S failing with category E.
func ExceptionHandlerContract[S Signal[R], R any, E error]() Contract {
	return ExceptionHandlerContractOf(reflect.TypeFor[S](), reflect.TypeFor[R](), reflect.TypeFor[E]())
}

// ExceptionHandlerContractOf is the reflect-typed form used while walking error categories.
func ExceptionHandlerContractOf(message, response, category reflect.Type) Contract {
	return Contract{Kind: KindExceptionHandler, Message: message, Response: response, Error: category}
}
