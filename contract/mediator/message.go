package mediator

import "reflect"

// Unit is the response of a signal that has no meaningful result.
type Unit struct{}

// AnySignal is the type-erased view of a signal.
// ResponseType reports the response type the signal declares.
type AnySignal interface {
	ResponseType() reflect.Type
}

// Signal is a request handled by exactly one handler producing R.
// Implement it by embedding SignalOf[R] in the message type.
type Signal[R any] interface {
	AnySignal
	respondsWith(R)
}

// SignalOf declares the embedding type a signal answered with R.
//
//	type GetUser struct {
//	    mediator.SignalOf[User]
//	    ID string
//	}
type SignalOf[R any] struct{}

// ResponseType returns the reflect.Type of R.
func (SignalOf[R]) ResponseType() reflect.Type { return reflect.TypeFor[R]() }

func (SignalOf[R]) respondsWith(R) {}

// VoidSignal declares a signal whose handler returns Unit.
type VoidSignal = SignalOf[Unit]

// Notification is a broadcast message with zero or more handlers.
// Implement it by embedding NotificationBase.
type Notification interface {
	notification()
}

// NotificationBase declares the embedding type a notification.
type NotificationBase struct{}

func (NotificationBase) notification() {}
