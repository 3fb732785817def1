/*
Package dispatch is an in-process mediator. Send routes a signal to its single
handler through the registered pipeline behaviours; Publish fans a notification
out to every handler under a selectable multicast strategy.

Handlers, behaviours and processors are never constructed here. They are
requested from a mediator.Resolver owned by the host. The only objects the
Mediator builds itself are its per-type dispatch adapters, exactly once per
concrete message type.
*/
package dispatch
