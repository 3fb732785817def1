/*
Package mediator holds the contracts shared by the dispatch engine, its
resolver and user code: message markers, handler and pipeline interfaces, the
exception pipeline contracts and the Resolver boundary.
*/
package mediator
