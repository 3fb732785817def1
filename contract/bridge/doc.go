// Package bridge holds the contracts for relaying in-process notifications to
// external brokers. Relays are outbound only; nothing received from a broker
// is dispatched back into a mediator.
package bridge
