/*
Package rabbitmq provides a RabbitMQ relayer for mediator notifications.
It publishes relayed notifications to a topic exchange routed by subject,
includes an auto-reconnect publisher, and supports optional header
propagation via a bridge.HeaderPropagator.
*/
package rabbitmq
