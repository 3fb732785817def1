// Package behaviours provides stock pipeline behaviours and processors:
// structured logging, rate limiting and struct validation.
//
// Each is registered like any other behaviour, e.g.
//
//	container.AddBehaviour[GetUser, User](c, behaviours.NewLogging[GetUser, User](logger))
package behaviours
