// Package infra holds the technical adapters: structured logging, metrics
// sinks and the MQTT publisher. Code here depends on the interfaces declared
// under core and never the other way around.
package infra
