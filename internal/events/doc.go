// Package events announces committed task changes to interested parties.
//
// The task service builds a TaskEvent after each successful write and hands
// it to an EventEmitter. InMemoryEventEmitter fans events out to registered
// handlers: LoggingHandler records them in the structured log and
// NATSHandler publishes them as JSON to a NATS subject derived from the
// event type. Services depend only on the EventEmitter interface.
package events
