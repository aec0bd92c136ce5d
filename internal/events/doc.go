// Package events carries task mutation notifications from the service layer
// to real-time subscribers.
//
// The service publishes typed events (TaskCreated, TaskUpdated, TaskDeleted)
// through the Publisher interface. The Dispatcher queues them and a single
// worker delivers each one, as an Envelope, to every registered Subscriber in
// publish order. Publishing never blocks and never fails the mutation that
// triggered it: when the queue is full the event is dropped and logged.
package events
