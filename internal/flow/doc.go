// Package flow implements the simulated request cycles behind the studio
// tools.
//
// A flow moves idle -> pending -> idle. Trigger sanitizes the input, computes
// the payload straight away and hands it to a Dispatcher together with a
// delay drawn from the flow's Window. When the delay elapses the payload is
// written into the Store as the current result and the loading flag is
// cleared. Deliveries are never cancelled and triggers are not coalesced, so
// with several deliveries in flight the last one to land wins.
package flow
