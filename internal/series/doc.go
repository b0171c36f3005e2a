// Package series writes decoded readings to a time-series store.
//
// Each Reading becomes three samples, one per measurement, appended to the
// series named by Keys. A sample's time is either Auto (the store stamps it
// on receipt) or an explicit instant given with At.
//
// The store is reached through the Appender interface; internal/store
// provides the concrete backends.
package series
