package application

import "time"

// Recorder receives bond lifecycle and registry events for metrics.
type Recorder interface {
	LookupRecorder
	BondCreated()
	BondUpdated()
	BondDeleted()
}

type noopRecorder struct{}

func (noopRecorder) RegistryLookup(string, time.Time) {}
func (noopRecorder) BondCreated()                     {}
func (noopRecorder) BondUpdated()                     {}
func (noopRecorder) BondDeleted()                     {}
