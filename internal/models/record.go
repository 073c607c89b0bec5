package models

import "time"

// HostRecord is a snapshot of the host's name and address at a point in time
type HostRecord struct {
	Hostname  string
	IP        string
	Timestamp time.Time
}

// Observation is the result of comparing the live host state to the last record
type Observation struct {
	Current  HostRecord
	Previous *HostRecord // nil on initial execution

	Changed bool
	// PreviousCorrupt is set when a record file existed but could not be read
	PreviousCorrupt bool
}

// IsInitial reports whether no usable previous record was found
func (o Observation) IsInitial() bool {
	return o.Previous == nil
}

// HasChanged reports whether current differs from previous in a way worth
// notifying about. Only the IP address is compared.
func HasChanged(current HostRecord, previous *HostRecord) bool {
	if previous == nil {
		return true
	}
	return current.IP != previous.IP
}
