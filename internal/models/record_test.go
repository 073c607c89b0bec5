package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasChanged(t *testing.T) {
	tests := []struct {
		name     string
		current  HostRecord
		previous *HostRecord
		want     bool
	}{
		{name: "no previous", current: HostRecord{IP: "10.0.0.1"}, want: true},
		{name: "different ip", current: HostRecord{IP: "10.0.0.2"}, previous: &HostRecord{IP: "10.0.0.1"}, want: true},
		{name: "same ip", current: HostRecord{IP: "10.0.0.1"}, previous: &HostRecord{IP: "10.0.0.1"}, want: false},
		{
			name:     "hostname and time changes do not count",
			current:  HostRecord{Hostname: "new", IP: "10.0.0.1", Timestamp: time.Unix(200, 0)},
			previous: &HostRecord{Hostname: "old", IP: "10.0.0.1", Timestamp: time.Unix(100, 0)},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasChanged(tt.current, tt.previous))
		})
	}
}

func TestObservationIsInitial(t *testing.T) {
	assert.True(t, Observation{}.IsInitial())
	assert.False(t, Observation{Previous: &HostRecord{IP: "10.0.0.1"}}.IsInitial())
}
