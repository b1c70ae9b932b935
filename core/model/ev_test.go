package model

import (
	"errors"
	"testing"
)

func TestNewEVValidation(t *testing.T) {
	b, err := NewBattery(24, 0, 7.04)
	if err != nil {
		t.Fatalf("new battery: %v", err)
	}
	if _, err := NewEV("s1", 0, 10, 100, 32, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("nil battery: expected invalid argument, got %v", err)
	}
	if _, err := NewEV("s1", 10, 10, 100, 32, b); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty window: expected invalid argument, got %v", err)
	}
}

func TestEVChargeAccumulatesDeliveredEnergy(t *testing.T) {
	b, err := NewBattery(24, 0, 7.04)
	if err != nil {
		t.Fatalf("new battery: %v", err)
	}
	ev, err := NewEV("s1", 0, 100, 100, 32, b)
	if err != nil {
		t.Fatalf("new EV: %v", err)
	}
	var total float64
	for i := 0; i < 3; i++ {
		actual, err := ev.Charge(32, 220, 1)
		if err != nil {
			t.Fatalf("charge: %v", err)
		}
		total += actual
	}
	if ev.EnergyDelivered() != total {
		t.Fatalf("delivered %v, want %v", ev.EnergyDelivered(), total)
	}
	if ev.RemainingDemand() != 100-total {
		t.Fatalf("remaining %v, want %v", ev.RemainingDemand(), 100-total)
	}

	ev.Reset()
	if ev.EnergyDelivered() != 0 || ev.Battery().CurrentCharge() != 0 {
		t.Fatalf("reset left delivered %v, charge %v", ev.EnergyDelivered(), ev.Battery().CurrentCharge())
	}
}

func TestScheduleHorizon(t *testing.T) {
	cases := []struct {
		name string
		s    Schedule
		want int
	}{
		{"empty", Schedule{}, 0},
		{"single", Schedule{"a": {5}}, 1},
		{"mixed", Schedule{"a": {5, 5, 5}, "b": {5}}, 1},
		{"uniform", Schedule{"a": {5, 5}, "b": {5, 5}}, 2},
	}
	for _, tc := range cases {
		if got := tc.s.Horizon(); got != tc.want {
			t.Errorf("%s: horizon %d, want %d", tc.name, got, tc.want)
		}
	}
}
