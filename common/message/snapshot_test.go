package message

import (
	"errors"
	"testing"

	"github.com/gorustyt/gorvo/common"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s := &Snapshot{
		Tick: 42,
		Time: 2.1,
		Agents: []AgentState{
			{ID: 1, Position: common.Vec3{1, 0, -2}, Velocity: common.Vec3{0.5, 0, 0}, Desired: common.Vec3{1, 0, 0}, Radius: 0.5},
			{ID: 7, Position: common.Vec3{-3, 1, 4}, Radius: 1.25, Locked: true},
		},
	}
	got, err := DecodeSnapshot(EncodeSnapshot(nil, s))
	if err != nil {
		t.Fatal(err)
	}
	if got.Tick != s.Tick || got.Time != s.Time || len(got.Agents) != len(s.Agents) {
		t.Fatalf("header mismatch: %+v", got)
	}
	for i := range s.Agents {
		if got.Agents[i] != s.Agents[i] {
			t.Errorf("agent %d: got %+v want %+v", i, got.Agents[i], s.Agents[i])
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	s := &Snapshot{Tick: 1, Agents: []AgentState{{ID: 3, Radius: 2}}}
	data := EncodeSnapshot(nil, s)
	_, err := DecodeSnapshot(data[:len(data)-3])
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestEncodeAppends(t *testing.T) {
	s := &Snapshot{Tick: 9, Agents: []AgentState{{ID: 2, Locked: true}}}
	data := EncodeSnapshot([]byte{0xff}, s)
	if data[0] != 0xff {
		t.Fatal("prefix overwritten")
	}
	if string(data[1:]) != string(EncodeSnapshot(nil, s)) {
		t.Fatal("encoding is not stable")
	}
	got, err := DecodeSnapshot(data[1:])
	if err != nil {
		t.Fatal(err)
	}
	if got.Tick != 9 || len(got.Agents) != 1 || got.Agents[0] != s.Agents[0] {
		t.Fatalf("got %+v", got)
	}
}
