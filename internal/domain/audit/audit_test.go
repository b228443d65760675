package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"retailops/internal/core/id"
)

type failingSink struct{ calls int }

func (f *failingSink) Record(context.Context, Entry) error {
	f.calls++
	return errors.New("sink down")
}

func TestEmitStampsTime(t *testing.T) {
	sink := &MemorySink{}
	Emit(context.Background(), sink, Entry{Action: ActionDistribute, EntityID: id.New()})

	entries := sink.Entries()
	if assert.Len(t, entries, 1) {
		assert.False(t, entries[0].At.IsZero())
	}
}

func TestEmitSwallowsSinkErrors(t *testing.T) {
	failing := &failingSink{}
	memory := &MemorySink{}

	assert.NotPanics(t, func() {
		Emit(context.Background(), MultiSink{failing, memory}, Entry{Action: ActionDeletePurchase})
	})
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, []Action{ActionDeletePurchase}, memory.Actions())
}

func TestEmitNilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		Emit(context.Background(), nil, Entry{})
	})
}
