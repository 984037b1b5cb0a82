// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebouncer_SingleCall(t *testing.T) {
	var called int32
	d := New(20 * time.Millisecond)

	d.Debounce(func() {
		atomic.AddInt32(&called, 1)
	})

	time.Sleep(80 * time.Millisecond)

	if got := atomic.LoadInt32(&called); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
}

func TestDebouncer_RapidCalls(t *testing.T) {
	var called, lastValue int32
	d := New(50 * time.Millisecond)

	for i := 1; i <= 5; i++ {
		value := int32(i)
		d.Debounce(func() {
			atomic.StoreInt32(&lastValue, value)
			atomic.AddInt32(&called, 1)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)

	if got := atomic.LoadInt32(&called); got != 1 {
		t.Errorf("expected 1 call for rapid succession, got %d", got)
	}

	if got := atomic.LoadInt32(&lastValue); got != 5 {
		t.Errorf("expected last value 5, got %d", got)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	var called int32
	d := New(50 * time.Millisecond)

	d.Debounce(func() {
		atomic.AddInt32(&called, 1)
	})

	if !d.Cancel() {
		t.Error("expected Cancel to report a pending call")
	}

	if d.Cancel() {
		t.Error("expected second Cancel to report nothing pending")
	}

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&called); got != 0 {
		t.Errorf("expected 0 calls after cancel, got %d", got)
	}
}

func TestDebouncer_Immediate(t *testing.T) {
	var called int32
	d := New(50 * time.Millisecond)

	d.Debounce(func() {
		atomic.AddInt32(&called, 10)
	})
	d.Immediate(func() {
		atomic.AddInt32(&called, 1)
	})

	if got := atomic.LoadInt32(&called); got != 1 {
		t.Errorf("expected immediate call only, got %d", got)
	}

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&called); got != 1 {
		t.Errorf("expected pending call to be canceled, got %d", got)
	}
}
