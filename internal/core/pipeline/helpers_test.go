package pipeline

import (
	"errors"
	"time"
)

// scriptedTimer replays samples in order and repeats the last one once
// the script runs out.
type scriptedTimer struct {
	samples []time.Duration
	calls   int
}

func newScriptedTimer(samples ...time.Duration) *scriptedTimer {
	return &scriptedTimer{samples: samples}
}

func (t *scriptedTimer) Elapsed() time.Duration {
	t.calls++
	if len(t.samples) == 0 {
		return 0
	}
	if len(t.samples) == 1 {
		return t.samples[0]
	}
	d := t.samples[0]
	t.samples = t.samples[1:]
	return d
}

type fixedCounter struct {
	calls int
	steps []time.Duration
}

func (c *fixedCounter) FixedUpdate(step time.Duration) error {
	c.calls++
	c.steps = append(c.steps, step)
	return nil
}

// plainBehavior exposes no capability at all.
type plainBehavior struct{ id int }

type failingBehavior struct{ calls int }

func (f *failingBehavior) FixedUpdate(time.Duration) error {
	f.calls++
	return errors.New("boom")
}

type panickingBehavior struct{ calls int }

func (p *panickingBehavior) FixedUpdate(time.Duration) error {
	p.calls++
	panic("kaboom")
}

type funcFixed func(step time.Duration) error

type funcFixedBehavior struct{ fn funcFixed }

func (f *funcFixedBehavior) FixedUpdate(step time.Duration) error { return f.fn(step) }
