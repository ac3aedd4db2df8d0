// Package eventqueue provides the discrete event queue that drives the
// congestion-aware network model.
package eventqueue

import (
	"container/list"
	"fmt"
)

// EventTime is the simulated time in nanoseconds.
type EventTime uint64

// A Callback is invoked when the event it is scheduled with fires.
type Callback func()

// An EventList holds all the events that are scheduled at the same time. The
// events are invoked in the order that they are scheduled.
type EventList struct {
	time   EventTime
	events []Callback
}

// Time returns the time that all the events in the list are scheduled at.
func (l *EventList) Time() EventTime {
	return l.time
}

// Len returns the number of events in the list.
func (l *EventList) Len() int {
	return len(l.events)
}

func (l *EventList) add(cb Callback) {
	l.events = append(l.events, cb)
}

func (l *EventList) invoke() {
	for _, cb := range l.events {
		cb()
	}
}

// An EventQueue keeps the simulation time and dispatches the events in
// non-decreasing time order.
type EventQueue struct {
	currentTime EventTime
	lists       *list.List
	numEvents   int
}

// NewEventQueue creates an empty EventQueue at time 0.
func NewEventQueue() *EventQueue {
	return &EventQueue{
		lists: list.New(),
	}
}

// CurrentTime returns the current simulation time.
func (q *EventQueue) CurrentTime() EventTime {
	return q.currentTime
}

// Finished returns true if there is no event left to invoke.
func (q *EventQueue) Finished() bool {
	return q.lists.Len() == 0
}

// Len returns the number of events that have not been invoked yet.
func (q *EventQueue) Len() int {
	return q.numEvents
}

// NextTime returns the time of the earliest pending event. The second return
// value is false if the queue is empty.
func (q *EventQueue) NextTime() (EventTime, bool) {
	front := q.lists.Front()
	if front == nil {
		return 0, false
	}

	return front.Value.(*EventList).time, true
}

// Schedule registers a callback to be invoked at the given time. Scheduling
// an event in the past is a causality violation and panics.
func (q *EventQueue) Schedule(t EventTime, cb Callback) {
	if cb == nil {
		panic("cannot schedule a nil callback")
	}

	if t < q.currentTime {
		panic(fmt.Sprintf(
			"cannot schedule event at %d, current time is %d",
			t, q.currentTime))
	}

	q.findOrCreateList(t).add(cb)
	q.numEvents++
}

// findOrCreateList scans from the back since newly scheduled events are
// usually the latest ones.
func (q *EventQueue) findOrCreateList(t EventTime) *EventList {
	for e := q.lists.Back(); e != nil; e = e.Prev() {
		l := e.Value.(*EventList)

		if l.time == t {
			return l
		}

		if l.time < t {
			newList := &EventList{time: t}
			q.lists.InsertAfter(newList, e)
			return newList
		}
	}

	newList := &EventList{time: t}
	q.lists.PushFront(newList)

	return newList
}

// Proceed advances the time to the earliest EventList and invokes all its
// events. Events scheduled by the invoked callbacks at the current time are
// placed in a new list and are invoked by the next call to Proceed.
func (q *EventQueue) Proceed() {
	front := q.lists.Front()
	if front == nil {
		panic("cannot proceed on an empty event queue")
	}

	l := front.Value.(*EventList)
	if l.time < q.currentTime {
		panic(fmt.Sprintf(
			"event list at %d is earlier than current time %d",
			l.time, q.currentTime))
	}

	q.lists.Remove(front)
	q.currentTime = l.time
	q.numEvents -= l.Len()

	l.invoke()
}

// Run invokes events until the queue is drained.
func (q *EventQueue) Run() {
	for !q.Finished() {
		q.Proceed()
	}
}
