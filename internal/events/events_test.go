package events

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe(EventBookingCreated, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	payload := BookingEventPayload{
		BookingID:    "b1",
		RoomID:       "r1",
		CheckInDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
	}
	if err := bus.PublishJSON(EventBookingCreated, payload); err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
	if received.Type != EventBookingCreated {
		t.Errorf("expected type %s, got %s", EventBookingCreated, received.Type)
	}

	var decoded BookingEventPayload
	if err := json.Unmarshal(received.Payload, &decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if decoded.BookingID != "b1" || decoded.RoomID != "r1" {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe(EventBookingDeleted, func(_ *Event) error { count1++; return nil })
	bus.Subscribe(EventBookingDeleted, func(_ *Event) error { count2++; return nil })

	bus.Publish(&Event{Type: EventBookingDeleted})

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both handlers to be called once, got %d and %d", count1, count2)
	}
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	// Publishing without subscribers must not panic.
	bus.Publish(&Event{Type: "unknown"})

	if err := bus.PublishJSON("unknown", map[string]string{"k": "v"}); err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}
}

func TestNilBusPublishJSON(t *testing.T) {
	var bus *EventBus
	if err := bus.PublishJSON(EventPaymentCanceled, PaymentEventPayload{PaymentID: "p1"}); err != nil {
		t.Fatalf("nil bus should be a no-op, got %v", err)
	}
}
