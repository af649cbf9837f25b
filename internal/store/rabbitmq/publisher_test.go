package rabbitmq

import "testing"

func TestQueueNames(t *testing.T) {
	if RetryQueue("notifications") != "notifications.retry" || DeadLetterQueue("notifications") != "notifications.dlq" {
		t.Fatalf("unexpected queue names")
	}
}

func TestParseDeliveryMessage(t *testing.T) {
	if id, ok := ParseDeliveryMessage([]byte(`{"delivery_id":"01J0"}`)); !ok || id != "01J0" {
		t.Fatalf("got %q %v", id, ok)
	}
	for _, body := range []string{``, `{}`, `not json`, `{"delivery_id":""}`} {
		if _, ok := ParseDeliveryMessage([]byte(body)); ok {
			t.Fatalf("accepted %q", body)
		}
	}
}
