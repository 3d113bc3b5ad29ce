package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func TestHubPublishesToClients(t *testing.T) {
	hub := NewWebSocketHub(zap.NewNop(), []string{"*"})
	go hub.Start()
	defer hub.Stop()

	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish(PredictionEvent, map[string]string{"result": "will churn"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if msg.Type != PredictionEvent || msg.ID == "" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if !strings.Contains(string(msg.Data), "will churn") {
		t.Fatalf("unexpected payload %s", msg.Data)
	}
}

func TestHubSendsHeartbeat(t *testing.T) {
	hub := NewWebSocketHub(zap.NewNop(), []string{"*"})
	hub.heartbeat = 20 * time.Millisecond
	go hub.Start()
	defer hub.Stop()

	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if msg.Type != Heartbeat || string(msg.Data) != `{"clients":1}` {
		t.Fatalf("unexpected message %+v data %s", msg, msg.Data)
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://ops.example.com"})
	req := httptest.NewRequest(http.MethodGet, "/api/ws/predictions", nil)
	if !check(req) {
		t.Fatal("expected request without origin to pass")
	}
	req.Header.Set("Origin", "https://evil.example.com")
	if check(req) {
		t.Fatal("expected foreign origin to be rejected")
	}
	req.Header.Set("Origin", "https://ops.example.com")
	if !check(req) {
		t.Fatal("expected allowed origin to pass")
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.ObservePrediction("will churn")
	m.ObservePrediction("will churn")
	m.ObserveFailure("unseen_category")
	m.ObserveCacheHit()

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	found := false
	for _, family := range families {
		if family.GetName() != "churn_predictions_total" {
			continue
		}
		found = true
		if got := family.GetMetric()[0].GetCounter().GetValue(); got != 2 {
			t.Fatalf("expected 2 predictions, got %v", got)
		}
	}
	if !found {
		t.Fatal("churn_predictions_total not registered")
	}

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `churn_prediction_failures_total{reason="unseen_category"} 1`) {
		t.Fatalf("metrics output missing failure counter:\n%s", w.Body.String())
	}
}
