package server

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	commsserver "github.com/nats-io/nats-server/v2/server"
	comms "github.com/nats-io/nats.go"

	"github.com/openolat/olat-gateway/pkg/dispatcher"
	"github.com/openolat/olat-gateway/pkg/events"
	"github.com/openolat/olat-gateway/pkg/help"
	"github.com/openolat/olat-gateway/pkg/settings"
)

const commsTestPrefix = "server:comms_test"

func startCommsServer(t *testing.T, port int) (*comms.Conn, func()) {
	t.Helper()

	opts := &commsserver.Options{
		Host:   "127.0.0.1",
		Port:   port,
		NoLog:  true,
		NoSigs: true,
	}
	ns, err := commsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("%s - failed to create server: %v", commsTestPrefix, err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatalf("%s - server failed to start", commsTestPrefix)
	}

	nc, err := comms.Connect(ns.ClientURL(), comms.Timeout(5*time.Second))
	if err != nil {
		ns.Shutdown()
		t.Fatalf("%s - failed to connect: %v", commsTestPrefix, err)
	}
	return nc, func() {
		nc.Close()
		ns.Shutdown()
		ns.WaitForShutdown()
	}
}

func request(t *testing.T, nc *comms.Conn, subject string, payload interface{}) *dispatcher.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("%s - marshal: %v", commsTestPrefix, err)
	}
	msg, err := nc.Request(subject, data, 5*time.Second)
	if err != nil {
		t.Fatalf("%s - request: %v", commsTestPrefix, err)
	}
	var resp dispatcher.Response
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		t.Fatalf("%s - unmarshal response: %v", commsTestPrefix, err)
	}
	return &resp
}

func TestSubscribeDispatcher_RoundTrip(t *testing.T) {
	nc, cleanup := startCommsServer(t, 14350)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env := newTestEnv(t, "", nil)
	disp := dispatcher.NewDispatcher(env.comps.Services(nil))
	sub, err := SubscribeDispatcher(ctx, nc, "test.gateway", queueGroup, disp, 5*time.Second)
	if err != nil {
		t.Fatalf("%s - subscribe: %v", commsTestPrefix, err)
	}
	defer sub.Unsubscribe()

	resp := request(t, nc, "test.gateway", map[string]interface{}{
		"id":     "r1",
		"method": dispatcher.MethodURIDecode,
		"params": map[string]interface{}{"path": "/olat/1:2:3:1:0:lang:de/course"},
		"ctx":    map[string]interface{}{"timeoutMs": 1000},
	})
	if !resp.Ok || resp.ID != "r1" {
		t.Fatalf("%s - unexpected response %+v", commsTestPrefix, resp)
	}
	result, _ := resp.Result.(map[string]interface{})
	if result["moduleUri"] != "course" || result["windowId"] != "1" {
		t.Errorf("%s - unexpected result %v", commsTestPrefix, result)
	}

	resp = request(t, nc, "test.gateway", map[string]interface{}{
		"id":     "r2",
		"method": dispatcher.MethodURIDecode,
		"params": map[string]interface{}{"path": "/olat/1:2:3:1:0/../x"},
	})
	if resp.Ok || resp.Error == nil || resp.Error.Code != dispatcher.CodeRejected {
		t.Errorf("%s - expected REJECTED, got %+v", commsTestPrefix, resp)
	}

	resp = request(t, nc, "test.gateway", map[string]interface{}{"id": "r3", "method": "no.such"})
	if resp.Error == nil || resp.Error.Code != dispatcher.CodeMethodNotFound {
		t.Errorf("%s - expected METHOD_NOT_FOUND, got %+v", commsTestPrefix, resp)
	}
}

func TestDispatchHandler_InvalidRequest(t *testing.T) {
	nc, cleanup := startCommsServer(t, 14351)
	defer cleanup()

	env := newTestEnv(t, "", nil)
	disp := dispatcher.NewDispatcher(env.comps.Services(nil))
	sub, err := nc.Subscribe("test.gateway", DispatchHandler(context.Background(), disp, time.Second))
	if err != nil {
		t.Fatalf("%s - subscribe: %v", commsTestPrefix, err)
	}
	defer sub.Unsubscribe()

	msg, err := nc.Request("test.gateway", []byte("{not json"), 5*time.Second)
	if err != nil {
		t.Fatalf("%s - request: %v", commsTestPrefix, err)
	}
	var resp dispatcher.Response
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		t.Fatalf("%s - unmarshal: %v", commsTestPrefix, err)
	}
	if resp.Ok || resp.Error == nil || resp.Error.Code != "INVALID_REQUEST" {
		t.Errorf("%s - expected INVALID_REQUEST, got %+v", commsTestPrefix, resp)
	}
}

// Two nodes share one store; a change on node A reaches node B through the change
// subject.
func TestReloader_PropagatesChangesBetweenNodes(t *testing.T) {
	nc, cleanup := startCommsServer(t, 14352)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := settings.NewMemoryStore()
	publisher := events.NewCommsPublisher(nc, nil)
	build := func(origin string) *Components {
		comps, err := BuildComponents(ctx, ComponentsParams{
			URIPrefix: "/olat/",
			Store:     store,
			Publisher: publisher,
			Origin:    origin,
		})
		if err != nil {
			t.Fatalf("%s - BuildComponents(%s): %v", commsTestPrefix, origin, err)
		}
		return comps
	}
	nodeA := build("node-a")
	nodeB := build("node-b")

	sub, err := nodeB.Reloader.Subscribe(ctx, nc, publisher.GlobalSubject())
	if err != nil {
		t.Fatalf("%s - subscribe: %v", commsTestPrefix, err)
	}
	defer sub.Unsubscribe()
	if err := nc.Flush(); err != nil {
		t.Fatalf("%s - flush: %v", commsTestPrefix, err)
	}

	if err := nodeA.Help.SavePlugin(ctx, string(help.Support), help.SaveInput{Input: "help@example.org", UserTool: true}); err != nil {
		t.Fatalf("%s - SavePlugin: %v", commsTestPrefix, err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := nodeB.Help.Config(string(help.Support)); err == nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("%s - node-b did not pick up the support plugin", commsTestPrefix)
}
