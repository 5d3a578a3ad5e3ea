package commsutil

import (
	"encoding/json"
	"testing"
	"time"

	commsserver "github.com/nats-io/nats-server/v2/server"
	comms "github.com/nats-io/nats.go"
)

const codecTestPrefix = "commsutil:codec_test"

type changeEnvelope struct {
	Module  string   `json:"module"`
	Keys    []string `json:"keys,omitempty"`
	Removed bool     `json:"removed,omitempty"`
}

func TestEncodePayload(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    string
		wantErr bool
	}{
		{"change event", changeEnvelope{Module: "help", Keys: []string{"help.plugin"}}, `{"module":"help","keys":["help.plugin"]}`, false},
		{"omitted fields", changeEnvelope{Module: "lecture"}, `{"module":"lecture"}`, false},
		{"properties", map[string]string{"onlyoffice.enabled": "true"}, `{"onlyoffice.enabled":"true"}`, false},
		{"nil", nil, "null", false},
		{"channel is not serializable", make(chan int), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodePayload(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("%s - expected error but got nil", codecTestPrefix)
				}
				return
			}
			if err != nil {
				t.Fatalf("%s - unexpected error: %v", codecTestPrefix, err)
			}
			if got := string(data); got != tt.want {
				t.Errorf("%s - EncodePayload() = %q, want %q", codecTestPrefix, got, tt.want)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	var ev changeEnvelope
	if err := DecodePayload([]byte(`{"module":"help","keys":["help.enabled"],"removed":true}`), &ev); err != nil {
		t.Fatalf("%s - unexpected error: %v", codecTestPrefix, err)
	}
	if ev.Module != "help" || len(ev.Keys) != 1 || !ev.Removed {
		t.Errorf("%s - unexpected event %+v", codecTestPrefix, ev)
	}

	for name, data := range map[string]string{"empty": "", "invalid": "{module:"} {
		t.Run(name, func(t *testing.T) {
			var target changeEnvelope
			if err := DecodePayload([]byte(data), &target); err == nil {
				t.Errorf("%s - expected error for %q", codecTestPrefix, data)
			}
		})
	}
}

func TestRespond(t *testing.T) {
	ns, err := commsserver.NewServer(&commsserver.Options{Host: "127.0.0.1", Port: 14360, NoLog: true, NoSigs: true})
	if err != nil {
		t.Fatalf("%s - failed to create server: %v", codecTestPrefix, err)
	}
	go ns.Start()
	defer func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	}()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatalf("%s - server failed to start", codecTestPrefix)
	}

	nc, err := comms.Connect(ns.ClientURL(), comms.Timeout(5*time.Second))
	if err != nil {
		t.Fatalf("%s - failed to connect: %v", codecTestPrefix, err)
	}
	defer nc.Close()

	sub, err := nc.Subscribe("test.respond", func(msg *comms.Msg) {
		var in changeEnvelope
		if err := DecodePayload(msg.Data, &in); err != nil {
			t.Errorf("%s - decode request: %v", codecTestPrefix, err)
			return
		}
		in.Removed = true
		if err := Respond(msg, in); err != nil {
			t.Errorf("%s - Respond: %v", codecTestPrefix, err)
		}
	})
	if err != nil {
		t.Fatalf("%s - subscribe: %v", codecTestPrefix, err)
	}
	defer sub.Unsubscribe()

	data, _ := EncodePayload(changeEnvelope{Module: "lecture"})
	reply, err := nc.Request("test.respond", data, 5*time.Second)
	if err != nil {
		t.Fatalf("%s - request: %v", codecTestPrefix, err)
	}
	var out changeEnvelope
	if err := json.Unmarshal(reply.Data, &out); err != nil {
		t.Fatalf("%s - unmarshal reply: %v", codecTestPrefix, err)
	}
	if out.Module != "lecture" || !out.Removed {
		t.Errorf("%s - unexpected reply %+v", codecTestPrefix, out)
	}
}
