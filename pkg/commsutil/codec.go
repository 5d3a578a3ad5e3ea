package commsutil

import (
	"encoding/json"
	"fmt"
	"log/slog"

	comms "github.com/nats-io/nats.go"
)

const codecLogPrefix = "commsutil:codec"

// EncodePayload serializes a value to JSON bytes.
func EncodePayload(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// DecodePayload deserializes JSON bytes into the given target.
func DecodePayload(data []byte, v interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("%s - empty payload", codecLogPrefix)
	}
	return json.Unmarshal(data, v)
}

// Respond encodes v and sends it as the reply to msg. Encoding or transport
// failures are logged and returned.
func Respond(msg *comms.Msg, v interface{}) error {
	data, err := EncodePayload(v)
	if err != nil {
		slog.Error(fmt.Sprintf("%s - failed to encode reply on %s: %v", codecLogPrefix, msg.Subject, err))
		return err
	}
	if err := msg.Respond(data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to respond on %s: %v", codecLogPrefix, msg.Subject, err))
		return err
	}
	return nil
}
