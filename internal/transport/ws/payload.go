package ws

import (
	"encoding/json"
	"errors"
	"time"

	chatsvc "github.com/ivankudzin/matchchat/internal/services/chat"
)

const frameTypeMessage = "message"

// inboundFrame is what a client sends over the socket. User ids travel as
// strings on the wire.
type inboundFrame struct {
	Type    string `json:"type"`
	To      int64  `json:"to,string"`
	Content string `json:"content"`
}

type ackFrame struct {
	Type string    `json:"type"`
	Date time.Time `json:"date"`
}

type errorFrame struct {
	Error string `json:"error"`
}

var errUnparseableFrame = errors.New("unparseable frame")

func parseInbound(data []byte) (inboundFrame, error) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return inboundFrame{}, errUnparseableFrame
	}
	if frame.Type != frameTypeMessage {
		return inboundFrame{}, errUnparseableFrame
	}
	return frame, nil
}

func newAckFrame(sentAt time.Time) []byte {
	payload, _ := json.Marshal(ackFrame{Type: "ack", Date: sentAt.UTC()})
	return payload
}

func newErrorFrame(code string) []byte {
	payload, _ := json.Marshal(errorFrame{Error: code})
	return payload
}

// errorCode maps router errors onto the wire taxonomy. Anything the router
// did not classify reads as a persistence-layer failure: the sender must not
// assume the message was stored.
func errorCode(err error) string {
	switch {
	case errors.Is(err, errUnparseableFrame), errors.Is(err, chatsvc.ErrInvalidFormat):
		return "InvalidFormat"
	case errors.Is(err, chatsvc.ErrNotMatched):
		return "NotMatched"
	default:
		return "PersistenceFailed"
	}
}
