package realtime

import "encoding/json"

// Envelope — входящий кадр команды от клиента.
// ack_id возвращается в подтверждении, команды без ack_id не подтверждаются.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	AckID string          `json:"ack_id,omitempty"`
}

// OutEvent — исходящий кадр: либо широковещательное событие комнаты,
// либо подтверждение команды с ошибкой или результатом.
type OutEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
	AckID string `json:"ack_id,omitempty"`
	Error string `json:"error,omitempty"`
}

const EventAck = "ack"

// Ack строит подтверждение команды: ровно один из error/data заполнен.
func Ack(ackID string, err error, data any) OutEvent {
	out := OutEvent{Event: EventAck, AckID: ackID}
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Data = data
	return out
}
