package models

// Message types. Status messages are system-generated join/leave notices
// and are never owned by a human sender.
const (
	TypeMessage = "message"
	TypePrivate = "private_message"
	TypeStatus  = "status"
)

// Message represents a chat message.
type Message struct {
	ID   string `bson:"_id,omitempty" json:"id"` // store-assigned, immutable
	From string `bson:"from" json:"from"`
	To   string `bson:"to" json:"to"`
	Text string `bson:"text" json:"text"`
	Type string `bson:"type" json:"type"`
	Time string `bson:"time" json:"time"` // HH:MM:SS, display only; insertion order is authoritative
}
