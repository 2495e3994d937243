package models

// Participant represents a registered chat identity.
type Participant struct {
	Name       string `bson:"name" json:"name"`
	LastStatus int64  `bson:"lastStatus" json:"lastStatus"` // Unix ms of last heartbeat
}
