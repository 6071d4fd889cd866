package realtime

import "github.com/google/uuid"

type EventType string

const EventRecordPropagated EventType = "record.propagated"

// Event announces that an artifact was copied onto sibling records.
type Event struct {
	Event     EventType   `json:"event"`
	SourceID  uuid.UUID   `json:"sourceId"`
	RecordIDs []uuid.UUID `json:"recordIds"`
	Kind      string      `json:"kind"`
}

func Propagated(sourceID uuid.UUID, kind string, ids []uuid.UUID) Event {
	return Event{Event: EventRecordPropagated, SourceID: sourceID, RecordIDs: ids, Kind: kind}
}
