package models

// InsertResult is the acknowledgement returned for every created document.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

func Inserted(id string) InsertResult {
	return InsertResult{Acknowledged: true, InsertedID: id}
}
