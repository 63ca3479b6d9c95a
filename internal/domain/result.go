package domain

// WriteResult mirrors the acknowledgement object MongoDB drivers hand back,
// which is what the API has always returned for writes.
type WriteResult struct {
	Acknowledged  bool   `json:"acknowledged"`
	InsertedID    any    `json:"insertedId,omitempty"`
	MatchedCount  *int64 `json:"matchedCount,omitempty"`
	ModifiedCount *int64 `json:"modifiedCount,omitempty"`
	UpsertedCount *int64 `json:"upsertedCount,omitempty"`
	UpsertedID    any    `json:"upsertedId,omitempty"`
	DeletedCount  *int64 `json:"deletedCount,omitempty"`
}

func Inserted(id any) WriteResult { return WriteResult{Acknowledged: true, InsertedID: id} }

func Updated(matched, modified, upserted int64, upsertedID any) WriteResult {
	return WriteResult{
		Acknowledged:  true,
		MatchedCount:  &matched,
		ModifiedCount: &modified,
		UpsertedCount: &upserted,
		UpsertedID:    upsertedID,
	}
}

func Deleted(n int64) WriteResult { return WriteResult{Acknowledged: true, DeletedCount: &n} }

// Matched reports whether an update touched a document.
func (r WriteResult) Matched() bool { return r.MatchedCount != nil && *r.MatchedCount > 0 }

// Modified reports whether an update changed a document.
func (r WriteResult) Modified() bool { return r.ModifiedCount != nil && *r.ModifiedCount > 0 }

// AdminStats is the dashboard summary served to admins.
type AdminStats struct {
	UserCount    int64 `json:"userCount"`
	ProductCount int64 `json:"productCount"`
	ReviewCount  int64 `json:"reviewCount"`
	ReportCount  int64 `json:"reportCount"`
}
