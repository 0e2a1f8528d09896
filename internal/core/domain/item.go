package domain

// ItemColumns are the column names of an item table.
var ItemColumns = []string{"date_time_received", "full_item", "ews_error"}

// ItemRecord is one row of an item listing.
// FullItem and EWSError are filled by hydration.
type ItemRecord struct {
	ItemID           string `json:"item_id"`
	DateTimeReceived string `json:"date_time_received"`
	FullItem         Tree   `json:"full_item"`
	EWSError         string `json:"ews_error"`
}

// Hydrated reports whether a full item body was stored.
func (r ItemRecord) Hydrated() bool {
	return r.FullItem != nil
}

// ItemTable holds item records keyed by item id in insertion order.
type ItemTable struct {
	order []string
	rows  map[string]*ItemRecord
}

// NewItemTable creates an empty item table.
func NewItemTable() *ItemTable {
	return &ItemTable{rows: make(map[string]*ItemRecord)}
}

// Add inserts a listing row. An existing row keeps its hydration state
// and has its receipt timestamp replaced.
func (t *ItemTable) Add(id, dateTimeReceived string) {
	if r, ok := t.rows[id]; ok {
		r.DateTimeReceived = dateTimeReceived
		return
	}
	t.order = append(t.order, id)
	t.rows[id] = &ItemRecord{ItemID: id, DateTimeReceived: dateTimeReceived}
}

// SetFullItem stores the full body for id. Unknown ids are ignored.
func (t *ItemTable) SetFullItem(id string, item Tree) {
	if r, ok := t.rows[id]; ok {
		r.FullItem = item
	}
}

// SetError stores an error marker for id. Unknown ids are ignored.
func (t *ItemTable) SetError(id, msg string) {
	if r, ok := t.rows[id]; ok {
		r.EWSError = msg
	}
}

// Get returns the row for id.
func (t *ItemTable) Get(id string) (ItemRecord, bool) {
	r, ok := t.rows[id]
	if !ok {
		return ItemRecord{}, false
	}
	return *r, true
}

// Len returns the number of rows.
func (t *ItemTable) Len() int {
	return len(t.order)
}

// IDs returns the item ids in insertion order.
func (t *ItemTable) IDs() []string {
	ids := make([]string, len(t.order))
	copy(ids, t.order)
	return ids
}

// Rows returns copies of all rows in insertion order.
func (t *ItemTable) Rows() []ItemRecord {
	rows := make([]ItemRecord, 0, len(t.order))
	for _, id := range t.order {
		rows = append(rows, *t.rows[id])
	}
	return rows
}

// Merge appends the rows of other that are not yet present.
func (t *ItemTable) Merge(other *ItemTable) {
	if other == nil {
		return
	}
	for _, id := range other.order {
		if _, ok := t.rows[id]; ok {
			continue
		}
		r := *other.rows[id]
		t.order = append(t.order, id)
		t.rows[id] = &r
	}
}
