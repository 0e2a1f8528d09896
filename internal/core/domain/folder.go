package domain

// FolderTypeID and FolderTypeDistinguished are the two EWS folder id kinds.
const (
	FolderTypeID            = "FolderId"
	FolderTypeDistinguished = "DistinguishedFolderId"
)

// FolderColumns are the column names of a folder table.
var FolderColumns = []string{"parent_folder_id", "display_name", "item_count", "sub_folder_count"}

// FolderRecord is one row of a folder walk.
type FolderRecord struct {
	FolderID       string `json:"folder_id"`
	ParentFolderID string `json:"parent_folder_id"`
	DisplayName    string `json:"display_name"`
	ItemCount      int    `json:"item_count"`
	SubFolderCount int    `json:"sub_folder_count"`
}

// FolderTable holds folder records keyed by folder id in insertion order.
// Setting an existing id overwrites the row in place.
type FolderTable struct {
	order []string
	rows  map[string]*FolderRecord
}

// NewFolderTable creates an empty folder table.
func NewFolderTable() *FolderTable {
	return &FolderTable{rows: make(map[string]*FolderRecord)}
}

// Set inserts or replaces the row for rec.FolderID.
func (t *FolderTable) Set(rec FolderRecord) {
	if _, ok := t.rows[rec.FolderID]; !ok {
		t.order = append(t.order, rec.FolderID)
	}
	r := rec
	t.rows[rec.FolderID] = &r
}

// Get returns the row for id.
func (t *FolderTable) Get(id string) (FolderRecord, bool) {
	r, ok := t.rows[id]
	if !ok {
		return FolderRecord{}, false
	}
	return *r, true
}

// Len returns the number of rows.
func (t *FolderTable) Len() int {
	return len(t.order)
}

// IDs returns the folder ids in insertion order.
func (t *FolderTable) IDs() []string {
	ids := make([]string, len(t.order))
	copy(ids, t.order)
	return ids
}

// Rows returns copies of all rows in insertion order.
func (t *FolderTable) Rows() []FolderRecord {
	rows := make([]FolderRecord, 0, len(t.order))
	for _, id := range t.order {
		rows = append(rows, *t.rows[id])
	}
	return rows
}
