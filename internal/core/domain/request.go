package domain

// FieldOrder is one SortOrder entry of a FindItem request.
type FieldOrder struct {
	// FieldURI is an EWS property path such as "item:DateTimeReceived".
	FieldURI string
	// Order is "Ascending" or "Descending".
	Order string
}

// GetFolderRequest asks for one folder's metadata.
type GetFolderRequest struct {
	FolderType  string
	FolderID    string
	FolderShape string
}

// FindFolderRequest lists the children of one folder.
type FindFolderRequest struct {
	FolderType  string
	FolderID    string
	FolderShape string
	Traversal   string
}

// FindItemRequest lists one page of items in a folder.
type FindItemRequest struct {
	FolderType  string
	FolderID    string
	ItemShape   string
	Traversal   string
	MaxEntries  int
	Offset      int
	BasePoint   string
	Restriction string
	SortOrder   []FieldOrder
	QueryString string
}

// GetItemRequest fetches full items by id.
type GetItemRequest struct {
	ItemShape string
	ItemIDs   []string
}

// ConvertIDRequest converts one id between formats.
type ConvertIDRequest struct {
	ID                string
	Mailbox           string
	SourceFormat      string
	DestinationFormat string
}

// FindItemsParams are the caller-facing options of a FindItems call.
// Zero values select the defaults (AllProperties, Shallow).
type FindItemsParams struct {
	FolderType string
	FolderID   string
	Offset     int
	ItemShape  string
	Traversal  string
	// Restriction is a raw EWS Restriction XML fragment.
	Restriction string
	SortOrder   []FieldOrder
	QueryString string
}

// ConvertIDParams are the caller-facing options of a ConvertID call.
type ConvertIDParams struct {
	ID                string
	SourceFormat      string
	DestinationFormat string
	Mailbox           string
}
