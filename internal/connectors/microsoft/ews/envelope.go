package ews

// SOAP envelope structures for EWS requests. Element names carry their
// namespace prefix literally; the prefixes are declared on the envelope.

// XML namespaces declared on every request.
const (
	nsSOAP     = "http://schemas.xmlsoap.org/soap/envelope/"
	nsXSI      = "http://www.w3.org/2001/XMLSchema-instance"
	nsMessages = "http://schemas.microsoft.com/exchange/services/2006/messages"
	nsTypes    = "http://schemas.microsoft.com/exchange/services/2006/types"
)

type envelope struct {
	XMLName struct{} `xml:"soap:Envelope"`
	SOAP    string   `xml:"xmlns:soap,attr"`
	XSI     string   `xml:"xmlns:xsi,attr"`
	M       string   `xml:"xmlns:m,attr"`
	T       string   `xml:"xmlns:t,attr"`
	Header  header   `xml:"soap:Header"`
	Body    body     `xml:"soap:Body"`
}

type header struct {
	RequestServerVersion  requestServerVersion   `xml:"t:RequestServerVersion"`
	ExchangeImpersonation *exchangeImpersonation `xml:"t:ExchangeImpersonation,omitempty"`
}

type requestServerVersion struct {
	Version string `xml:"Version,attr"`
}

type exchangeImpersonation struct {
	ConnectingSID connectingSID `xml:"t:ConnectingSID"`
}

type connectingSID struct {
	PrimarySmtpAddress string `xml:"t:PrimarySmtpAddress"`
}

type body struct {
	Content any
}

// Shared request elements.

type baseShape struct {
	BaseShape            string                `xml:"t:BaseShape"`
	AdditionalProperties *additionalProperties `xml:"t:AdditionalProperties,omitempty"`
}

type additionalProperties struct {
	FieldURI []fieldURI `xml:"t:FieldURI"`
}

type fieldURI struct {
	FieldURI string `xml:"FieldURI,attr"`
}

// folderIDs holds exactly one of its fields.
type folderIDs struct {
	FolderID              *folderID              `xml:"t:FolderId,omitempty"`
	DistinguishedFolderID *distinguishedFolderID `xml:"t:DistinguishedFolderId,omitempty"`
}

type folderID struct {
	ID string `xml:"Id,attr"`
}

type distinguishedFolderID struct {
	ID      string   `xml:"Id,attr"`
	Mailbox *mailbox `xml:"t:Mailbox,omitempty"`
}

type mailbox struct {
	EmailAddress string `xml:"t:EmailAddress"`
}

// GetFolder.

type getFolder struct {
	XMLName     struct{}  `xml:"m:GetFolder"`
	FolderShape baseShape `xml:"m:FolderShape"`
	FolderIDs   folderIDs `xml:"m:FolderIds"`
}

// FindFolder.

type findFolder struct {
	XMLName         struct{}  `xml:"m:FindFolder"`
	Traversal       string    `xml:"Traversal,attr"`
	FolderShape     baseShape `xml:"m:FolderShape"`
	ParentFolderIDs folderIDs `xml:"m:ParentFolderIds"`
}

// FindItem. Child order follows the messages schema.

type findItem struct {
	XMLName             struct{}            `xml:"m:FindItem"`
	Traversal           string              `xml:"Traversal,attr"`
	ItemShape           baseShape           `xml:"m:ItemShape"`
	IndexedPageItemView indexedPageItemView `xml:"m:IndexedPageItemView"`
	Restriction         *restriction        `xml:"m:Restriction,omitempty"`
	SortOrder           *sortOrder          `xml:"m:SortOrder,omitempty"`
	ParentFolderIDs     folderIDs           `xml:"m:ParentFolderIds"`
	QueryString         string              `xml:"m:QueryString,omitempty"`
}

type indexedPageItemView struct {
	MaxEntriesReturned int    `xml:"MaxEntriesReturned,attr"`
	Offset             int    `xml:"Offset,attr"`
	BasePoint          string `xml:"BasePoint,attr"`
}

// restriction carries caller-supplied search expression XML verbatim.
type restriction struct {
	Inner string `xml:",innerxml"`
}

type sortOrder struct {
	FieldOrder []fieldOrder `xml:"t:FieldOrder"`
}

type fieldOrder struct {
	Order    string   `xml:"Order,attr"`
	FieldURI fieldURI `xml:"t:FieldURI"`
}

// GetItem.

type getItem struct {
	XMLName   struct{}  `xml:"m:GetItem"`
	ItemShape baseShape `xml:"m:ItemShape"`
	ItemIDs   itemIDs   `xml:"m:ItemIds"`
}

type itemIDs struct {
	ItemID []itemID `xml:"t:ItemId"`
}

type itemID struct {
	ID string `xml:"Id,attr"`
}

// ConvertId.

type convertID struct {
	XMLName           struct{}  `xml:"m:ConvertId"`
	DestinationFormat string    `xml:"DestinationFormat,attr"`
	SourceIDs         sourceIDs `xml:"m:SourceIds"`
}

type sourceIDs struct {
	AlternateID []alternateID `xml:"t:AlternateId"`
}

type alternateID struct {
	Format  string `xml:"Format,attr"`
	ID      string `xml:"Id,attr"`
	Mailbox string `xml:"Mailbox,attr"`
}
