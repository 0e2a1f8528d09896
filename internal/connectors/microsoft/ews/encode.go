package ews

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/custodia-labs/ewsctl/internal/core/domain"
)

// folderProperties are requested on top of the Default folder shape.
// ParentFolderId is not part of Default.
var folderProperties = []string{"folder:ParentFolderId"}

// newEnvelope wraps content with the version and impersonation headers.
func newEnvelope(version, impersonate string, content any) *envelope {
	env := &envelope{
		SOAP: nsSOAP,
		XSI:  nsXSI,
		M:    nsMessages,
		T:    nsTypes,
		Header: header{
			RequestServerVersion: requestServerVersion{Version: version},
		},
		Body: body{Content: content},
	}
	if impersonate != "" {
		env.Header.ExchangeImpersonation = &exchangeImpersonation{
			ConnectingSID: connectingSID{PrimarySmtpAddress: impersonate},
		}
	}
	return env
}

// marshalEnvelope renders env with an XML declaration.
func marshalEnvelope(env *envelope) ([]byte, error) {
	data, err := xml.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal soap request: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}

func folderIDsFor(folderType, id string) (folderIDs, error) {
	if id == "" {
		return folderIDs{}, fmt.Errorf("%w: folder id is required", domain.ErrInvalidInput)
	}
	switch folderType {
	case domain.FolderTypeID:
		return folderIDs{FolderID: &folderID{ID: id}}, nil
	case domain.FolderTypeDistinguished:
		return folderIDs{DistinguishedFolderID: &distinguishedFolderID{ID: id}}, nil
	default:
		return folderIDs{}, fmt.Errorf("%w: unknown folder type %q", domain.ErrInvalidInput, folderType)
	}
}

func shape(name, fallback string, extra []string) baseShape {
	if name == "" {
		name = fallback
	}
	s := baseShape{BaseShape: name}
	if len(extra) > 0 {
		props := &additionalProperties{}
		for _, uri := range extra {
			props.FieldURI = append(props.FieldURI, fieldURI{FieldURI: uri})
		}
		s.AdditionalProperties = props
	}
	return s
}

func encodeGetFolder(req domain.GetFolderRequest) (*getFolder, error) {
	ids, err := folderIDsFor(req.FolderType, req.FolderID)
	if err != nil {
		return nil, err
	}
	return &getFolder{
		FolderShape: shape(req.FolderShape, "Default", folderProperties),
		FolderIDs:   ids,
	}, nil
}

func encodeFindFolder(req domain.FindFolderRequest) (*findFolder, error) {
	ids, err := folderIDsFor(req.FolderType, req.FolderID)
	if err != nil {
		return nil, err
	}
	traversal := req.Traversal
	if traversal == "" {
		traversal = "Shallow"
	}
	return &findFolder{
		Traversal:       traversal,
		FolderShape:     shape(req.FolderShape, "Default", nil),
		ParentFolderIDs: ids,
	}, nil
}

func encodeFindItem(req domain.FindItemRequest) (*findItem, error) {
	ids, err := folderIDsFor(req.FolderType, req.FolderID)
	if err != nil {
		return nil, err
	}
	if req.MaxEntries <= 0 {
		return nil, fmt.Errorf("%w: page size must be positive", domain.ErrInvalidInput)
	}
	if req.Offset < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", domain.ErrInvalidInput, req.Offset)
	}

	traversal := req.Traversal
	if traversal == "" {
		traversal = "Shallow"
	}
	basePoint := req.BasePoint
	if basePoint == "" {
		basePoint = "Beginning"
	}

	fi := &findItem{
		Traversal: traversal,
		ItemShape: shape(req.ItemShape, "AllProperties", nil),
		IndexedPageItemView: indexedPageItemView{
			MaxEntriesReturned: req.MaxEntries,
			Offset:             req.Offset,
			BasePoint:          basePoint,
		},
		ParentFolderIDs: ids,
		QueryString:     req.QueryString,
	}
	if r := strings.TrimSpace(req.Restriction); r != "" {
		fi.Restriction = &restriction{Inner: r}
	}
	if len(req.SortOrder) > 0 {
		so := &sortOrder{}
		for _, fo := range req.SortOrder {
			order := fo.Order
			if order == "" {
				order = "Ascending"
			}
			so.FieldOrder = append(so.FieldOrder, fieldOrder{
				Order:    order,
				FieldURI: fieldURI{FieldURI: fo.FieldURI},
			})
		}
		fi.SortOrder = so
	}
	return fi, nil
}

func encodeGetItem(req domain.GetItemRequest) (*getItem, error) {
	if len(req.ItemIDs) == 0 {
		return nil, fmt.Errorf("%w: no item ids", domain.ErrInvalidInput)
	}
	ids := make([]itemID, 0, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		ids = append(ids, itemID{ID: id})
	}
	return &getItem{
		ItemShape: shape(req.ItemShape, "AllProperties", nil),
		ItemIDs:   itemIDs{ItemID: ids},
	}, nil
}

func encodeConvertID(req domain.ConvertIDRequest) (*convertID, error) {
	if req.ID == "" || req.Mailbox == "" {
		return nil, fmt.Errorf("%w: id and mailbox are required", domain.ErrInvalidInput)
	}
	if req.SourceFormat == "" || req.DestinationFormat == "" {
		return nil, fmt.Errorf("%w: source and destination formats are required", domain.ErrInvalidInput)
	}
	return &convertID{
		DestinationFormat: req.DestinationFormat,
		SourceIDs: sourceIDs{AlternateID: []alternateID{{
			Format:  req.SourceFormat,
			ID:      req.ID,
			Mailbox: req.Mailbox,
		}}},
	}, nil
}
