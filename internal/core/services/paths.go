package services

import (
	"fmt"

	"github.com/custodia-labs/ewsctl/internal/core/domain"
)

// Symbolic names of the paths known to the registry.
const (
	PathItemCount        = "ITEM_COUNT"
	PathChildFolderCount = "CHILD_FOLDER_COUNT"
	PathChildFolders     = "CHILD_FOLDERS"
	PathFromEmailAddress = "FROM_EMAIL_ADDRESS"
	PathFolderID         = "FOLDER_ID"
	PathParentFolderID   = "PARENT_FOLDER_ID"
	PathDisplayName      = "DISPLAY_NAME"
	PathSubFolderID      = "SUB_FOLDER_ID"
	PathFindItems        = "FIND_ITEMS"
	PathItemID           = "ITEM_ID"
	PathDateTimeReceived = "DATE_TIME_RECEIVED"
	PathGetItemMessages  = "GET_ITEM_MESSAGES"
	PathFullItem         = "FULL_ITEM"
	PathFullItemID       = "FULL_ITEM_ID"
	PathResponseClass    = "RESPONSE_CLASS"
	PathResponseCode     = "RESPONSE_CODE"
	PathConvertedID      = "CONVERTED_ID"
)

// Response prefixes shared by several paths.
var (
	getFolderMessage = domain.Path{
		"Envelope", "Body", "GetFolderResponse", "ResponseMessages", "GetFolderResponseMessage", 0,
	}
	getFolderFolder = join(getFolderMessage, domain.Path{"Folders", "Folder", 0})
)

// pathRegistry maps symbolic names to literal response paths. The shapes are
// those of Exchange2010_SP2 responses. Paths relative to a list entry (a
// subfolder, a listed item, a GetItem response message) start at that entry.
var pathRegistry = map[string]domain.Path{
	PathItemCount:        join(getFolderFolder, domain.Path{"TotalCount"}),
	PathChildFolderCount: join(getFolderFolder, domain.Path{"ChildFolderCount"}),
	PathFolderID:         join(getFolderFolder, domain.Path{"FolderId", "-Id"}),
	PathParentFolderID:   join(getFolderFolder, domain.Path{"ParentFolderId", "-Id"}),
	PathDisplayName:      join(getFolderFolder, domain.Path{"DisplayName"}),
	PathChildFolders: {
		"Envelope", "Body", "FindFolderResponse", "ResponseMessages", "FindFolderResponseMessage", 0,
		"RootFolder", "Folders", "Folder",
	},
	PathSubFolderID: {"FolderId", "-Id"},
	PathFindItems: {
		"Envelope", "Body", "FindItemResponse", "ResponseMessages", "FindItemResponseMessage", 0,
		"RootFolder", "Items", "Message",
	},
	PathItemID:           {"ItemId", "-Id"},
	PathDateTimeReceived: {"DateTimeReceived"},
	PathFromEmailAddress: {"From", "Mailbox", "EmailAddress"},
	PathGetItemMessages: {
		"Envelope", "Body", "GetItemResponse", "ResponseMessages", "GetItemResponseMessage",
	},
	PathFullItem:      {"Items", "Message", 0},
	PathFullItemID:    {"Items", "Message", 0, "ItemId", "-Id"},
	PathResponseClass: {"-ResponseClass"},
	PathResponseCode:  {"ResponseCode"},
	PathConvertedID: {
		"Envelope", "Body", "ConvertIdResponse", "ResponseMessages", "ConvertIdResponseMessage", 0,
		"AlternateId", "-Id",
	},
}

// PathFor returns a copy of the path registered under name.
func PathFor(name string) (domain.Path, error) {
	p, ok := pathRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown path %q", domain.ErrLookup, name)
	}
	return join(p), nil
}

// mustPath is used for names defined in this file.
func mustPath(name string) domain.Path {
	p, err := PathFor(name)
	if err != nil {
		panic(err)
	}
	return p
}

func join(parts ...domain.Path) domain.Path {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make(domain.Path, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
