package services

import (
	"context"
	"strconv"
	"sync"

	"github.com/custodia-labs/ewsctl/internal/core/domain"
	"github.com/custodia-labs/ewsctl/internal/core/ports/driven"
)

// fakeBackend answers SOAP calls for every session of a fakeFactory.
type fakeBackend struct {
	mu sync.Mutex

	getFolder  func(req domain.GetFolderRequest) (domain.Tree, error)
	findFolder func(req domain.FindFolderRequest) (domain.Tree, error)
	findItem   func(req domain.FindItemRequest) (domain.Tree, error)
	getItem    func(req domain.GetItemRequest) (domain.Tree, error)
	convertID  func(req domain.ConvertIDRequest) (domain.Tree, error)

	findItemReqs  []domain.FindItemRequest
	getItemReqs   []domain.GetItemRequest
	convertIDReqs []domain.ConvertIDRequest
}

// fakeFactory implements driven.SessionFactory for testing.
type fakeFactory struct {
	backend  *fakeBackend
	openErr  error
	sessions []*fakeSession
}

func newFakeFactory(b *fakeBackend) *fakeFactory {
	return &fakeFactory{backend: b}
}

func (f *fakeFactory) Open(_ context.Context, opts driven.SessionOptions) (driven.Session, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	s := &fakeSession{backend: f.backend, opts: opts}
	f.sessions = append(f.sessions, s)
	return s, nil
}

// shortSessions returns every session except the long-lived first one.
func (f *fakeFactory) shortSessions() []*fakeSession {
	if len(f.sessions) == 0 {
		return nil
	}
	return f.sessions[1:]
}

// fakeSession implements driven.Session for testing.
type fakeSession struct {
	backend *fakeBackend
	opts    driven.SessionOptions
	closed  bool
	calls   int
}

func (s *fakeSession) GetFolder(_ context.Context, req domain.GetFolderRequest) (domain.Tree, error) {
	s.calls++
	if s.backend.getFolder == nil {
		return nil, nil
	}
	return s.backend.getFolder(req)
}

func (s *fakeSession) FindFolder(_ context.Context, req domain.FindFolderRequest) (domain.Tree, error) {
	s.calls++
	if s.backend.findFolder == nil {
		return nil, nil
	}
	return s.backend.findFolder(req)
}

func (s *fakeSession) FindItem(_ context.Context, req domain.FindItemRequest) (domain.Tree, error) {
	s.calls++
	s.backend.mu.Lock()
	s.backend.findItemReqs = append(s.backend.findItemReqs, req)
	s.backend.mu.Unlock()
	if s.backend.findItem == nil {
		return nil, nil
	}
	return s.backend.findItem(req)
}

func (s *fakeSession) GetItem(_ context.Context, req domain.GetItemRequest) (domain.Tree, error) {
	s.calls++
	s.backend.mu.Lock()
	s.backend.getItemReqs = append(s.backend.getItemReqs, req)
	s.backend.mu.Unlock()
	if s.backend.getItem == nil {
		return nil, nil
	}
	return s.backend.getItem(req)
}

func (s *fakeSession) ConvertID(_ context.Context, req domain.ConvertIDRequest) (domain.Tree, error) {
	s.calls++
	s.backend.convertIDReqs = append(s.backend.convertIDReqs, req)
	if s.backend.convertID == nil {
		return nil, nil
	}
	return s.backend.convertID(req)
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

// Tree builders shaped like decoded EWS responses.

func envelope(response string, messages map[string]any) domain.Tree {
	return map[string]any{
		"Envelope": map[string]any{
			"Header": map[string]any{"ServerVersionInfo": map[string]any{"-MajorVersion": "14"}},
			"Body": map[string]any{
				response: map[string]any{"ResponseMessages": messages},
			},
		},
	}
}

// list mimics the decoder: one element is a node, several are a sequence.
func list(nodes []any) any {
	switch len(nodes) {
	case 0:
		return ""
	case 1:
		return nodes[0]
	default:
		return nodes
	}
}

type folderFixture struct {
	parent   string
	name     string
	total    int
	children []string
}

func getFolderResponse(id string, f folderFixture) domain.Tree {
	return envelope("GetFolderResponse", map[string]any{
		"GetFolderResponseMessage": map[string]any{
			"-ResponseClass": "Success",
			"ResponseCode":   "NoError",
			"Folders": map[string]any{
				"Folder": map[string]any{
					"FolderId":         map[string]any{"-Id": id, "-ChangeKey": "AQAAAA=="},
					"ParentFolderId":   map[string]any{"-Id": f.parent, "-ChangeKey": "AQAAAA=="},
					"FolderClass":      "IPF.Note",
					"DisplayName":      f.name,
					"TotalCount":       strconv.Itoa(f.total),
					"ChildFolderCount": strconv.Itoa(len(f.children)),
					"UnreadCount":      "0",
				},
			},
		},
	})
}

func folderNotFoundResponse() domain.Tree {
	return envelope("GetFolderResponse", map[string]any{
		"GetFolderResponseMessage": map[string]any{
			"-ResponseClass": "Error",
			"MessageText":    "The specified folder could not be found in the store.",
			"ResponseCode":   "ErrorFolderNotFound",
			"Folders":        "",
		},
	})
}

func findFolderResponse(childIDs []string) domain.Tree {
	folders := make([]any, 0, len(childIDs))
	for _, id := range childIDs {
		folders = append(folders, map[string]any{
			"FolderId":    map[string]any{"-Id": id, "-ChangeKey": "AQAAAA=="},
			"DisplayName": "child " + id,
		})
	}
	var container any = ""
	if len(folders) > 0 {
		container = map[string]any{"Folder": list(folders)}
	}
	return envelope("FindFolderResponse", map[string]any{
		"FindFolderResponseMessage": map[string]any{
			"-ResponseClass": "Success",
			"ResponseCode":   "NoError",
			"RootFolder": map[string]any{
				"-TotalItemsInView":        strconv.Itoa(len(childIDs)),
				"-IncludesLastItemInRange": "true",
				"Folders":                  container,
			},
		},
	})
}

func messageNode(id string) map[string]any {
	return map[string]any{
		"ItemId":           map[string]any{"-Id": id, "-ChangeKey": "CQAAAA=="},
		"Subject":          "subject " + id,
		"DateTimeReceived": "2024-01-15T10:30:00Z",
		"From": map[string]any{
			"Mailbox": map[string]any{"Name": "Jane", "EmailAddress": "jane@example.com"},
		},
	}
}

func findItemResponse(ids []string) domain.Tree {
	messages := make([]any, 0, len(ids))
	for _, id := range ids {
		messages = append(messages, messageNode(id))
	}
	return envelope("FindItemResponse", map[string]any{
		"FindItemResponseMessage": map[string]any{
			"-ResponseClass": "Success",
			"ResponseCode":   "NoError",
			"RootFolder": map[string]any{
				"-TotalItemsInView": strconv.Itoa(len(ids)),
				"Items":             map[string]any{"Message": list(messages)},
			},
		},
	})
}

func getItemEntry(id string) map[string]any {
	return map[string]any{
		"-ResponseClass": "Success",
		"ResponseCode":   "NoError",
		"Items":          map[string]any{"Message": messageNode(id)},
	}
}

func getItemErrorEntry(code string) map[string]any {
	return map[string]any{
		"-ResponseClass": "Error",
		"MessageText":    "The specified object was not found in the store.",
		"ResponseCode":   code,
		"Items":          "",
	}
}

func getItemResponse(entries []any) domain.Tree {
	return envelope("GetItemResponse", map[string]any{
		"GetItemResponseMessage": list(entries),
	})
}

func echoGetItem(req domain.GetItemRequest) (domain.Tree, error) {
	entries := make([]any, 0, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		entries = append(entries, getItemEntry(id))
	}
	return getItemResponse(entries), nil
}

func itemIDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = prefix + strconv.Itoa(i)
	}
	return ids
}
