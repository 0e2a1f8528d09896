package ews

import (
	"fmt"
	"strings"

	"github.com/clbanning/mxj/v2"

	"github.com/custodia-labs/ewsctl/internal/connectors/microsoft"
	"github.com/custodia-labs/ewsctl/internal/core/domain"
)

// decodeEnvelope turns a SOAP response body into a response tree. Element
// keys are local names, attributes are prefixed with "-", and text that sits
// next to attributes is stored under "#text". All leaves are strings.
// A SOAP fault is returned as a *microsoft.Fault.
func decodeEnvelope(data []byte) (domain.Tree, error) {
	m, err := mxj.NewMapXml(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", microsoft.ErrMalformedResponse, err)
	}
	if v, _ := m.ValueForPath("Envelope.Body"); v == nil {
		return nil, fmt.Errorf("%w: no soap body", microsoft.ErrMalformedResponse)
	}
	if fault := faultOf(m); fault != nil {
		return nil, fault
	}
	return map[string]any(m), nil
}

func faultOf(m mxj.Map) *microsoft.Fault {
	v, _ := m.ValueForPath("Envelope.Body.Fault")
	if v == nil {
		return nil
	}
	return &microsoft.Fault{
		Code:         textAt(m, "Envelope.Body.Fault.faultcode"),
		Message:      textAt(m, "Envelope.Body.Fault.faultstring"),
		ResponseCode: textAt(m, "Envelope.Body.Fault.detail.ResponseCode"),
	}
}

// textAt returns the character data at path, or "" when absent.
func textAt(m mxj.Map, path string) string {
	v, err := m.ValueForPath(path)
	if err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		if s, ok := t["#text"].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
