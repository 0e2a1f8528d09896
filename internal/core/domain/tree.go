package domain

// Tree is a decoded EWS response node: a map[string]any, a []any, a string,
// or nil. Element names are local names, attributes are keys prefixed with "-".
type Tree = any

// Path is an ordered list of map keys (string) and sequence indices (int).
type Path []any

// ServerVersion is the EWS schema version requested in every SOAP header.
const ServerVersion = "Exchange2010_SP2"
