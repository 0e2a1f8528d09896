package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/ewsctl/internal/core/domain"
	"github.com/custodia-labs/ewsctl/internal/logger"
)

// Navigator walks decoded EWS response trees along literal paths.
type Navigator struct {
	log *logger.Logger
}

// NewNavigator creates a Navigator that reports lookup failures to log.
func NewNavigator(log *logger.Logger) *Navigator {
	if log == nil {
		log = logger.Nop()
	}
	return &Navigator{log: log}
}

// Navigate follows path from tree and returns the node reached once the last
// segment is consumed. A missing key, an out-of-range index or an empty node
// yields domain.ErrAbsent. A segment that does not fit its node yields
// domain.ErrNodeType. An index of 0 applied to a single (non-sequence) node
// addresses the node itself, since single XML elements decode without a list.
func (n *Navigator) Navigate(path domain.Path, tree domain.Tree) (domain.Tree, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", domain.ErrLookup)
	}

	node := tree
	for i, seg := range path {
		if isEmpty(node) {
			n.log.Debug("ews: tree ran out at segment %d of %v", i, path)
			return nil, fmt.Errorf("%w: at segment %d (%v)", domain.ErrAbsent, i, seg)
		}

		next, err := step(node, seg)
		if err != nil {
			n.log.Debug("ews: navigation failed at segment %d of %v: %v", i, path, err)
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		node = next
	}

	if isEmpty(node) {
		return nil, fmt.Errorf("%w: at end of path", domain.ErrAbsent)
	}
	return node, nil
}

// NavigateString navigates and requires a string leaf.
func (n *Navigator) NavigateString(path domain.Path, tree domain.Tree) (string, error) {
	node, err := n.Navigate(path, tree)
	if err != nil {
		return "", err
	}
	s, ok := node.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string leaf, got %T", domain.ErrNodeType, node)
	}
	return s, nil
}

// NavigateInt navigates and parses a decimal leaf.
func (n *Navigator) NavigateInt(path domain.Path, tree domain.Tree) (int, error) {
	node, err := n.Navigate(path, tree)
	if err != nil {
		return 0, err
	}
	switch v := node.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a count", domain.ErrNodeType, v)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: expected numeric leaf, got %T", domain.ErrNodeType, node)
	}
}

// AsList returns node as a sequence. A single node becomes a one-element list
// and an empty node an empty list.
func AsList(node domain.Tree) []domain.Tree {
	if isEmpty(node) {
		return nil
	}
	if list, ok := node.([]any); ok {
		return list
	}
	return []domain.Tree{node}
}

func step(node domain.Tree, seg any) (domain.Tree, error) {
	switch key := seg.(type) {
	case string:
		switch v := node.(type) {
		case map[string]any:
			child, ok := v[key]
			if !ok {
				return nil, fmt.Errorf("%w: key %q", domain.ErrAbsent, key)
			}
			return child, nil
		case []any:
			// A repeated element where a single one was expected.
			if len(v) == 1 {
				return step(v[0], key)
			}
			return nil, fmt.Errorf("%w: key %q on sequence of %d", domain.ErrNodeType, key, len(v))
		default:
			return nil, fmt.Errorf("%w: key %q on %T", domain.ErrNodeType, key, node)
		}
	case int:
		switch v := node.(type) {
		case []any:
			if key < 0 || key >= len(v) {
				return nil, fmt.Errorf("%w: index %d of %d", domain.ErrAbsent, key, len(v))
			}
			return v[key], nil
		case map[string]any:
			if key == 0 {
				return v, nil
			}
			return nil, fmt.Errorf("%w: index %d of single element", domain.ErrAbsent, key)
		default:
			return nil, fmt.Errorf("%w: index %d on %T", domain.ErrNodeType, key, node)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported path segment %T", domain.ErrNodeType, seg)
	}
}

func isEmpty(node domain.Tree) bool {
	switch v := node.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}
