package ledger

import (
	"strings"

	"ledger/internal/core"
)

// CategorySet is an insertion-ordered set of unique labels.
type CategorySet struct {
	labels []string
}

// NewCategorySet returns a set holding labels, dropping blanks and duplicates
// while preserving the first occurrence order.
func NewCategorySet(labels []string) *CategorySet {
	s := &CategorySet{}
	s.Load(labels)
	return s
}

// Add appends label. Matching is exact and case-sensitive after trimming.
func (s *CategorySet) Add(label string) (string, error) {
	label, err := core.NormalizeLabel(label)
	if err != nil {
		return "", err
	}
	if s.Contains(label) {
		return "", &core.DuplicateError{Label: label}
	}
	s.labels = append(s.labels, label)
	return label, nil
}

// Remove deletes label if present and reports whether it did. The label is
// trimmed first, matching how Add stores it.
func (s *CategorySet) Remove(label string) bool {
	label = strings.TrimSpace(label)
	for i, l := range s.labels {
		if l == label {
			s.labels = append(s.labels[:i], s.labels[i+1:]...)
			return true
		}
	}
	return false
}

func (s *CategorySet) Contains(label string) bool {
	for _, l := range s.labels {
		if l == label {
			return true
		}
	}
	return false
}

// List returns the labels in insertion order.
func (s *CategorySet) List() []string {
	return append([]string(nil), s.labels...)
}

// Load replaces the contents.
func (s *CategorySet) Load(labels []string) {
	s.labels = s.labels[:0]
	for _, l := range labels {
		l, err := core.NormalizeLabel(l)
		if err != nil || s.Contains(l) {
			continue
		}
		s.labels = append(s.labels, l)
	}
}
