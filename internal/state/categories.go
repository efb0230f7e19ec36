package state

import "fmt"

// AddCategory appends a new category, rejecting duplicates.
func (s *Store) AddCategory(name string) error {
	if s.HasCategory(name) {
		return fmt.Errorf("category already exists: %s", name)
	}
	s.Categories = append(s.Categories, name)
	return nil
}

// EnsureCategory appends name if absent. Idempotent; used by apply so two
// approved summaries proposing the same new category insert it once.
func (s *Store) EnsureCategory(name string) bool {
	if s.HasCategory(name) {
		return false
	}
	s.Categories = append(s.Categories, name)
	return true
}

// RenameCategory renames a category in place and reassigns every member
// document. Returns how many documents were updated.
func (s *Store) RenameCategory(oldName, newName string) (int, error) {
	if !s.HasCategory(oldName) {
		return 0, fmt.Errorf("category not found: %s", oldName)
	}
	if s.HasCategory(newName) {
		return 0, fmt.Errorf("category already exists: %s", newName)
	}

	for i, c := range s.Categories {
		if c == oldName {
			s.Categories[i] = newName
			break
		}
	}

	updated := 0
	for path, doc := range s.Documents {
		if doc.Category == oldName {
			doc.Category = newName
			s.Documents[path] = doc
			updated++
		}
	}
	return updated, nil
}

// MoveDocument reassigns a single document to an existing category and
// returns the category it came from.
func (s *Store) MoveDocument(path, category string) (string, error) {
	doc, ok := s.Documents[path]
	if !ok {
		return "", fmt.Errorf("file not found in state: %s", path)
	}
	if !s.HasCategory(category) {
		return "", fmt.Errorf("category not found: %s", category)
	}
	old := doc.Category
	doc.Category = category
	s.Documents[path] = doc
	return old, nil
}

// MoveAll bulk-reassigns every document in one category to another.
// Returns the number of documents moved.
func (s *Store) MoveAll(from, to string) (int, error) {
	if !s.HasCategory(to) {
		return 0, fmt.Errorf("category not found: %s", to)
	}
	moved := 0
	for path, doc := range s.Documents {
		if doc.Category == from {
			doc.Category = to
			s.Documents[path] = doc
			moved++
		}
	}
	return moved, nil
}

// DeleteCategory removes a category from the declared list after
// reassigning its members to the catch-all. Documents are never dropped
// with their category. Returns the number of reassigned documents.
func (s *Store) DeleteCategory(name string) (int, error) {
	if !s.HasCategory(name) {
		return 0, fmt.Errorf("category not found: %s", name)
	}
	if name == CatchAll {
		return 0, fmt.Errorf("cannot delete the catch-all category %q", CatchAll)
	}

	moved := 0
	for path, doc := range s.Documents {
		if doc.Category == name {
			doc.Category = CatchAll
			s.Documents[path] = doc
			moved++
		}
	}

	kept := s.Categories[:0]
	for _, c := range s.Categories {
		if c != name {
			kept = append(kept, c)
		}
	}
	s.Categories = kept
	return moved, nil
}
