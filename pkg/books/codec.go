package books

import (
	"encoding/json"
	"fmt"

	"bookshelf/pkg/docstore"
	"bookshelf/pkg/domain"
)

// toDocument flattens a book into document fields through its JSON tags,
// so the stored field names stay in lockstep with the wire shape.
func toDocument(b domain.Book) docstore.Document {
	data, err := json.Marshal(b)
	if err != nil {
		// Book is a plain value type; marshaling cannot fail in practice.
		panic(fmt.Sprintf("marshal book: %v", err))
	}
	var doc docstore.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		panic(fmt.Sprintf("unmarshal book fields: %v", err))
	}
	return doc
}

// bookFromDocument rebuilds a book from stored fields. A book read back
// always carries a non-empty id: when the id field is missing the storage
// key wins.
func bookFromDocument(key string, d docstore.Document) (domain.Book, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return domain.Book{}, fmt.Errorf("marshal document: %w", err)
	}
	var b domain.Book
	if err := json.Unmarshal(data, &b); err != nil {
		return domain.Book{}, fmt.Errorf("unmarshal book: %w", err)
	}
	if b.ID == "" {
		b.ID = key
	}
	return b, nil
}
