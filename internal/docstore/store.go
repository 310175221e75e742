package docstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a document id does not exist in a collection.
var ErrNotFound = errors.New("document not found")

// Document is one schemaless record inside a collection.
type Document struct {
	ID     string
	Fields map[string]any
}

// Store keeps schemaless documents in a single Postgres table, keyed by a
// collection path. Subcollections are plain path segments, e.g.
// "restaurants/<id>/tables".
type Store struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const schema = `
create table if not exists documents (
    collection  text        not null,
    id          text        not null,
    fields      jsonb       not null default '{}'::jsonb,
    updated_at  timestamptz not null default now(),
    primary key (collection, id)
);
create index if not exists documents_collection_updated_at_idx
    on documents (collection, updated_at);
`

// EnsureSchema creates the backing table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}

// FetchOnce returns the full current document set of a collection.
func (s *Store) FetchOnce(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.Query(ctx, `
        select id, fields
        from documents
        where collection = $1
        order by id
    `, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			id     string
			fields []byte
		)
		if err := rows.Scan(&id, &fields); err != nil {
			return nil, err
		}
		doc := Document{ID: id, Fields: map[string]any{}}
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &doc.Fields); err != nil {
				return nil, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
			}
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// GetDocument returns a single document or ErrNotFound.
func (s *Store) GetDocument(ctx context.Context, collection string, id string) (Document, error) {
	var fields []byte
	err := s.db.QueryRow(ctx, `
        select fields from documents where collection = $1 and id = $2
    `, collection, id).Scan(&fields)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}
	doc := Document{ID: id, Fields: map[string]any{}}
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &doc.Fields); err != nil {
			return Document{}, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
		}
	}
	return doc, nil
}

// AddDocument inserts a new document with a generated id and returns the id.
func (s *Store) AddDocument(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id, err := newDocumentID()
	if err != nil {
		return "", err
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	_, err = s.db.Exec(ctx, `
        insert into documents (collection, id, fields, updated_at)
        values ($1, $2, $3, now())
    `, collection, id, encoded)
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateDocument merges partial fields into an existing document.
func (s *Store) UpdateDocument(ctx context.Context, collection string, id string, partial map[string]any) error {
	encoded, err := json.Marshal(partial)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `
        update documents
        set fields = fields || $3::jsonb, updated_at = now()
        where collection = $1 and id = $2
    `, collection, id, encoded)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDocument removes one document. Deleting a missing document is a no-op.
func (s *Store) DeleteDocument(ctx context.Context, collection string, id string) error {
	_, err := s.db.Exec(ctx, `
        delete from documents where collection = $1 and id = $2
    `, collection, id)
	return err
}

// DeleteCollection removes a collection and every subcollection under it.
func (s *Store) DeleteCollection(ctx context.Context, collection string) error {
	_, err := s.db.Exec(ctx, `
        delete from documents where collection = $1 or collection like $2
    `, collection, collection+"/%")
	return err
}

// Count returns the number of documents in a collection.
func (s *Store) Count(ctx context.Context, collection string) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, `
        select count(*) from documents where collection = $1
    `, collection).Scan(&count)
	return count, err
}

// Subcollections lists the distinct direct child collection paths of a
// document, e.g. Subcollections(ctx, "restaurants", id) -> restaurants/<id>/tables.
func (s *Store) Subcollections(ctx context.Context, collection string, id string) ([]string, error) {
	prefix := collection + "/" + id + "/"
	rows, err := s.db.Query(ctx, `
        select distinct collection from documents where collection like $1
    `, prefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		// Only direct children.
		rest := strings.TrimPrefix(path, prefix)
		if rest != "" && !strings.Contains(rest, "/") {
			out = append(out, path)
		}
	}
	return out, rows.Err()
}

func newDocumentID() (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
