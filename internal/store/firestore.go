package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore is the Store backed by Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) List(ctx context.Context, collection string) ([]Document, error) {
	iter := s.client.Collection(collection).Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}
		docs = append(docs, Document{
			ID:   snap.Ref.ID,
			Path: Doc(collection, snap.Ref.ID),
			Data: snap.Data(),
		})
	}
	return docs, nil
}

func (s *FirestoreStore) Get(ctx context.Context, docPath string) (Document, error) {
	ref := s.client.Doc(docPath)
	if ref == nil {
		return Document{}, fmt.Errorf("invalid document path %q", docPath)
	}
	snap, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s: %w", docPath, err)
	}
	return Document{ID: ref.ID, Path: docPath, Data: snap.Data()}, nil
}

func (s *FirestoreStore) Set(ctx context.Context, docPath string, data map[string]any) error {
	ref := s.client.Doc(docPath)
	if ref == nil {
		return fmt.Errorf("invalid document path %q", docPath)
	}
	if _, err := ref.Set(ctx, toFirestore(data)); err != nil {
		return fmt.Errorf("set %s: %w", docPath, err)
	}
	return nil
}

func (s *FirestoreStore) Update(ctx context.Context, docPath string, fields map[string]any) error {
	ref := s.client.Doc(docPath)
	if ref == nil {
		return fmt.Errorf("invalid document path %q", docPath)
	}
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range toFirestore(fields) {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	_, err := ref.Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update %s: %w", docPath, err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, docPath string) error {
	ref := s.client.Doc(docPath)
	if ref == nil {
		return fmt.Errorf("invalid document path %q", docPath)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", docPath, err)
	}
	return nil
}

// toFirestore swaps ServerTimestamp markers for the Firestore sentinel.
func toFirestore(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case serverTimestamp:
			out[k] = firestore.ServerTimestamp
		case map[string]any:
			out[k] = toFirestore(val)
		default:
			out[k] = v
		}
	}
	return out
}
