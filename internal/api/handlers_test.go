package api

import (
	"context"
	"errors"
	"testing"

	"github.com/deckvoice/deckvoice/internal/models"
	"github.com/google/uuid"
)

// recordingDeckStore records which rows were written, in order.
type recordingDeckStore struct {
	writes   []string
	assetErr error
	deckErr  error
}

func (s *recordingDeckStore) CreateAsset(ctx context.Context, asset *models.Asset) error {
	s.writes = append(s.writes, "asset")
	return s.assetErr
}

func (s *recordingDeckStore) CreateDeck(ctx context.Context, deck *models.Deck) error {
	s.writes = append(s.writes, "deck")
	return s.deckErr
}

func newTestDeckAndAsset() (*models.Deck, *models.Asset) {
	deck := &models.Deck{ID: uuid.New(), Title: "Intro to Graphs", Status: models.DeckStatusCreated}
	asset := &models.Asset{ID: uuid.New(), DeckID: deck.ID, Type: models.AssetTypeDeckPDF}
	deck.PDFAssetID = &asset.ID
	return deck, asset
}

func TestPersistNewDeckWritesAssetRowFirst(t *testing.T) {
	store := &recordingDeckStore{}
	deck, asset := newTestDeckAndAsset()

	if err := persistNewDeck(context.Background(), store, deck, asset); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.writes) != 2 || store.writes[0] != "asset" || store.writes[1] != "deck" {
		t.Errorf("expected asset row before deck row, got %v", store.writes)
	}
}

func TestPersistNewDeckStopsWhenAssetRowFails(t *testing.T) {
	store := &recordingDeckStore{assetErr: errors.New("insert failed")}
	deck, asset := newTestDeckAndAsset()

	if err := persistNewDeck(context.Background(), store, deck, asset); err == nil {
		t.Fatal("expected error when asset row fails")
	}

	// The deck row must never exist referencing an unrecorded asset.
	for _, w := range store.writes {
		if w == "deck" {
			t.Errorf("deck row written after asset row failure: %v", store.writes)
		}
	}
}

func TestPersistNewDeckWithoutPDF(t *testing.T) {
	store := &recordingDeckStore{}
	deck := &models.Deck{ID: uuid.New(), Title: "Notes Only", Status: models.DeckStatusCreated}

	if err := persistNewDeck(context.Background(), store, deck, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.writes) != 1 || store.writes[0] != "deck" {
		t.Errorf("expected a single deck write, got %v", store.writes)
	}
}
