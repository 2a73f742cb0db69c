package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/huangang/venturelink/internal/models"
	"github.com/stretchr/testify/require"
)

func TestStartupDocuments(t *testing.T) {
	db := newTestDB(t)
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	svc := NewStartupDocumentService(db, store)
	ctx := context.Background()
	founder, startup := createFounder(t, db, "founder@acme.io", "Acme")
	other, _ := createFounder(t, db, "founder@beta.io", "Beta")

	_, err = svc.Upload(ctx, founder.ID, "MEMES", UploadedFile{Name: "a.pdf", Data: []byte("x")})
	requireAppError(t, err, http.StatusBadRequest, "Invalid document type.")
	_, err = svc.Upload(ctx, founder.ID, models.DocumentPitch, UploadedFile{Name: "a.pdf"})
	requireAppError(t, err, http.StatusBadRequest, "File is empty.")

	deck, err := svc.Upload(ctx, founder.ID, models.DocumentPitch, UploadedFile{Name: "deck.pdf", Data: []byte("%PDF-1.4")})
	require.NoError(t, err)
	require.Equal(t, startup.ID, deck.StartupID)
	require.Equal(t, "application/pdf", deck.ContentType)
	require.EqualValues(t, 8, deck.Size)

	_, err = svc.Upload(ctx, founder.ID, models.DocumentLegal, UploadedFile{Name: "sha.txt", Data: []byte("terms")})
	require.NoError(t, err)

	all, err := svc.List(ctx, founder.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	pitch, err := svc.List(ctx, founder.ID, models.DocumentPitch)
	require.NoError(t, err)
	require.Len(t, pitch, 1)

	_, err = svc.List(ctx, founder.ID, "BOGUS")
	requireAppError(t, err, http.StatusBadRequest, "Invalid document type.")

	err = svc.Delete(ctx, other.ID, deck.ID)
	requireAppError(t, err, http.StatusNotFound, "Document not found.")

	require.NoError(t, svc.Delete(ctx, founder.ID, deck.ID))
	_, err = store.Open(ctx, deck.FilePath)
	require.Error(t, err)

	err = svc.Delete(ctx, founder.ID, deck.ID)
	requireAppError(t, err, http.StatusNotFound, "Document not found.")
}
