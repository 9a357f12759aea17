package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/photocatalog/database"
	"github.com/camden-git/photocatalog/media"
	"github.com/camden-git/photocatalog/repository"
	"github.com/camden-git/photocatalog/services"
	"github.com/camden-git/photocatalog/visibility"
)

var testJWTSecret = []byte("test-secret")

type testEnv struct {
	router     http.Handler
	repo       *repository.EntryRepository
	storageDir string
}

// newTestEnv wires the same route tree main builds, against a temp database
// and temp media storage.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := database.InitGormDB(dsn)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateModels(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)

	storageDir := t.TempDir()
	store, err := media.NewLocalStorage(storageDir, map[media.AssetType]string{
		media.AssetTypeThumbnail: "thumbnails",
	})
	require.NoError(t, err)
	processor := media.NewProcessor(store, 128, 90)

	policy := visibility.NewDefaultPolicy()
	repo := repository.NewEntryRepository(db, policy)
	ingestService := services.NewIngestService(repo, processor, nil)
	timelineService := services.NewTimelineService(sqlDB, repo, policy, 31)

	entryHandler := &EntryHandler{EntryRepo: repo, Processor: processor}
	ingestHandler := &IngestHandler{Ingest: ingestService}
	timelineHandler := &TimelineHandler{Timeline: timelineService}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return ResolveCaller(testJWTSecret, next)
	})
	r.Route("/api", func(r chi.Router) {
		r.Route("/photos", func(r chi.Router) {
			r.With(RequireAuthenticated).Post("/", ingestHandler.IngestPhoto)
			r.Route("/{content_hash}", func(r chi.Router) {
				r.Get("/", entryHandler.GetEntry)
				r.With(RequireAuthenticated).Put("/", entryHandler.UpdateEntry)
				r.With(RequireAuthenticated).Put("/visibility", entryHandler.UpdateVisibility)
				r.With(RequireAuthenticated).Delete("/", entryHandler.DeleteEntry)
			})
		})
		r.Get("/timeline", timelineHandler.GetTimeline)
	})

	return &testEnv{router: r, repo: repo, storageDir: storageDir}
}

// tokenFor issues a token the way the external auth service would
func tokenFor(t *testing.T, userID uint) string {
	t.Helper()
	claims := &jwt.RegisteredClaims{
		Subject:   fmt.Sprint(userID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testJWTSecret)
	require.NoError(t, err)
	return token
}
