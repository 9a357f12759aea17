package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartIngest(t *testing.T, descriptorJSON string) (*bytes.Buffer, string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		for y := 0; y < 48; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 200, A: 255})
		}
	}
	var imgBuf bytes.Buffer
	require.NoError(t, imaging.Encode(&imgBuf, img, imaging.JPEG))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("descriptor", descriptorJSON))
	part, err := writer.CreateFormFile("thumbnail", "preview.jpg")
	require.NoError(t, err)
	_, err = part.Write(imgBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &body, writer.FormDataContentType()
}

func postIngest(env *testEnv, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/photos", body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestIngestPhoto(t *testing.T) {
	env := newTestEnv(t)
	descriptor := `{"content_hash":"ing1","metadata":{"captured_at":1718445600,"camera_make":"Fuji"}}`

	body, contentType := multipartIngest(t, descriptor)
	rec := postIngest(env, tokenFor(t, 1), body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ing1", resp.EntryID)
	assert.False(t, resp.IsDuplicate)
}

func TestIngestPhotoDuplicate(t *testing.T) {
	env := newTestEnv(t)
	descriptor := `{"content_hash":"ing2"}`

	body, contentType := multipartIngest(t, descriptor)
	rec := postIngest(env, tokenFor(t, 1), body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)

	body, contentType = multipartIngest(t, descriptor)
	rec = postIngest(env, tokenFor(t, 1), body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ing2", resp.EntryID)
	assert.True(t, resp.IsDuplicate)
}

func TestIngestPhotoRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	body, contentType := multipartIngest(t, `{"content_hash":"ing3"}`)

	rec := postIngest(env, "", body, contentType)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIngestPhotoMissingParts(t *testing.T) {
	env := newTestEnv(t)

	// missing descriptor part
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("thumbnail", "preview.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	rec := postIngest(env, tokenFor(t, 1), &body, writer.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// missing content hash inside the descriptor
	body2, contentType := multipartIngest(t, `{}`)
	rec = postIngest(env, tokenFor(t, 1), body2, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
