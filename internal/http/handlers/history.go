package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
	"github.com/LDFINA01/Jokester-Merch-Generator/pkg/zip"

	"github.com/go-chi/chi/v5"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// maxMockupBytes caps one downloaded mockup; larger files are left out of the archive.
var maxMockupBytes int64 = 25 << 20

func (a *App) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	items, err := a.Uploads.ListRecent(r.Context(), limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if items == nil {
		items = []domain.Upload{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) GetHistory(w http.ResponseWriter, r *http.Request) {
	upload, err := a.Uploads.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, upload)
}

func (a *App) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := a.Uploads.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true})
}

// HistoryArchive downloads every mockup of an upload and returns them as a
// zip. Mockups that cannot be fetched are left out.
func (a *App) HistoryArchive(w http.ResponseWriter, r *http.Request) {
	upload, err := a.Uploads.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	keys := make([]string, 0, len(upload.MockupURLs))
	for key := range upload.MockupURLs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var assets []zip.Asset
	for _, key := range keys {
		url := upload.MockupURLs[key]
		data, mime, err := a.download(r.Context(), url)
		if err != nil {
			a.logger(r).Warn().Err(err).Str("product", key).Str("url", url).Msg("skip mockup in archive")
			continue
		}
		assets = append(assets, zip.Asset{Filename: key + mockupExt(url), MIME: mime, Data: data})
	}
	if len(assets) == 0 {
		a.error(w, http.StatusBadGateway, "NoMockups", "no mockup could be downloaded")
		return
	}
	archive, err := zip.ArchiveAssets(assets, upload.CreatedAt)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=mockups-%s.zip", upload.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) download(ctx context.Context, url string) ([]byte, string, error) {
	client := a.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMockupBytes+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > maxMockupBytes {
		return nil, "", fmt.Errorf("download: mockup larger than %d bytes", maxMockupBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func mockupExt(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	switch ext := strings.ToLower(path.Ext(url)); ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	default:
		return ".jpg"
	}
}
