package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/validation"
)

const multipartMemory = 32 << 20

type uploadResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	VideoURL string `json:"videoUrl,omitempty"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Phrase   string `json:"phrase,omitempty"`
}

// UploadImage stores a JPEG or PNG and returns its public URL.
func (a *App) UploadImage(w http.ResponseWriter, r *http.Request) {
	data, header, contentType, err := a.readUpload(w, r, validation.ImageRule)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	url, err := a.Storage.Store(r.Context(), data, header.Filename, contentType)
	if err != nil {
		a.fail(w, r, fmt.Errorf("store image: %w", err))
		return
	}
	a.json(w, http.StatusOK, uploadResponse{Success: true, URL: url, Filename: header.Filename, Size: header.Size})
}

// UploadVideo stores a video, has the transcoder pull a still frame and a
// phrase from it, and returns the frame URL.
func (a *App) UploadVideo(w http.ResponseWriter, r *http.Request) {
	data, header, contentType, err := a.readUpload(w, r, validation.VideoRule)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if a.Transcoder == nil {
		a.error(w, http.StatusServiceUnavailable, "MissingCredentials", "video transcoding is not configured")
		return
	}
	videoURL, err := a.Storage.Store(r.Context(), data, header.Filename, contentType)
	if err != nil {
		a.fail(w, r, fmt.Errorf("store video: %w", err))
		return
	}
	theme := strings.TrimSpace(r.FormValue("theme"))
	res, err := a.Transcoder.Transcode(r.Context(), videoURL, theme)
	if err != nil {
		a.logger(r).Warn().Err(err).Str("video_url", videoURL).Msg("transcode failed")
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, uploadResponse{
		Success:  true,
		URL:      res.ImageURL,
		VideoURL: videoURL,
		Filename: header.Filename,
		Size:     header.Size,
		Phrase:   res.Phrase,
	})
}

func (a *App) readUpload(w http.ResponseWriter, r *http.Request, rule validation.Rule) ([]byte, *multipart.FileHeader, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, rule.MaxBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, "", fmt.Errorf("%s exceeds %d MB: %w", rule.Kind, rule.MaxBytes>>20, domain.ErrInvalidUpload)
		}
		return nil, nil, "", fmt.Errorf("invalid multipart form: %w", domain.ErrInvalidUpload)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, "", fmt.Errorf("file field required: %w", domain.ErrInvalidUpload)
	}
	defer file.Close()
	contentType, err := rule.Check(header.Filename, header.Header.Get("Content-Type"), header.Size)
	if err != nil {
		return nil, nil, "", err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, "", fmt.Errorf("read %s: %w", rule.Kind, err)
	}
	return data, header, contentType, nil
}
