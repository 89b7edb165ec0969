package folio

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// SaveMedia inserts a media record. ID and timestamps are filled in here.
func (s *Store) SaveMedia(ctx context.Context, m Media) (Media, error) {
	now := time.Now().UTC()
	m.ID = uuid.NewString()
	m.CreatedAt = now
	m.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media (id, filename, url, size, type, width, height, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Filename, m.URL, m.Size, m.Type, m.Width, m.Height,
		now.Format(timeFormat), now.Format(timeFormat))
	if err != nil {
		return Media{}, fmt.Errorf("save media: %w", err)
	}
	return m, nil
}

// ListMedia returns every media record, newest upload first.
func (s *Store) ListMedia(ctx context.Context) ([]Media, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, url, size, type, width, height, created_at, updated_at
		FROM media ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var out []Media
	for rows.Next() {
		var m Media
		var created, updated string
		if err := rows.Scan(&m.ID, &m.Filename, &m.URL, &m.Size, &m.Type,
			&m.Width, &m.Height, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		m.CreatedAt, _ = time.Parse(timeFormat, created)
		m.UpdatedAt, _ = time.Parse(timeFormat, updated)
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMedia looks up one media record by filename.
func (s *Store) GetMedia(ctx context.Context, filename string) (Media, error) {
	var m Media
	var created, updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, filename, url, size, type, width, height, created_at, updated_at
		FROM media WHERE filename = ?`, filename).
		Scan(&m.ID, &m.Filename, &m.URL, &m.Size, &m.Type, &m.Width, &m.Height, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Media{}, ErrNotFound
	}
	if err != nil {
		return Media{}, fmt.Errorf("get media: %w", err)
	}
	m.CreatedAt, _ = time.Parse(timeFormat, created)
	m.UpdatedAt, _ = time.Parse(timeFormat, updated)
	return m, nil
}

// DeleteMedia removes a media record by filename. Missing filenames are
// ErrNotFound.
func (s *Store) DeleteMedia(ctx context.Context, filename string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM media WHERE filename = ?`, filename)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// processImage decodes an image from src, resizes it down to maxImageWidth
// if wider, and re-encodes as JPEG. Returns metadata and the encoded bytes.
func processImage(src io.Reader, originalName string) (Media, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Media{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Media{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	filename := slugifyFilename(originalName) + ".jpg"

	return Media{
		Filename: filename,
		URL:      "/public/" + uploadsSubdir + "/" + filename,
		Size:     int64(buf.Len()),
		Type:     "image/jpeg",
		Width:    w,
		Height:   h,
	}, buf.Bytes(), nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return Slugify(base)
}

// ensureUniqueFilename appends a counter if the filename already exists on
// disk or in the media table.
func (a *App) ensureUniqueFilename(ctx context.Context, m *Media) {
	dir := filepath.Join(a.staticDir, uploadsSubdir)
	base := strings.TrimSuffix(m.Filename, ".jpg")
	candidate := m.Filename
	counter := 1
	for {
		if _, err := os.Stat(filepath.Join(dir, candidate)); err == nil {
			counter++
			candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
			continue
		}
		if _, err := a.Store.GetMedia(ctx, candidate); err == nil {
			counter++
			candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
			continue
		}
		break
	}
	m.Filename = candidate
	m.URL = "/public/" + uploadsSubdir + "/" + candidate
}

func (a *App) handleMediaList(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	media, err := a.Store.ListMedia(c.Request().Context())
	if err != nil {
		return err
	}
	if media == nil {
		media = []Media{}
	}
	return c.JSON(http.StatusOK, media)
}

func (a *App) handleMediaUpload(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no file provided")
	}
	if file.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusBadRequest, "file too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	m, data, err := processImage(src, file.Filename)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid image: "+err.Error())
	}

	ctx := c.Request().Context()
	a.ensureUniqueFilename(ctx, &m)

	dir := filepath.Join(a.staticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, m.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	saved, err := a.Store.SaveMedia(ctx, m)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, saved)
}

func (a *App) handleMediaDelete(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	filename := c.Param("filename")
	if filename == "" || strings.Contains(filename, "/") || strings.Contains(filename, "..") {
		return echo.NewHTTPError(http.StatusBadRequest, "filename required")
	}

	if err := a.Store.DeleteMedia(c.Request().Context(), filename); err != nil {
		return err
	}
	// ignore error if the file is already gone
	_ = os.Remove(filepath.Join(a.staticDir, uploadsSubdir, filename))
	return c.NoContent(http.StatusNoContent)
}
