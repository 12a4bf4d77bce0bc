package helpers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// maxUploadBytes caps a single uploaded image at 5 MiB.
const maxUploadBytes = 5 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SaveUploadedImage reads the named multipart file from the request, verifies
// it is an image, and stores it under dir with a random filename. It returns
// the public URL path ("/uploads/<name>"). A missing file field is not an
// error: it returns ("", false, nil) so callers can treat the field as
// optional.
func SaveUploadedImage(r *http.Request, field, dir string) (string, bool, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read form file: %w", err)
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		return "", false, fmt.Errorf("file exceeds %d bytes", maxUploadBytes)
	}

	ext, err := imageExtension(file)
	if err != nil {
		return "", false, err
	}

	name, err := randomFilename(ext)
	if err != nil {
		return "", false, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("create upload dir: %w", err)
	}
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", false, fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(file, maxUploadBytes)); err != nil {
		return "", false, fmt.Errorf("write upload file: %w", err)
	}
	return "/uploads/" + name, true, nil
}

// imageExtension sniffs the file content to determine the image type and
// rewinds the reader. The client-supplied filename is not trusted.
func imageExtension(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	contentType := http.DetectContentType(buf[:n])
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported file type %q", contentType)
	}
	return ext, nil
}

func randomFilename(ext string) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate filename: %w", err)
	}
	return strings.ToLower(hex.EncodeToString(b)) + ext, nil
}
