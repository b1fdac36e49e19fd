package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// sniffLen is how many leading bytes are inspected to detect the content type.
const sniffLen = 3072

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// Object is a single upload handed to a Store.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Store persists product images and returns the location clients should use to fetch them.
type Store interface {
	Put(ctx context.Context, obj Object) (string, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// ProductImageKey builds a unique object key under the products/ prefix,
// keeping the extension of the uploaded filename.
func ProductImageKey(filename string) string {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(filename, "\\", "/")))
	return fmt.Sprintf("products/%s%s", uuid.NewString(), ext)
}

// KeyFromLocation strips the public prefix from a stored location, returning the object key.
func KeyFromLocation(location string) string {
	idx := strings.Index(location, "products/")
	if idx < 0 {
		return ""
	}
	return location[idx:]
}

// DetectImage sniffs the leading bytes of body and rejects anything that is not
// an allowed image type. The returned reader replays the sniffed bytes.
func DetectImage(body io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, fmt.Errorf("reading upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return "", nil, fmt.Errorf("image file is empty")
	}

	detected := mimetype.Detect(head)
	if !isAllowed(detected) {
		return "", nil, fmt.Errorf("unsupported image type %q (allowed: %s)", detected.String(), strings.Join(allowedImageTypes, ", "))
	}
	contentType := strings.SplitN(detected.String(), ";", 2)[0]
	return contentType, io.MultiReader(bytes.NewReader(head), body), nil
}

func isAllowed(detected *mimetype.MIME) bool {
	for _, allowed := range allowedImageTypes {
		if detected.Is(allowed) {
			return true
		}
	}
	return false
}
