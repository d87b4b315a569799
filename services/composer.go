package services

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"strings"
)

// MaxImageBytes - лимит на одну картинку после декодирования
const MaxImageBytes = 5 * 1024 * 1024

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// ImageUpload - картинка из композера до отправки в бэкенд
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageError - отказ по конкретному файлу; соседние валидные файлы проходят
type ImageError struct {
	Filename string
	Reason   string
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Filename, e.Reason)
}

// ErrEmptyDraft - в черновике нет ни текста, ни картинок, запрос не уходит
var ErrEmptyDraft = fmt.Errorf("post must contain text or at least one image")

// ValidateDraft проверяет, что есть хотя бы непустой текст или картинка
func ValidateDraft(content string, images []ImageUpload) error {
	if strings.TrimSpace(content) == "" && len(images) == 0 {
		return ErrEmptyDraft
	}
	return nil
}

// ValidateImage проверяет одну картинку: размер и MIME-тип
func ValidateImage(filename, contentType string, size int64) error {
	if size > MaxImageBytes {
		return &ImageError{Filename: filename, Reason: "image exceeds 5MB limit"}
	}
	mime := contentType
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	if _, ok := allowedImageTypes[mime]; !ok {
		return &ImageError{Filename: filename, Reason: "unsupported format, use JPEG, PNG, GIF or WebP"}
	}
	return nil
}

// Base64SizeBytes оценивает размер данных после декодирования base64:
// bytes = chars*3/4 за вычетом паддинга
func Base64SizeBytes(encoded string) int64 {
	if i := strings.Index(encoded, ","); i >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[i+1:]
	}
	n := len(encoded)
	tail := encoded
	if n > 2 {
		tail = encoded[n-2:]
	}
	padding := strings.Count(tail, "=")
	return int64(n)*3/4 - int64(padding)
}

// EncodeMultipart собирает multipart-тело для пересылки в бэкенд.
// Это канонический wire-формат композера, base64-JSON путь не используется.
func EncodeMultipart(content string, images []ImageUpload) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("content", content); err != nil {
		return nil, "", fmt.Errorf("failed to write content field: %w", err)
	}

	for _, img := range images {
		part, err := writer.CreateFormFile("image", img.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write image data: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}
