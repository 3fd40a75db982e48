// Package analyze реализует HTTP-обработчик генерации конспекта.
//
// Учебный материал принимается текстом (JSON или поле text формы) либо
// PDF файлом в поле file. Если файл передан, используется его текст.
package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/notegenius/internal/http/middlewarectx"
	"github.com/magabrotheeeer/notegenius/internal/http/response"
	"github.com/magabrotheeeer/notegenius/internal/lib/pdftext"
	"github.com/magabrotheeeer/notegenius/internal/lib/sl"
	"github.com/magabrotheeeer/notegenius/internal/models"
	"github.com/magabrotheeeer/notegenius/internal/services/notes"
)

const (
	fileField   = "file"
	textField   = "text"
	pdfMimeType = "application/pdf"
)

var (
	errUnsupportedType = errors.New("unsupported file type")
	errTooLarge        = errors.New("request body too large")
)

// Request тело JSON запроса.
type Request struct {
	Text string `json:"text" example:"Photosynthesis is the process..."`
}

// Service описывает бизнес-логику генерации конспекта.
type Service interface {
	Analyze(ctx context.Context, userID, material string) (*models.Note, error)
}

// TextExtractor извлекает текст из PDF.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// Handler обрабатывает запросы генерации конспекта.
type Handler struct {
	log       *slog.Logger
	service   Service
	extractor TextExtractor
	maxBytes  int64
}

// New создает новый экземпляр Handler. maxBytes ограничивает размер тела запроса.
func New(log *slog.Logger, service Service, extractor TextExtractor, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Handler{
		log:       log,
		service:   service,
		extractor: extractor,
		maxBytes:  maxBytes,
	}
}

// ServeHTTP godoc
// @Summary Генерация конспекта
// @Description Принимает текст или PDF, возвращает объяснение, краткий конспект и вопросы к экзамену.
// @Tags Notes
// @Accept  json
// @Accept  mpfd
// @Produce  json
// @Security BearerAuth
// @Param request body Request false "Учебный материал"
// @Param file formData file false "PDF файл"
// @Param text formData string false "Учебный материал"
// @Success 200 {object} models.Note
// @Failure 400 {object} response.ErrorResponse "Нет материала или файл не PDF"
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Failure 413 {object} response.ErrorResponse "Слишком большой файл"
// @Failure 500 {object} response.ErrorResponse "Ошибка генерации"
// @Router /notes/analyze [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notes.analyze"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user identification missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Not authorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	material, err := h.material(r)
	switch {
	case errors.Is(err, errUnsupportedType):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Only PDF files are supported"))
		return
	case errors.Is(err, errTooLarge):
		log.Warn("upload too large", slog.Int64("limit", h.maxBytes))
		render.Status(r, http.StatusRequestEntityTooLarge)
		render.JSON(w, r, response.Error("File is too large"))
		return
	case err != nil:
		log.Error("failed to read study material", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Error generating notes"))
		return
	}

	note, err := h.service.Analyze(r.Context(), userID, material)
	switch {
	case errors.Is(err, notes.ErrNoInput):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Please provide text or upload a PDF"))
		return
	case err != nil:
		log.Error("failed to generate notes", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Error generating notes"))
		return
	}

	render.JSON(w, r, note)
}

// material возвращает учебный материал из тела запроса. Пустая строка
// означает, что материал не передан.
func (h *Handler) material(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			if isTooLarge(err) {
				return "", errTooLarge
			}
			return "", nil
		}
		return req.Text, nil
	}

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		if isTooLarge(err) {
			return "", errTooLarge
		}
		return "", err
	}
	text := r.FormValue(textField)

	file, header, err := r.FormFile(fileField)
	if errors.Is(err, http.ErrMissingFile) {
		return text, nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	if ct, _, _ := mime.ParseMediaType(header.Header.Get("Content-Type")); !strings.EqualFold(ct, pdfMimeType) {
		return "", errUnsupportedType
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	if !pdftext.IsPDF(data) {
		return "", errUnsupportedType
	}
	extracted, err := h.extractor.ExtractText(data)
	if errors.Is(err, pdftext.ErrNoText) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return extracted, nil
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
