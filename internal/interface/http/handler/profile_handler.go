package handler

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/hebammen-backend/internal/interface/http/dto"
	"github.com/ignatzorin/hebammen-backend/internal/interface/http/response"
	"github.com/ignatzorin/hebammen-backend/internal/logger"
	"github.com/ignatzorin/hebammen-backend/internal/models"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
	"github.com/ignatzorin/hebammen-backend/internal/usecase/profile"
)

// Для определения типа filetype достаточно первых 261 байта.
const sniffLen = 261

var allowedPhotoTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// MediaRecorder ведёт журнал загруженных файлов.
type MediaRecorder interface {
	Create(ctx context.Context, media *models.MediaFile) error
}

type ProfileHandler struct {
	getUC          *profile.GetProfileUseCase
	updateUC       *profile.UpdateProfileUseCase
	completionUC   *profile.GetCompletionUseCase
	photoUC        *profile.UploadPhotoUseCase
	calendarUC     *profile.RotateCalendarTokenUseCase
	media          MediaRecorder
	maxUploadBytes int64
	publicBaseURL  string
}

func NewProfileHandler(
	getUC *profile.GetProfileUseCase,
	updateUC *profile.UpdateProfileUseCase,
	completionUC *profile.GetCompletionUseCase,
	photoUC *profile.UploadPhotoUseCase,
	calendarUC *profile.RotateCalendarTokenUseCase,
	media MediaRecorder,
	maxUploadMB int64,
	publicBaseURL string,
) *ProfileHandler {
	return &ProfileHandler{
		getUC:          getUC,
		updateUC:       updateUC,
		completionUC:   completionUC,
		photoUC:        photoUC,
		calendarUC:     calendarUC,
		media:          media,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
		publicBaseURL:  strings.TrimRight(publicBaseURL, "/"),
	}
}

// GetMe обрабатывает GET /api/profile.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	p, err := h.getUC.Execute(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProfileResponse(p))
}

// UpdateMe обрабатывает PUT /api/profile. Роль и тариф через этот маршрут не меняются.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные профиля")
		return
	}

	p, err := h.updateUC.Execute(c.Request.Context(), actor, req.ToUpdate())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProfileResponse(p))
}

// Completion обрабатывает GET /api/profile/completion.
func (h *ProfileHandler) Completion(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	completion, err := h.completionUC.Execute(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToCompletionResponse(completion))
}

// UploadPhoto обрабатывает POST /api/profile/photo (multipart, поле file).
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "поле file обязательно")
		return
	}
	if file.Size == 0 {
		response.BadRequest(c, "файл не может быть пустым")
		return
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		response.BadRequest(c, "файл слишком большой")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось открыть файл"))
		return
	}
	defer src.Close()

	// Тип определяется по магическим байтам, а не по имени файла
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		response.BadRequest(c, "не удалось прочитать файл")
		return
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		response.BadRequest(c, "не удалось определить тип файла. Разрешены только изображения")
		return
	}
	ext, allowed := allowedPhotoTypes[kind.MIME.Value]
	if !allowed {
		response.BadRequest(c, "разрешены только изображения JPEG, PNG и WebP")
		return
	}

	ctx := c.Request.Context()
	path, err := h.photoUC.Execute(ctx, actor, ext, io.MultiReader(bytes.NewReader(head), src))
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.media != nil {
		record := &models.MediaFile{
			UserID:   actor.ID,
			FilePath: path,
			FileType: kind.MIME.Value,
			FileSize: file.Size,
		}
		if err := h.media.Create(ctx, record); err != nil {
			logger.ForRequest(c).WithFields(logrus.Fields{
				"path":  path,
				"error": err.Error(),
			}).Warn("profile: не удалось записать файл в журнал media_files")
		}
	}

	response.Created(c, dto.PhotoResponse{PhotoPath: path})
}

// RotateCalendarToken обрабатывает POST /api/profile/calendar-token.
func (h *ProfileHandler) RotateCalendarToken(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	token, err := h.calendarUC.Execute(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.CalendarTokenResponse{
		Token: token,
		URL:   h.publicBaseURL + "/api/calendar/" + token + ".ics",
	})
}

type MidwifeHandler struct {
	searchUC       *profile.SearchMidwivesUseCase
	getUC          *profile.GetMidwifeUseCase
	verificationUC *profile.SetVerificationUseCase
}

func NewMidwifeHandler(
	searchUC *profile.SearchMidwivesUseCase,
	getUC *profile.GetMidwifeUseCase,
	verificationUC *profile.SetVerificationUseCase,
) *MidwifeHandler {
	return &MidwifeHandler{searchUC: searchUC, getUC: getUC, verificationUC: verificationUC}
}

// Search обрабатывает GET /api/midwives/search?postal_code=&radius_km=.
func (h *MidwifeHandler) Search(c *gin.Context) {
	limit, offset := getPagination(c)

	results, err := h.searchUC.Execute(c.Request.Context(), profile.SearchInput{
		PostalCode: c.Query("postal_code"),
		RadiusKm:   parseIntQuery(c, "radius_km", 0),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToSearchResponses(results))
}

// Get обрабатывает GET /api/midwives/:id.
func (h *MidwifeHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "некорректный ID акушерки")
	if !ok {
		return
	}

	p, err := h.getUC.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToMidwifeResponse(p))
}

// SetVerification обрабатывает PUT /api/admin/profiles/:id/verification.
func (h *MidwifeHandler) SetVerification(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "некорректный ID профиля")
	if !ok {
		return
	}

	var req dto.SetVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status обязателен")
		return
	}

	p, err := h.verificationUC.Execute(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProfileResponse(p))
}

type AvailabilityHandler struct {
	addUC    *profile.AddAvailabilityUseCase
	listUC   *profile.ListAvailabilityUseCase
	deleteUC *profile.DeleteAvailabilityUseCase
}

func NewAvailabilityHandler(
	addUC *profile.AddAvailabilityUseCase,
	listUC *profile.ListAvailabilityUseCase,
	deleteUC *profile.DeleteAvailabilityUseCase,
) *AvailabilityHandler {
	return &AvailabilityHandler{addUC: addUC, listUC: listUC, deleteUC: deleteUC}
}

// ListMine обрабатывает GET /api/availability.
func (h *AvailabilityHandler) ListMine(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	items, err := h.listUC.Execute(c.Request.Context(), actor.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAvailabilityResponses(items))
}

// ListForMidwife обрабатывает GET /api/midwives/:id/availability.
func (h *AvailabilityHandler) ListForMidwife(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "некорректный ID акушерки")
	if !ok {
		return
	}

	items, err := h.listUC.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAvailabilityResponses(items))
}

// Add обрабатывает POST /api/availability.
func (h *AvailabilityHandler) Add(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "start_date и end_date обязательны")
		return
	}
	start, err := time.Parse(dto.DateLayout, req.StartDate)
	if err != nil {
		response.BadRequest(c, "start_date должна быть в формате YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dto.DateLayout, req.EndDate)
	if err != nil {
		response.BadRequest(c, "end_date должна быть в формате YYYY-MM-DD")
		return
	}

	a, err := h.addUC.Execute(c.Request.Context(), actor, profile.AvailabilityInput{
		StartDate: start,
		EndDate:   end,
		Note:      req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToAvailabilityResponse(a))
}

// Delete обрабатывает DELETE /api/availability/:id.
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id", "некорректный ID периода")
	if !ok {
		return
	}

	if err := h.deleteUC.Execute(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
