package profile

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/logger"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

const calendarTokenBytes = 32

// PhotoStore сохраняет фотографии профиля на диск.
type PhotoStore interface {
	SaveProfilePhoto(ctx context.Context, userID string, ext string, r io.Reader) (string, int64, error)
	Delete(ctx context.Context, relativePath string) error
}

type UploadPhotoUseCase struct {
	profileRepo repository.ProfileRepository
	store       PhotoStore
}

func NewUploadPhotoUseCase(profileRepo repository.ProfileRepository, store PhotoStore) *UploadPhotoUseCase {
	return &UploadPhotoUseCase{profileRepo: profileRepo, store: store}
}

// Execute сохраняет уже проверенное изображение и заменяет им прежнее фото.
func (uc *UploadPhotoUseCase) Execute(ctx context.Context, actor valueobject.Actor, ext string, r io.Reader) (string, error) {
	p, err := uc.profileRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return "", err
	}

	path, _, err := uc.store.SaveProfilePhoto(ctx, actor.ID.String(), ext, r)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось сохранить фото")
	}
	if err := uc.profileRepo.SetPhoto(ctx, actor.ID, path); err != nil {
		_ = uc.store.Delete(ctx, path)
		return "", err
	}

	if p.PhotoPath != nil && *p.PhotoPath != path {
		if err := uc.store.Delete(ctx, *p.PhotoPath); err != nil {
			logger.WithFields(logrus.Fields{
				"user_id": actor.ID,
				"error":   err.Error(),
			}).Warn("profile: не удалось удалить прежнее фото")
		}
	}
	return path, nil
}

// RotateCalendarTokenUseCase выдаёт акушерке новый секретный адрес календаря; старый перестаёт работать.
type RotateCalendarTokenUseCase struct {
	profileRepo repository.ProfileRepository
}

func NewRotateCalendarTokenUseCase(profileRepo repository.ProfileRepository) *RotateCalendarTokenUseCase {
	return &RotateCalendarTokenUseCase{profileRepo: profileRepo}
}

func (uc *RotateCalendarTokenUseCase) Execute(ctx context.Context, actor valueobject.Actor) (string, error) {
	if actor.Role != valueobject.RoleMidwife {
		return "", apperror.New(apperror.ErrCodeForbidden, "календарь доступен только акушеркам")
	}

	token, err := NewCalendarToken()
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать токен календаря")
	}
	if err := uc.profileRepo.SetCalendarToken(ctx, actor.ID, token); err != nil {
		return "", err
	}
	return token, nil
}

func NewCalendarToken() (string, error) {
	buf := make([]byte, calendarTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
